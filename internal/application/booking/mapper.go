// Package booking traduce una lead al formato del sistema de citas del taller
// y valida la cita antes de enviarla.
package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
)

// Valores por defecto del sistema de citas.
const (
	DefaultPhonePrefix = "+39"
	DefaultDepot       = "DEP1_MATERA"
	DefaultBookingType = "Meccanica"
	DefaultCreatedBy   = "CallDesk"

	ReminderNo          = "No"
	NotificationSend    = "Da inviare"
	NotificationNotSend = "Non inviare"

	defaultHour = 10
)

// isoMillis formato de bookingDate: UTC con milisegundos.
const isoMillis = "2006-01-02T15:04:05.000Z"

// depots sede del call center -> depósito del sistema de citas.
var depots = map[string]string{
	"Altamura": "DEP3_ALTAMURA",
	"Matera":   "DEP1_MATERA",
	"Potenza":  "DEP2_POTENZA",
}

// bookingTypes tipo de intervención -> tipo de cita.
var bookingTypes = map[string]string{
	"TAGLIANDO":  "Tagliando",
	"MECCANICA":  "Meccanica",
	"ELETTRAUTO": "Elettrauto",
	"DIAGNOSI":   "Diagnosi",
}

var italianMonths = map[string]time.Month{
	"gennaio":   time.January,
	"febbraio":  time.February,
	"marzo":     time.March,
	"aprile":    time.April,
	"maggio":    time.May,
	"giugno":    time.June,
	"luglio":    time.July,
	"agosto":    time.August,
	"settembre": time.September,
	"ottobre":   time.October,
	"novembre":  time.November,
	"dicembre":  time.December,
}

// callingCodes prefijos internacionales habituales para los clientes del concesionario.
var callingCodes = map[string]struct{}{
	"1": {}, "7": {},
	"20": {}, "27": {}, "30": {}, "31": {}, "32": {}, "33": {}, "34": {}, "36": {}, "39": {},
	"40": {}, "41": {}, "43": {}, "44": {}, "45": {}, "46": {}, "47": {}, "48": {}, "49": {},
	"51": {}, "52": {}, "54": {}, "55": {}, "56": {}, "57": {}, "58": {},
	"60": {}, "61": {}, "62": {}, "63": {}, "64": {}, "65": {}, "66": {},
	"81": {}, "82": {}, "84": {}, "86": {}, "90": {}, "91": {}, "92": {}, "93": {}, "94": {}, "95": {}, "98": {},
	"212": {}, "213": {}, "216": {}, "218": {}, "221": {}, "234": {}, "254": {},
	"350": {}, "351": {}, "352": {}, "353": {}, "354": {}, "355": {}, "356": {}, "357": {}, "358": {}, "359": {},
	"370": {}, "371": {}, "372": {}, "373": {}, "374": {}, "375": {}, "376": {}, "377": {}, "378": {},
	"380": {}, "381": {}, "382": {}, "383": {}, "385": {}, "386": {}, "387": {}, "389": {},
	"420": {}, "421": {}, "423": {},
	"880": {}, "886": {}, "961": {}, "962": {}, "966": {}, "971": {}, "972": {},
}

var (
	nonPhoneChars  = regexp.MustCompile(`[^\d+]`)
	intlDigits     = regexp.MustCompile(`^\+(\d{2,})$`)
	leadingItaly   = regexp.MustCompile(`^\+?39`)
	weekdayPrefix  = regexp.MustCompile(`^(lunedì|lunedi|martedì|martedi|mercoledì|mercoledi|giovedì|giovedi|venerdì|venerdi|sabato|domenica),?\s+`)
	italianDate    = regexp.MustCompile(`^(\d{1,2})\s+(\p{L}+)\s+(\d{4})$`)
	clockTime      = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	genericLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "2006-01-02 15:04"}
)

// ParsePhone separa prefijo internacional y número. Sin prefijo reconocible asume +39.
func ParsePhone(raw string) (prefix, number string) {
	cleaned := nonPhoneChars.ReplaceAllString(raw, "")

	switch {
	case strings.HasPrefix(cleaned, "+39"):
		return DefaultPhonePrefix, cleaned[3:]
	case strings.HasPrefix(cleaned, "39"):
		return DefaultPhonePrefix, cleaned[2:]
	}
	if m := intlDigits.FindStringSubmatch(cleaned); m != nil {
		code := callingCode(m[1])
		return "+" + code, m[1][len(code):]
	}
	return DefaultPhonePrefix, leadingItaly.ReplaceAllString(cleaned, "")
}

// callingCode busca el prefijo internacional más corto conocido (E.164 es libre de prefijos).
// Si ninguno coincide toma dos cifras, el caso más común en Europa.
func callingCode(digits string) string {
	for n := 1; n <= 3 && n < len(digits); n++ {
		if _, ok := callingCodes[digits[:n]]; ok {
			return digits[:n]
		}
	}
	if len(digits) > 2 {
		return digits[:2]
	}
	return digits[:1]
}

// DepotFor devuelve el depósito de la sede; sede desconocida -> DefaultDepot.
func DepotFor(site string) string {
	if d, ok := depots[strings.TrimSpace(site)]; ok {
		return d
	}
	return DefaultDepot
}

// BookingTypeFor devuelve el tipo de cita de la intervención; desconocido -> DefaultBookingType.
func BookingTypeFor(intervention string) string {
	if t, ok := bookingTypes[strings.ToUpper(strings.TrimSpace(intervention))]; ok {
		return t
	}
	return DefaultBookingType
}

// Depots lista de depósitos conocidos, para el formulario de cita.
func Depots() map[string]string {
	out := make(map[string]string, len(depots))
	for k, v := range depots {
		out[k] = v
	}
	return out
}

// NormalizeDate convierte fecha y hora preferidas (texto libre) en un instante en la zona de now.
// Fecha ausente o ilegible -> mañana; hora ausente o inválida -> 10:00.
func NormalizeDate(date, clock string, now time.Time) time.Time {
	loc := now.Location()
	day, ok := parseDay(date, loc)
	if !ok {
		day = now.AddDate(0, 0, 1)
	}

	hour, minute := defaultHour, 0
	if h, m, ok := parseClock(clock); ok {
		hour, minute = h, m
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

// FormatBookingDate serializa el instante en ISO-8601 UTC con milisegundos.
func FormatBookingDate(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func parseDay(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == entity.NotAvailable {
		return time.Time{}, false
	}

	lower := cases.Lower(language.Italian).String(raw)
	cleaned := weekdayPrefix.ReplaceAllString(lower, "")
	if m := italianDate.FindStringSubmatch(cleaned); m != nil {
		if month, ok := italianMonths[m[2]]; ok {
			d, _ := strconv.Atoi(m[1])
			y, _ := strconv.Atoi(m[3])
			t := time.Date(y, month, d, 0, 0, 0, 0, loc)
			if t.Day() == d && t.Month() == month {
				return t, true
			}
		}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true
	}
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(raw string) (int, int, bool) {
	if raw == "" || raw == entity.NotAvailable {
		return 0, 0, false
	}
	m := clockTime.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	if h > 23 || mi > 59 {
		return 0, 0, false
	}
	return h, mi, true
}

// FormOverrides valores que el operador corrige en el formulario antes de enviar la cita.
// Los campos vacíos conservan el valor derivado de la lead.
type FormOverrides struct {
	LicensePlate  string
	Name          string
	Phone         string
	Date          string
	Time          string
	Depot         string
	BookingType   string
	CreatedBy     string
	VehicleOnSite bool
}

// ToBookingPayload construye la cita a partir de la lead y las correcciones del formulario.
func ToBookingPayload(lead entity.Lead, form FormOverrides, now time.Time) dto.BookingPayload {
	plate := lead.Plate
	if plate == entity.NotAvailable {
		plate = ""
	}
	phone := lead.Phone
	if phone == entity.NotAvailable {
		phone = ""
	}
	date, clock := lead.PreferredDate, lead.PreferredTime
	if form.Date != "" {
		date = form.Date
	}
	if form.Time != "" {
		clock = form.Time
	}

	prefix, number := ParsePhone(firstNonEmpty(form.Phone, phone))
	notify := NotificationSend
	if form.VehicleOnSite {
		notify = NotificationNotSend
	}

	return dto.BookingPayload{
		LicensePlate:        strings.ToUpper(strings.TrimSpace(firstNonEmpty(form.LicensePlate, plate))),
		Nominativo:          strings.TrimSpace(firstNonEmpty(form.Name, lead.Name)),
		CustomerPhonePrefix: prefix,
		CustomerPhone:       number,
		BookingDate:         FormatBookingDate(NormalizeDate(date, clock, now)),
		Deposito:            firstNonEmpty(form.Depot, DepotFor(lead.Location)),
		TipoPrenotazione:    firstNonEmpty(form.BookingType, BookingTypeFor(lead.InterventionType)),
		CreatedBy:           firstNonEmpty(form.CreatedBy, DefaultCreatedBy),
		ExtraReminderTime:   ReminderNo,
		StatoNotifica:       notify,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
