package entity

// LeadDetails atributos opcionales que solo tienen sentido para ciertas categorías.
type LeadDetails struct {
	GenericRequest   string `json:"richiestaGenerica,omitempty"`
	SpecificRequest  string `json:"richiestaSpecifica,omitempty"`
	OtherReports     string `json:"altreSegnalazioni,omitempty"`
	Feedback         string `json:"feedback,omitempty"`
	Registration     string `json:"intestazione,omitempty"`
	Mileage          string `json:"kilometraggio,omitempty"`
	CourtesyVehicle  string `json:"veicoloSostitutivo,omitempty"`
	SparePart        string `json:"pezzoDiRicambio,omitempty"`
	SalesRequestType string `json:"tipoRichiestaSales,omitempty"`
	Origin           string `json:"provenienza,omitempty"`
	CarInfo          string `json:"informazioniAuto,omitempty"`
	TradeIn          string `json:"permuta,omitempty"`
	Payment          string `json:"pagamento,omitempty"`
	CompanyName      string `json:"ragioneSociale,omitempty"`
	AlternativeCar   string `json:"autoAlternativa,omitempty"`
	Salesperson      string `json:"venditore,omitempty"`
	Transmission     string `json:"cambio,omitempty"`
	FuelType         string `json:"alimentazione,omitempty"`
	ListingSite      string `json:"sitoAnnuncio,omitempty"`
}

// DetailField identifica un atributo de LeadDetails con su puerta de categoría.
type DetailField struct {
	Name       string
	Categories []Category // vacío = válido para cualquier categoría
	ref        func(d *LeadDetails) *string
}

// Ref devuelve el puntero al campo dentro de d.
func (f DetailField) Ref(d *LeadDetails) *string { return f.ref(d) }

// Allows indica si el atributo se interpreta para la categoría c.
func (f DetailField) Allows(c Category) bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, allowed := range f.Categories {
		if allowed == c {
			return true
		}
	}
	return false
}

var (
	serviceOnly = []Category{CategoryService}
	partsOnly   = []Category{CategoryParts}
	salesOnly   = []Category{CategorySales}
)

// DetailFields tabla de atributos por categoría. Los nombres coinciden con las columnas del record store.
var DetailFields = []DetailField{
	{Name: "RichiestaGenerica", ref: func(d *LeadDetails) *string { return &d.GenericRequest }},
	{Name: "RichiestaSpecifica", ref: func(d *LeadDetails) *string { return &d.SpecificRequest }},
	{Name: "AltreSegnalazioni", ref: func(d *LeadDetails) *string { return &d.OtherReports }},
	{Name: "Feedback", ref: func(d *LeadDetails) *string { return &d.Feedback }},
	{Name: "Intestazione", Categories: serviceOnly, ref: func(d *LeadDetails) *string { return &d.Registration }},
	{Name: "Kilometraggio", Categories: serviceOnly, ref: func(d *LeadDetails) *string { return &d.Mileage }},
	{Name: "VeicoloSostitutivo", Categories: serviceOnly, ref: func(d *LeadDetails) *string { return &d.CourtesyVehicle }},
	{Name: "PezzoDiRicambio", Categories: partsOnly, ref: func(d *LeadDetails) *string { return &d.SparePart }},
	{Name: "TipoRichiestaSales", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.SalesRequestType }},
	{Name: "Provenienza", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.Origin }},
	{Name: "InformazioniAuto", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.CarInfo }},
	{Name: "Permuta", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.TradeIn }},
	{Name: "Pagamento", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.Payment }},
	{Name: "RagioneSociale", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.CompanyName }},
	{Name: "AutoAlternativa", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.AlternativeCar }},
	{Name: "Venditore", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.Salesperson }},
	{Name: "Cambio", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.Transmission }},
	{Name: "Alimentazione", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.FuelType }},
	{Name: "SitoAnnuncio", Categories: salesOnly, ref: func(d *LeadDetails) *string { return &d.ListingSite }},
}

// ForCategory devuelve una copia de los detalles con los atributos ajenos a la categoría vaciados.
// Un atributo de "parts" no tiene significado en una lead de "sales" y no debe exponerse.
func (d LeadDetails) ForCategory(c Category) LeadDetails {
	out := d
	for _, f := range DetailFields {
		if !f.Allows(c) {
			*f.Ref(&out) = ""
		}
	}
	return out
}
