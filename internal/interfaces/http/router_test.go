package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/calldesk-api/internal/application/booking"
	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/notify"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
	"github.com/jhoicas/calldesk-api/internal/domain"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
	"github.com/jhoicas/calldesk-api/internal/domain/entity"
	"github.com/jhoicas/calldesk-api/internal/domain/repository"
	apphttp "github.com/jhoicas/calldesk-api/internal/interfaces/http"
)

const (
	adminEmail    = "direzione@calldesk.example"
	officinaEmail = "officina@calldesk.example"
	salesEmail    = "vendite@calldesk.example"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memLeadRepo struct {
	mu    sync.Mutex
	leads []entity.Lead
}

func (r *memLeadRepo) List(_ context.Context, filter repository.LeadFilter) ([]entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if !access.CanView(l, filter.Categories) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *memLeadRepo) GetByID(_ context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memLeadRepo) Update(_ context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leads {
		if r.leads[i].ID != id {
			continue
		}
		if patch.Status != nil {
			r.leads[i].Status = *patch.Status
		}
		if patch.OperatorNotes != nil {
			r.leads[i].OperatorNotes = *patch.OperatorNotes
		}
		if patch.Name != nil {
			r.leads[i].Name = *patch.Name
		}
		cp := r.leads[i]
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memLeadRepo) add(l entity.Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, l)
}

type fakeSheets struct{}

func (fakeSheets) GenerateLeadSheet(*entity.Lead, []access.Column) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

type fakeBookingService struct {
	err error
}

func (f fakeBookingService) CreateBooking(context.Context, dto.BookingPayload) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"id": "BK-7"}, nil
}

type fakeTriage struct {
	got dto.TriageRequest
	err error
}

func (f *fakeTriage) Triage(_ context.Context, req dto.TriageRequest) (string, error) {
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	return "3 lead da gestire", nil
}

func fixtureLeads() []entity.Lead {
	base := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	return []entity.Lead{
		{ID: "rec-service", Name: "Mario Rossi", Phone: "+39 333 1234567", Plate: "AB123CD", Location: "Matera",
			InterventionType: "TAGLIANDO", Status: entity.StatusToHandle, Category: entity.CategoryService, CreatedAt: base},
		{ID: "rec-sales", Name: "Anna Bianchi", Phone: "+39 320 7654321", Status: entity.StatusHandled,
			Category: entity.CategorySales, CreatedAt: base.Add(time.Minute)},
		{ID: "rec-none", Name: "Luca Verdi", Phone: "080 123456", Status: entity.StatusToHandle, CreatedAt: base.Add(2 * time.Minute)},
	}
}

type testEnv struct {
	app        *fiber.App
	repo       *memLeadRepo
	triage     *fakeTriage
	dispatcher *notify.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	repo := &memLeadRepo{leads: fixtureLeads()}
	resolver := access.NewResolver(nil)
	triage := &fakeTriage{}

	leadUC := usecase.NewLeadUseCase(repo, resolver, fakeSheets{}, log)
	bookingUC := booking.NewUseCase(fakeBookingService{}, leadUC, nil, log)
	aiUC := usecase.NewAIUseCase(triage, resolver, time.Second, log)
	dispatcher := notify.NewDispatcher(repo, notify.NewKnownSet(), notify.Config{PollInterval: time.Hour}, log)
	t.Cleanup(dispatcher.Close)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		LeadUC:     leadUC,
		BookingUC:  bookingUC,
		AIUC:       aiUC,
		Dispatcher: dispatcher,
		Resolver:   resolver,
		KeepAlive:  50 * time.Millisecond,
		Log:        log,
	})
	return &testEnv{app: app, repo: repo, triage: triage, dispatcher: dispatcher}
}

func (e *testEnv) do(t *testing.T, method, target, email, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		req.Header.Set("x-user-email", email)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "cuerpo: %s", raw)
	return v
}

func ids(leads []entity.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Leads
// ──────────────────────────────────────────────────────────────────────────────

func TestListLeads_SinIdentidad_Retorna400(t *testing.T) {
	env := newTestEnv(t)
	resp, raw := env.do(t, http.MethodGet, "/leads", "", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_IDENTITY", decode[dto.ErrorResponse](t, raw).Code)
}

func TestListLeads_FiltraPorRol(t *testing.T) {
	env := newTestEnv(t)

	_, raw := env.do(t, http.MethodGet, "/leads", officinaEmail, "")
	assert.ElementsMatch(t, []string{"rec-service", "rec-none"}, ids(decode[[]entity.Lead](t, raw)))

	_, raw = env.do(t, http.MethodGet, "/leads", salesEmail, "")
	assert.ElementsMatch(t, []string{"rec-sales", "rec-none"}, ids(decode[[]entity.Lead](t, raw)))

	_, raw = env.do(t, http.MethodGet, "/leads", adminEmail, "")
	assert.Len(t, decode[[]entity.Lead](t, raw), 3)
}

func TestListLeads_FiltroDeEstado(t *testing.T) {
	env := newTestEnv(t)

	_, raw := env.do(t, http.MethodGet, "/leads?status=Gestita&view=filtered", adminEmail, "")
	assert.Equal(t, []string{"rec-sales"}, ids(decode[[]entity.Lead](t, raw)))

	_, raw = env.do(t, http.MethodGet, "/leads?status=Gestita&view=all", adminEmail, "")
	assert.Len(t, decode[[]entity.Lead](t, raw), 3, "view=all ignora el estado")
}

func TestGetLead(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/leads/rec-sales", officinaEmail, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/leads/rec-inexistente", adminEmail, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw := env.do(t, http.MethodGet, "/leads/rec-sales", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "sin identidad no se comprueba la categoría")
	assert.Equal(t, "Anna Bianchi", decode[entity.Lead](t, raw).Name)
}

func TestUpdateOperatorNotes(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPatch, "/leads/rec-service/operator-notes", officinaEmail, `{"operatorNotes":42}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "operatorNotes deve essere una stringa", decode[dto.ErrorResponse](t, raw).Error)

	resp, raw = env.do(t, http.MethodPatch, "/leads/rec-service/operator-notes", officinaEmail, `{"operatorNotes":"Richiamare lunedì"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Richiamare lunedì", decode[entity.Lead](t, raw).OperatorNotes)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPatch, "/leads/rec-service/status", officinaEmail, `{"status":"Archiviata"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := env.do(t, http.MethodPatch, "/leads/rec-service/status", officinaEmail, `{"status":"Gestita"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StatusHandled, decode[entity.Lead](t, raw).Status)
}

func TestUpdateLead_NombreCorto(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPatch, "/leads/rec-service", adminEmail, `{"name":"M"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "name", decode[dto.ErrorResponse](t, raw).Details)
}

func TestSheet_DevuelvePDF(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodGet, "/leads/rec-service/sheet.pdf", officinaEmail, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "lead-rec-service.pdf")
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))
}

func TestSheet_NombreDeArchivoSaneado(t *testing.T) {
	env := newTestEnv(t)
	// El parámetro de ruta llega sin decodificar: '%' y las secuencias
	// codificadas no deben acabar en la cabecera.
	env.repo.add(entity.Lead{ID: `rec%22%0D%0AX-Evil:1`, Name: "Paolo Neri", Status: entity.StatusToHandle,
		Category: entity.CategoryService})

	resp, _ := env.do(t, http.MethodGet, "/leads/rec%22%0D%0AX-Evil:1/sheet.pdf", officinaEmail, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cd := resp.Header.Get("Content-Disposition")
	assert.Equal(t, "attachment; filename=lead-rec220D0AX-Evil1.pdf", cd)
	assert.NotContains(t, cd, `"`)
	assert.NotContains(t, cd, "\r")
	assert.Empty(t, resp.Header.Get("X-Evil"))
}

func TestRutasEstaticasAntesDelID(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodGet, "/leads/stats", adminEmail, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[map[string]any](t, raw)
	assert.EqualValues(t, 3, stats["total"])

	resp, _ = env.do(t, http.MethodGet, "/leads/columns", salesEmail, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/leads/table", officinaEmail, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Citas
// ──────────────────────────────────────────────────────────────────────────────

func TestBooking_CuerpoInvalido(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPost, "/pitstop/booking", "", `{"otro":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bookingData è obbligatorio", decode[dto.ErrorResponse](t, raw).Error)

	resp, _ = env.do(t, http.MethodPost, "/pitstop/booking", "", `{"bookingData":{"licensePlate":"AB1"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBooking_DesdeBorrador(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodGet, "/leads/rec-service/booking-draft", officinaEmail, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	draft := decode[dto.BookingPayload](t, raw)
	assert.Equal(t, "DEP1_MATERA", draft.Deposito)

	body, err := json.Marshal(dto.BookingRequest{BookingData: &draft})
	require.NoError(t, err)
	resp, raw = env.do(t, http.MethodPost, "/pitstop/booking", officinaEmail, string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode, "cuerpo: %s", raw)
	out := decode[dto.BookingResponse](t, raw)
	assert.True(t, out.Success)
	assert.Equal(t, "BK-7", out.Booking["id"])
	assert.Equal(t, "Prenotazione creata con successo in Pit Stop", out.Message)
}

// ──────────────────────────────────────────────────────────────────────────────
// Agente IA
// ──────────────────────────────────────────────────────────────────────────────

func TestAIAgent(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPost, "/ai-agent", "", `{"userEmail":"officina@calldesk.example"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3 lead da gestire", decode[dto.AIAgentResponse](t, raw).Response)
	assert.Equal(t, "officina", env.triage.got.UserRole)

	// Sin cuerpo se usa la identidad de la petición.
	_, _ = env.do(t, http.MethodPost, "/ai-agent", adminEmail, "")
	assert.Equal(t, adminEmail, env.triage.got.UserEmail)
	assert.Nil(t, env.triage.got.AllowedRequestTypes)
}

func TestAIAgent_SinConfigurar(t *testing.T) {
	env := newTestEnv(t)
	env.triage.err = domain.ErrNotConfigured

	resp, raw := env.do(t, http.MethodPost, "/ai-agent", adminEmail, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "API key non configurata", decode[dto.ErrorResponse](t, raw).Error)

	env.triage.err = domain.ErrUpstream
	_, raw = env.do(t, http.MethodPost, "/ai-agent", adminEmail, "")
	assert.Equal(t, "Impossibile contattare l'agente AI", decode[dto.ErrorResponse](t, raw).Error)
}

// ──────────────────────────────────────────────────────────────────────────────
// Webhook y notificaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhookNewLeads(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPost, "/webhooks/new-leads", "", `{"leadIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "leadIds deve essere un array non vuoto", decode[dto.ErrorResponse](t, raw).Error)

	// La primera llamada registra las leads existentes como conocidas.
	_, raw = env.do(t, http.MethodPost, "/webhooks/new-leads", "", `{"leadIds":["rec-service"]}`)
	assert.Zero(t, decode[dto.NewLeadsWebhookResponse](t, raw).Notified)

	env.repo.add(entity.Lead{ID: "rec-new", Name: "Nuovo", Category: entity.CategoryParts, CreatedAt: time.Now()})
	_, raw = env.do(t, http.MethodPost, "/webhooks/new-leads", "", `{"leadIds":["rec-new","rec-fantasma"]}`)
	out := decode[dto.NewLeadsWebhookResponse](t, raw)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Notified)

	_, raw = env.do(t, http.MethodGet, "/webhooks/new-leads", "", "")
	status := decode[notify.Status](t, raw)
	assert.True(t, status.Initialized)
	assert.Equal(t, "steady", status.State)
	assert.Equal(t, 4, status.NotifiedCount)
}

func TestNotificationStream(t *testing.T) {
	env := newTestEnv(t)

	// El canal lo abre el writer del stream; el stream termina al cerrar el dispatcher.
	opened := make(chan bool, 1)
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for env.dispatcher.Status().Channels == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		opened <- env.dispatcher.Status().Channels == 1
		time.Sleep(150 * time.Millisecond)
		env.dispatcher.Close()
	}()

	req := httptest.NewRequest(http.MethodGet, "/leads/notifications", nil)
	req.Header.Set("x-user-email", officinaEmail)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var data, comments []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case strings.HasPrefix(line, ":"):
			comments = append(comments, line)
		}
	}
	require.NotEmpty(t, data)

	var first notify.Event
	require.NoError(t, json.Unmarshal([]byte(data[0]), &first))
	assert.Equal(t, notify.EventConnected, first.Type)
	assert.NotEmpty(t, comments, "debe llegar al menos un keep-alive")
	assert.True(t, <-opened, "una suscripción mientras dura el stream")
	assert.Equal(t, 0, env.dispatcher.Status().Channels, "el canal se libera al terminar el writer")
}

func TestNotificationStream_DispatcherCerrado_Retorna503(t *testing.T) {
	env := newTestEnv(t)
	env.dispatcher.Close()

	resp, raw := env.do(t, http.MethodGet, "/leads/notifications", officinaEmail, "")

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "UNAVAILABLE", decode[dto.ErrorResponse](t, raw).Code)
	assert.Equal(t, 0, env.dispatcher.Status().Channels)
}
