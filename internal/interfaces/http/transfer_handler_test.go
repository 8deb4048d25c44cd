package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/retail-ops-api/internal/application/auth"
	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/report"
	"github.com/jhoicas/retail-ops-api/internal/application/settings"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/application/usecase"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/retail-ops-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newTestServer arma la API completa sobre el store en memoria.
func newTestServer(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()

	settingsSvc := settings.NewService(store.ApprovalSettings(), nil, settings.Defaults{
		RequireApproval:  true,
		AutoApproveBelow: 10,
		AllowedLocations: entity.DefaultLocations,
	}, log)
	executor := transfer.NewExecutorUseCase(store, store.StockRequests(), settingsSvc, nil, log)
	history := transfer.NewHistoryUseCase(store.StockRequests(), store.StockTransfers(), settingsSvc)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    auth.NewAuthUseCase(store.Users(), settingsSvc, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		StockUC:   usecase.NewStockUseCase(store.StockItems(), settingsSvc),
		UserUC:    usecase.NewUserUseCase(store.Users(), settingsSvc),
		Intake:    transfer.NewIntakeUseCase(store.StockItems(), store.StockRequests(), settingsSvc, executor, log),
		Executor:  executor,
		History:   history,
		Reports:   report.NewHistoryReportUseCase(history, pdf.NewMarotoPDFGenerator()),
		Settings:  settingsSvc,
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return app, store
}

// call ejecuta una petición con el rol dado (vacío = sin token) y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func createStock(t *testing.T, app *fiber.App, location string, qty int) dto.StockItemResponse {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/stock", "admin", map[string]any{
		"item_code": "SKU-1", "brand": "Acme", "model": "X1",
		"quantity": qty, "location": location, "retail_price": "19.90",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[dto.StockItemResponse](t, body)
}

func submit(t *testing.T, app *fiber.App, qty any, from, to string) dto.SubmitTransferResponse {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/transfers/requests", "staff", map[string]any{
		"item_code": "SKU-1", "quantity": qty, "from_location": from, "to_location": to,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[dto.SubmitTransferResponse](t, body)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestTransferFlow_SolicitarAprobarYConsultar(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Zomba", 10)

	sub := submit(t, app, 3, "zomba", "Mzuzu")
	assert.Equal(t, entity.RequestStatusPending, sub.Request.Status)
	assert.True(t, sub.Request.AutoApprovable)
	assert.Nil(t, sub.Execution, "con aprobación obligatoria no se ejecuta al crear")
	assert.Equal(t, "Usuario staff", sub.Request.RequestedBy.Name)

	status, body := call(t, app, http.MethodGet, "/api/transfers/requests", "staff", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.StockRequestListResponse](t, body)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.EligibleCount)

	// staff no aprueba
	status, _ = call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/approve", "staff", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/approve", "manager", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.TransferResult](t, body)
	assert.True(t, res.Success)
	assert.Equal(t, entity.RequestStatusApproved, res.Status)
	assert.NotEmpty(t, res.TransferID)

	status, body = call(t, app, http.MethodGet, "/api/stock?location=mzuzu", "staff", nil)
	require.Equal(t, http.StatusOK, status)
	dest := decode[dto.StockItemListResponse](t, body)
	require.Len(t, dest.Items, 1)
	assert.Equal(t, 3, dest.Items[0].Quantity)
	assert.Equal(t, "Zomba", dest.Items[0].TransferredFrom)

	status, body = call(t, app, http.MethodGet, "/api/transfers/history?type=approved_transfer", "staff", nil)
	require.Equal(t, http.StatusOK, status)
	hist := decode[dto.TransferHistoryResponse](t, body)
	require.Len(t, hist.Items, 1)
	assert.Equal(t, 10, hist.Items[0].SourceStockBefore)
	assert.Equal(t, 7, hist.Items[0].SourceStockAfter)

	status, body = call(t, app, http.MethodGet, "/api/transfers/summary", "staff", nil)
	require.Equal(t, http.StatusOK, status)
	sum := decode[dto.TransferSummaryResponse](t, body)
	assert.Equal(t, 1, sum.Approved)
	assert.Equal(t, 0, sum.Pending)

	// aprobar dos veces
	status, body = call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/approve", "manager", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "REQUEST_NOT_PENDING")
}

func TestApprove_StockInsuficienteEsResultadoNoError(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Lilongwe", 2)
	sub := submit(t, app, 5, "Lilongwe", "Blantyre")

	status, body := call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/approve", "admin", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.TransferResult](t, body)
	assert.False(t, res.Success)
	assert.Equal(t, entity.RequestStatusRejected, res.Status)
	assert.NotEmpty(t, res.Reason)
}

func TestApprove_NoExiste(t *testing.T) {
	app, _ := newTestServer(t)
	status, body := call(t, app, http.MethodPost, "/api/transfers/requests/no-existe/approve", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_ErroresPorCampo(t *testing.T) {
	app, _ := newTestServer(t)
	status, body := call(t, app, http.MethodPost, "/api/transfers/requests", "staff", map[string]any{
		"item_code": "SKU-1", "quantity": 1, "from_location": "Zomba", "to_location": "Zomba",
	})
	require.Equal(t, http.StatusBadRequest, status)
	errResp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Fields, "quantity")
	assert.Contains(t, errResp.Fields, "to_location")
}

func TestSubmit_CantidadFueraDeRango(t *testing.T) {
	app, store := newTestServer(t)
	status, body := call(t, app, http.MethodPost, "/api/transfers/requests", "staff", map[string]any{
		"item_code": "SKU-1", "quantity": 1e20, "from_location": "Zomba", "to_location": "Mzuzu",
	})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	errResp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Fields, "quantity")

	list, err := store.StockRequests().ListByStatus(context.Background(), testCompanyID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmit_CuerpoInvalido(t *testing.T) {
	app, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/transfers/requests", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "staff"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistory_FechaInvalida(t *testing.T) {
	app, _ := newTestServer(t)
	status, body := call(t, app, http.MethodGet, "/api/transfers/history?from=ayer&type=otro", "staff", nil)
	require.Equal(t, http.StatusBadRequest, status)
	errResp := decode[dto.ErrorResponse](t, body)
	assert.Contains(t, errResp.Fields, "from")
	assert.Contains(t, errResp.Fields, "type")
}

func TestStock_ClaveDuplicada(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Zomba", 1)
	status, body := call(t, app, http.MethodPost, "/api/stock", "admin", map[string]any{
		"item_code": "SKU-1", "quantity": 4, "location": "zomba",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "DUPLICATE")
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazo, lotes y auto-aprobación
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_ConMotivoYSegundoRechazo(t *testing.T) {
	app, store := newTestServer(t)
	sub := submit(t, app, 4, "Zomba", "Mzuzu")

	status, body := call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/reject", "admin", map[string]string{"reason": "no urgente"})
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.TransferResult](t, body)
	assert.Equal(t, entity.RequestStatusRejected, res.Status)
	assert.Equal(t, "no urgente", res.Reason)

	status, _ = call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/reject", "admin", nil)
	assert.Equal(t, http.StatusConflict, status)

	recs, err := store.StockTransfers().List(context.Background(), repository.TransferFilter{CompanyID: testCompanyID})
	require.NoError(t, err)
	assert.Len(t, recs, 1, "el segundo rechazo no agrega historial")
}

func TestApproveBatch_ContinuaAnteFallos(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Zomba", 10)
	a := submit(t, app, 3, "Zomba", "Mzuzu")
	b := submit(t, app, 50, "Zomba", "Mzuzu")

	status, body := call(t, app, http.MethodPost, "/api/transfers/requests/approve-batch", "manager",
		dto.BatchApproveRequest{RequestIDs: []string{a.Request.ID, "no-existe", b.Request.ID}})
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.BatchResult](t, body)
	assert.Equal(t, 1, res.Approved)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 1, res.Errored)
	assert.Equal(t, "NOT_FOUND", res.Items[1].ErrorCode)

	status, _ = call(t, app, http.MethodPost, "/api/transfers/requests/approve-batch", "manager", dto.BatchApproveRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAutoApprove_SoloElegibles(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Zomba", 100)
	submit(t, app, 3, "Zomba", "Mzuzu")
	big := submit(t, app, 40, "Zomba", "Mzuzu")

	status, body := call(t, app, http.MethodPost, "/api/transfers/requests/auto-approve", "admin", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.BatchResult](t, body)
	assert.Equal(t, 1, res.Approved)

	status, body = call(t, app, http.MethodGet, "/api/transfers/requests/"+big.Request.ID, "staff", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, entity.RequestStatusPending, decode[dto.StockRequestResponse](t, body).Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Configuración, PDF, login y health
// ──────────────────────────────────────────────────────────────────────────────

func TestSettings_SinAprobacionObligatoriaEjecutaAlCrear(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Zomba", 10)

	status, _ := call(t, app, http.MethodPut, "/api/settings/approval", "manager", map[string]any{"require_approval": false})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPut, "/api/settings/approval", "admin", map[string]any{"require_approval": false})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.False(t, decode[dto.ApprovalSettingsResponse](t, body).RequireApproval)

	sub := submit(t, app, 2, "Zomba", "Mzuzu")
	require.NotNil(t, sub.Execution)
	assert.True(t, sub.Execution.Success)
	assert.Equal(t, entity.RequestStatusApproved, sub.Request.Status)

	status, body = call(t, app, http.MethodPost, "/api/settings/approval/reload", "superadmin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[dto.ApprovalSettingsResponse](t, body).RequireApproval)
}

func TestHistoryPDF_DevuelveAdjunto(t *testing.T) {
	app, _ := newTestServer(t)
	createStock(t, app, "Zomba", 10)
	sub := submit(t, app, 3, "Zomba", "Mzuzu")
	status, _ := call(t, app, http.MethodPost, "/api/transfers/requests/"+sub.Request.ID+"/approve", "admin", nil)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/api/transfers/history/pdf?from=2020-01-01", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	b, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestLogin_EmiteTokenUsable(t *testing.T) {
	app, store := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secreta"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID: "u-root", CompanyID: testCompanyID, Email: "root@example.com", PasswordHash: string(hash),
		Name: "Root", Role: entity.RoleSuperAdmin, Status: entity.UserStatusActive,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	status, body := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "root@example.com", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "root@example.com", Password: "secreta"})
	require.Equal(t, http.StatusOK, status, string(body))
	login := decode[dto.LoginResponse](t, body)

	req := httptest.NewRequest(http.MethodGet, "/api/settings/approval", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := store.ApprovalSettings().Get(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.NotNil(t, stored, "el primer login del superadmin crea la configuración")
}

func TestUsers_AltaPorAdminYPerfil(t *testing.T) {
	app, store := newTestServer(t)
	in := dto.CreateUserRequest{Email: "gerente@example.com", Password: "secreto-123", Name: "Gerente", Role: entity.RoleManager, Location: "blantyre"}

	status, _ := call(t, app, http.MethodPost, "/api/users", "manager", in)
	assert.Equal(t, http.StatusForbidden, status, "solo admin crea usuarios")

	status, body := call(t, app, http.MethodPost, "/api/users", "admin", in)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[dto.UserResponse](t, body)
	assert.Equal(t, entity.LocationBlantyre, created.Location)

	status, body = call(t, app, http.MethodPost, "/api/users", "admin", in)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "DUPLICATE")

	status, _ = call(t, app, http.MethodGet, "/api/users/me", "staff", nil)
	assert.Equal(t, http.StatusNotFound, status, "el usuario del token no existe en el store")

	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID: testUserID, CompanyID: testCompanyID, Email: "staff@example.com", Name: "Usuario staff",
		Role: entity.RoleStaff, Status: entity.UserStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	status, body = call(t, app, http.MethodGet, "/api/users/me", "staff", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "staff@example.com", decode[dto.UserResponse](t, body).Email)
}

func TestHealth_Publico(t *testing.T) {
	app, _ := newTestServer(t)
	status, body := call(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	app, _ := newTestServer(t)
	status, body := call(t, app, http.MethodGet, "/api/transfers/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}
