package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cipriano/internal/apierror"
	"cipriano/internal/dto"
	"cipriano/internal/handler"
	"cipriano/internal/middleware"
	"cipriano/internal/model"
	"cipriano/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Service stubs ─────────────────────────────────────────────────────────────

type stubScan struct {
	err  error
	last service.ScanInput
}

func (s *stubScan) ProcesarEscaneo(_ context.Context, in service.ScanInput) (*dto.EscaneoResponse, error) {
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EscaneoResponse{Mensaje: "ok", Pizza: dto.PizzaResponse{ID: in.PizzaID}}, nil
}

func (s *stubScan) CambiarEstadoAdmin(_ context.Context, id, estado string, actor service.Actor, _ string) (*dto.EscaneoResponse, error) {
	s.last = service.ScanInput{PizzaID: id, Modo: estado, Actor: actor}
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EscaneoResponse{Mensaje: "ok"}, nil
}

func (s *stubScan) DeshacerUltimo(_ context.Context, actor service.Actor, _ string) (*dto.EscaneoResponse, error) {
	s.last = service.ScanInput{Actor: actor}
	if s.err != nil {
		return nil, s.err
	}
	return &dto.EscaneoResponse{Mensaje: "ok"}, nil
}

func (s *stubScan) VerificarPin(string) error { return s.err }

func (s *stubScan) ConsultarPizza(_ context.Context, id string) (*dto.PizzaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PizzaResponse{ID: id, Estado: model.EstadoLista}, nil
}

type stubAuth struct{ err error }

func (s *stubAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.LoginResponse{AccessToken: "tok", TokenType: "bearer", Operador: dto.OperadorResponse{Username: req.Username}}, nil
}

func (s *stubAuth) CrearOperador(context.Context, string, string, string) (*dto.OperadorResponse, error) {
	return nil, nil
}

func (s *stubAuth) GuardarOperador(context.Context, string, string, string) (*dto.OperadorResponse, error) {
	return nil, nil
}

func (s *stubAuth) BootstrapOperadores(context.Context) error { return nil }

type stubDashboard struct{ export *dto.VentasExport }

func (s *stubDashboard) Resumen(context.Context, dto.DashboardFilter) (*dto.DashboardResponse, error) {
	return &dto.DashboardResponse{}, nil
}

func (s *stubDashboard) ExportarVentas(context.Context, dto.VentasExportFilter) (*dto.VentasExport, error) {
	return s.export, nil
}

type stubLotes struct{ pizzas []model.Pizza }

func (s *stubLotes) CrearLote(context.Context, service.CrearLoteInput) (*dto.LoteGeneradoResponse, error) {
	return &dto.LoteGeneradoResponse{Lote: "LUN-MUZZA"}, nil
}

func (s *stubLotes) PizzasParaEtiquetas(_ context.Context, codigo, _, _ string) ([]model.Pizza, error) {
	if len(s.pizzas) == 0 {
		return nil, &service.OpError{Kind: service.ErrNotFound, Msg: "Lote sin pizzas: " + codigo}
	}
	return s.pizzas, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// withOperador injects claims the way JWTAuth would.
func withOperador(username, rol string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{Username: username, Rol: rol})
		c.Next()
	}
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(mw...)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// ── Escaneo ──────────────────────────────────────────────────────────────────

func TestEscanear_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", &service.OpError{Kind: service.ErrNotFound, Msg: "ID no encontrado"}, http.StatusNotFound, apierror.CodeNotFound},
		{"transition", &service.OpError{Kind: service.ErrInvalidTransition, Msg: "no"}, http.StatusConflict, apierror.CodeInvalidTransition},
		{"argument", &service.OpError{Kind: service.ErrInvalidArgument, Msg: "no"}, http.StatusBadRequest, apierror.CodeInvalidArgument},
		{"pin", &service.OpError{Kind: service.ErrUnauthorized, Msg: "no"}, http.StatusForbidden, apierror.CodeUnauthorized},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, http.StatusServiceUnavailable, apierror.CodeRetry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := handler.NewEscaneoHandler(&stubScan{err: tc.err})
			r := newEngine(withOperador("cocina", model.OperadorCocina))
			r.POST("/scan", h.Escanear)

			w := postJSON(t, r, "/scan", dto.EscaneoRequest{PizzaID: "LUN-MUZZA-0001", Modo: "KITCHEN"})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeErr(t, w).Code)
		})
	}
}

func TestEscanear_TransitorioIndicaRetryAfter(t *testing.T) {
	h := handler.NewEscaneoHandler(&stubScan{err: &pgconn.PgError{Code: "40P01"}})
	r := newEngine(withOperador("ventas", model.OperadorVentas))
	r.POST("/scan", h.Escanear)

	w := postJSON(t, r, "/scan", dto.EscaneoRequest{PizzaID: "LUN-MUZZA-0001", Modo: "SALES"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestEscanear_ErrorDesconocidoEs500SinDetalle(t *testing.T) {
	h := handler.NewEscaneoHandler(&stubScan{err: errors.New("pq: relation pizzas does not exist")})
	r := newEngine(withOperador("cocina", model.OperadorCocina))
	r.POST("/scan", h.Escanear)

	w := postJSON(t, r, "/scan", dto.EscaneoRequest{PizzaID: "LUN-MUZZA-0001", Modo: "KITCHEN"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestEscanear_ModoDeOtraEstacion(t *testing.T) {
	stub := &stubScan{}
	h := handler.NewEscaneoHandler(stub)
	r := newEngine(withOperador("cocina", model.OperadorCocina))
	r.POST("/scan", h.Escanear)

	w := postJSON(t, r, "/scan", dto.EscaneoRequest{PizzaID: "LUN-MUZZA-0001", Modo: "sales"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, stub.last.PizzaID, "service must not be called")
}

func TestEscanear_AdminUsaCualquierModo(t *testing.T) {
	stub := &stubScan{}
	h := handler.NewEscaneoHandler(stub)
	r := newEngine(withOperador("admin", model.OperadorAdmin))
	r.POST("/scan", h.Escanear)

	w := postJSON(t, r, "/scan", dto.EscaneoRequest{PizzaID: "LUN-MUZZA-0001", Modo: "sales", MeseroCodigo: "MES-0001"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SALES", stub.last.Modo)
	assert.Equal(t, "MES-0001", stub.last.MeseroCodigo)
	assert.Equal(t, service.Actor{Nombre: "admin", Rol: model.RolAdmin}, stub.last.Actor)
}

func TestEscanear_BodyInvalido(t *testing.T) {
	h := handler.NewEscaneoHandler(&stubScan{})
	r := newEngine(withOperador("cocina", model.OperadorCocina))
	r.POST("/scan", h.Escanear)

	w := postJSON(t, r, "/scan", map[string]string{"modo": "KITCHEN"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCambiarEstado_ActorDesdeToken(t *testing.T) {
	stub := &stubScan{}
	h := handler.NewEscaneoHandler(stub)
	r := newEngine(withOperador("lotes", model.OperadorLotes))
	r.POST("/admin/estado", h.CambiarEstado)

	w := postJSON(t, r, "/admin/estado", dto.AdminEstadoRequest{PizzaID: "LUN-MUZZA-0001", Estado: "MERMA", Pin: "1234"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.Actor{Nombre: "lotes", Rol: model.RolAdmin}, stub.last.Actor)

	w = postJSON(t, r, "/admin/estado", dto.AdminEstadoRequest{PizzaID: "LUN-MUZZA-0001", Estado: "VENDIDA", Pin: "1234"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeshacer_PinIncorrecto(t *testing.T) {
	h := handler.NewEscaneoHandler(&stubScan{err: &service.OpError{Kind: service.ErrUnauthorized, Msg: "PIN admin invalido"}})
	r := newEngine(withOperador("admin", model.OperadorAdmin))
	r.POST("/admin/deshacer", h.Deshacer)
	r.POST("/admin/verificar-pin", h.VerificarPin)

	w := postJSON(t, r, "/admin/deshacer", dto.DeshacerRequest{Pin: "0000"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PIN admin invalido", decodeErr(t, w).Detail)

	w = postJSON(t, r, "/admin/verificar-pin", dto.VerificarPinRequest{Pin: "0000"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestConsultarPizza(t *testing.T) {
	r := newEngine(withOperador("ventas", model.OperadorVentas))
	r.GET("/pizzas/:id", handler.NewEscaneoHandler(&stubScan{}).Consultar)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pizzas/LUN-MUZZA-0001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var p dto.PizzaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "LUN-MUZZA-0001", p.ID)

	r = newEngine(withOperador("ventas", model.OperadorVentas))
	r.GET("/pizzas/:id", handler.NewEscaneoHandler(&stubScan{err: &service.OpError{Kind: service.ErrNotFound, Msg: "ID no encontrado"}}).Consultar)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pizzas/X-0001", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	r := newEngine()
	r.POST("/login", handler.NewAuthHandler(&stubAuth{}).Login)
	w := postJSON(t, r, "/login", dto.LoginRequest{Username: "cocina", Pin: "1111"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.AccessToken)

	r = newEngine()
	r.POST("/login", handler.NewAuthHandler(&stubAuth{err: &service.OpError{Kind: service.ErrUnauthorized, Msg: "credenciales invalidas"}}).Login)
	w = postJSON(t, r, "/login", dto.LoginRequest{Username: "cocina", Pin: "0000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, r, "/login", dto.LoginRequest{Username: "cocina", Pin: "abcd"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func TestExportarVentas_CSV(t *testing.T) {
	stub := &stubDashboard{export: &dto.VentasExport{
		Rows: []dto.VentaExportRow{
			{PizzaID: "LUN-MUZZA-0001", Sabor: "MUZZA", Precio: decimal.NewFromInt(9000), SoldAt: "2026-03-14 20:01:00", SoldBy: "ventas", Mesero: "Carla"},
			{PizzaID: "LUN-FUGA-0002", Sabor: "FUGA", Precio: decimal.NewFromInt(11000), SoldBy: "ventas"},
		},
		Total: decimal.NewFromInt(20000),
	}}
	r := newEngine()
	r.GET("/ventas.csv", handler.NewDashboardHandler(stub).ExportarVentas)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ventas.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ventas_")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,sabor,tamano,precio,vendida,vendedor,mesero", lines[0])
	assert.Equal(t, "LUN-MUZZA-0001,MUZZA,,9000.00,2026-03-14 20:01:00,ventas,Carla", lines[1])
	assert.Equal(t, "TOTAL,,,20000.00,,,2 pizzas", lines[3])
}

// ── Lotes ────────────────────────────────────────────────────────────────────

func TestEtiquetasLote(t *testing.T) {
	stub := &stubLotes{pizzas: []model.Pizza{
		{ID: "LUN-MUZZA-0001", Sabor: "MUZZA", Precio: decimal.NewFromInt(9000)},
		{ID: "LUN-MUZZA-0002", Sabor: "MUZZA", Precio: decimal.NewFromInt(9000)},
	}}
	r := newEngine()
	r.GET("/lotes/:codigo/etiquetas.pdf", handler.NewLotesHandler(stub).Etiquetas)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lotes/lun-muzza/etiquetas.pdf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "etiquetas_LUN-MUZZA.pdf")

	r = newEngine()
	r.GET("/lotes/:codigo/etiquetas.pdf", handler.NewLotesHandler(&stubLotes{}).Etiquetas)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lotes/MAR-FUGA/etiquetas.pdf", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
