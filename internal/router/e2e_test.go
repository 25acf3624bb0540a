//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/config"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("stock_test"),
		tcPostgres.WithUsername("stock"),
		tcPostgres.WithPassword("stock"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               5000,
		Env:                "test",
		JWTSecret:          "test-secret-key-with-enough-length",
		JWTExpirationHours: 8,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		CORSOrigins:        "*",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, 10, false)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := service.HashPassword("stock2026")
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		`INSERT INTO usuarios (username, password_hash, rol, activo) VALUES ('admin', ?, 'administrador', true)`,
		hash).Error)

	ledger := service.NewStockLedger(
		repository.NewMovimientoStockRepository(db),
		repository.NewVarianteRepository(db),
		nil,
		worker.NewDispatcher(rdb),
	)
	srv := httptest.NewServer(New(cfg, Deps{DB: db, Redis: rdb, Ledger: ledger}))
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/api/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "stock2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, loginResp, &login)
	require.NotEmpty(t, login.AccessToken)

	return &testEnv{server: srv, token: login.AccessToken, db: db, rdb: rdb}
}

func (env *testEnv) seedVariante(t *testing.T, nombre string, minimo int) int64 {
	t.Helper()
	var idProducto, idVariante int64
	require.NoError(t, env.db.Raw(
		`INSERT INTO productos (nombre) VALUES (?) RETURNING idproducto`, nombre).Scan(&idProducto).Error)
	require.NoError(t, env.db.Raw(
		`INSERT INTO producto_variantes (idproducto, precio_compra, stock_minimo) VALUES (?, 10, ?) RETURNING idvariante`,
		idProducto, minimo).Scan(&idVariante).Error)
	return idVariante
}

func (env *testEnv) registrar(t *testing.T, idVariante int64, tipo string, cantidad int) *http.Response {
	t.Helper()
	return do(t, env.server, "POST", "/api/stock/movimientos",
		jsonBody(t, map[string]any{"idvariante": idVariante, "tipo": tipo, "cantidad": cantidad}),
		env.token)
}

func (env *testEnv) stock(t *testing.T, idVariante int64) int {
	t.Helper()
	resp := do(t, env.server, "GET", fmt.Sprintf("/api/variantes/%d/stock", idVariante), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.StockActualResponse
	decodeJSON(t, resp, &body)
	return body.StockActual
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloDeStock(t *testing.T) {
	env := setupTestEnv(t)
	v := env.seedVariante(t, "Remera", 5)

	assert.Equal(t, 0, env.stock(t, v), "no history means zero")

	resp := env.registrar(t, v, "ENTRADA", 10)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var creado dto.MovimientoCreadoResponse
	decodeJSON(t, resp, &creado)
	assert.Equal(t, "ok", creado.Status)
	assert.Positive(t, creado.IDMovimiento)

	require.Equal(t, http.StatusCreated, env.registrar(t, v, "SALIDA", 3).StatusCode)
	require.Equal(t, http.StatusCreated, env.registrar(t, v, "AJUSTE", 2).StatusCode)
	assert.Equal(t, 9, env.stock(t, v))

	require.Equal(t, http.StatusCreated, env.registrar(t, v, "SALIDA", 12).StatusCode)
	assert.Equal(t, -3, env.stock(t, v), "stock may go negative")

	// Variant listing and alerts derive from the same history.
	listResp := do(t, env.server, "GET", fmt.Sprintf("/api/variantes?ids=%d", v), nil, "")
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var rows []dto.VarianteStockResponse
	decodeJSON(t, listResp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, -3, rows[0].StockActual)
	assert.True(t, rows[0].BajoMinimo)

	alertResp := do(t, env.server, "GET", "/api/stock/alertas", nil, "")
	require.Equal(t, http.StatusOK, alertResp.StatusCode)
	var alertas []dto.VarianteStockResponse
	decodeJSON(t, alertResp, &alertas)
	require.Len(t, alertas, 1)
	assert.Equal(t, v, alertas[0].IDVariante)

	movResp := do(t, env.server, "GET", fmt.Sprintf("/api/stock/movimientos?idvariante=%d&limit=2", v), nil, "")
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movs dto.MovimientoListResponse
	decodeJSON(t, movResp, &movs)
	assert.Equal(t, int64(4), movs.Total)
	assert.Equal(t, 2, movs.TotalPages)
	require.Len(t, movs.Data, 2)
	assert.Equal(t, "SALIDA", movs.Data[0].Tipo)
	assert.Equal(t, 12, movs.Data[0].Cantidad)

	// Outgoing movements schedule a low-stock check.
	queued, err := env.rdb.LLen(context.Background(), worker.QueueStock).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), queued, "SALIDA and AJUSTE movements enqueue, ENTRADA does not")
}

func TestE2E_RechazosNoDejanRastro(t *testing.T) {
	env := setupTestEnv(t)
	v := env.seedVariante(t, "Buzo", 0)

	cases := []struct {
		body   map[string]any
		status int
	}{
		{map[string]any{"idvariante": v, "tipo": "ROBO", "cantidad": 1}, http.StatusBadRequest},
		{map[string]any{"idvariante": v, "tipo": "ENTRADA", "cantidad": 0}, http.StatusBadRequest},
		{map[string]any{"idvariante": v, "tipo": "ENTRADA", "cantidad": -4}, http.StatusBadRequest},
		{map[string]any{"idvariante": "abc", "tipo": "ENTRADA", "cantidad": 1}, http.StatusBadRequest},
		{map[string]any{"tipo": "ENTRADA", "cantidad": 1}, http.StatusBadRequest},
		{map[string]any{"idvariante": 999999, "tipo": "ENTRADA", "cantidad": 1}, http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := do(t, env.server, "POST", "/api/stock/movimientos", jsonBody(t, tc.body), env.token)
		assert.Equal(t, tc.status, resp.StatusCode, "%v", tc.body)
		resp.Body.Close()
	}

	// Without a token the write is refused before reaching the ledger.
	resp := do(t, env.server, "POST", "/api/stock/movimientos",
		jsonBody(t, map[string]any{"idvariante": v, "tipo": "ENTRADA", "cantidad": 1}), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 0, env.stock(t, v))
	var n int64
	require.NoError(t, env.db.Table("movimientos_stock").Count(&n).Error)
	assert.Zero(t, n)
}

func TestE2E_SalidasConcurrentes(t *testing.T) {
	env := setupTestEnv(t)
	v := env.seedVariante(t, "Gorra", 0)
	require.Equal(t, http.StatusCreated, env.registrar(t, v, "ENTRADA", 50).StatusCode)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.registrar(t, v, "SALIDA", 2)
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, env.stock(t, v))
}

func TestE2E_EliminarVariante(t *testing.T) {
	env := setupTestEnv(t)
	conHistoria := env.seedVariante(t, "Remera", 0)
	sinHistoria := env.seedVariante(t, "Buzo", 0)
	require.Equal(t, http.StatusCreated, env.registrar(t, conHistoria, "ENTRADA", 4).StatusCode)

	resp := do(t, env.server, "DELETE", fmt.Sprintf("/api/variantes/%d", conHistoria), nil, env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 4, env.stock(t, conHistoria))

	resp = do(t, env.server, "DELETE", fmt.Sprintf("/api/variantes/%d", sinHistoria), nil, env.token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "DELETE", fmt.Sprintf("/api/variantes/%d", sinHistoria), nil, env.token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_Health(t *testing.T) {
	env := setupTestEnv(t)
	resp := do(t, env.server, "GET", "/api/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["broker"])
}
