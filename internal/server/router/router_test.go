package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/server/handlers"
	"github.com/mamadbah2/microgreens/internal/service/planning"
	"github.com/mamadbah2/microgreens/internal/store"
)

type stubPlanner struct{}

func (stubPlanner) Generate(context.Context, planning.IntelligentPlanInput) models.IntelligentSowingPlan {
	return models.IntelligentSowingPlan{Plan: []models.IntelligentSowingPlanItem{}, PurchaseList: []models.SeedPurchaseItem{}}
}

type failingAdvisor struct{}

func (failingAdvisor) SowingSuggestions(context.Context, models.SuggestionContext) ([]models.SowingSuggestion, error) {
	return nil, errors.New("ai overloaded")
}

func newTestEngine(t *testing.T, serverCfg config.ServerConfig) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.Open(context.Background(), nil, time.UTC, nil)
	farm := handlers.NewFarmHandler(st, stubPlanner{}, failingAdvisor{}, nil)
	if serverCfg.RateLimit == 0 {
		serverCfg.RateLimit = 100
		serverCfg.RateBurst = 100
	}
	return New(serverCfg, farm, nil, nil), st
}

func do(t *testing.T, engine http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndNoRoute(t *testing.T) {
	engine, _ := newTestEngine(t, config.ServerConfig{})

	rec := do(t, engine, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, engine, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Webhook routes are only registered with a WhatsApp handler.
	rec = do(t, engine, http.MethodGet, "/webhook", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderLifecycle(t *testing.T) {
	engine, _ := newTestEngine(t, config.ServerConfig{})

	rec := do(t, engine, http.MethodPost, "/api/orders", "application/json",
		`{"clientName":"Cafe Verde","items":[{"variety":"Sunflower","quantity":5}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderPending, order.Status)

	rec = do(t, engine, http.MethodPost, "/api/harvest", "application/json", `{"harvested":{"Sunflower":3}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	harvested := decode[struct {
		Shortfall models.ShortfallReport `json:"shortfall"`
	}](t, rec)
	require.Len(t, harvested.Shortfall, 1)
	assert.Equal(t, 2, harvested.Shortfall[0].Shortfall)

	rec = do(t, engine, http.MethodPost, "/api/orders/"+order.ID+"/dispatch", "application/json", `{"deliveryMode":"Porter"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, engine, http.MethodPost, "/api/orders/"+order.ID+"/dispatch", "application/json", `{"deliveryMode":"Porter"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/dispatch/manifest.pdf", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = do(t, engine, http.MethodPost, "/api/orders/"+order.ID+"/complete", "application/json", `{"cashReceived":250,"remarks":"paid"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderCompleted, decode[models.Order](t, rec).Status)

	rec = do(t, engine, http.MethodDelete, "/api/orders/"+order.ID, "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrderErrors(t *testing.T) {
	engine, _ := newTestEngine(t, config.ServerConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing client", http.MethodPost, "/api/orders", `{"items":[{"variety":"Radish","quantity":1}]}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/orders", `{"clientName":"A","items":[{"variety":"Radish","quantity":1}],"deliveryDate":"June 1"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/orders", `{`, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/api/orders/ORD-X", `{"clientName":"A","items":[{"variety":"Radish","quantity":1}]}`, http.StatusNotFound},
		{"unknown mode", http.MethodPost, "/api/orders/ORD-X/dispatch", `{"deliveryMode":"Drone"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, engine, tt.method, tt.path, "application/json", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestImportOrdersCSV(t *testing.T) {
	engine, st := newTestEngine(t, config.ServerConfig{})

	bad := "clientName,deliveryDate,variety,quantity\nCafe,2024-06-01,Kale,2\n"
	rec := do(t, engine, http.MethodPost, "/api/orders/import", "text/csv", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Row 2")
	assert.Empty(t, st.Orders())

	good := "clientName,deliveryDate,variety,quantity\nCafe,2024-06-01,Radish,2\nCafe,2024-06-01,Peas,1\n"
	rec = do(t, engine, http.MethodPost, "/api/orders/import", "text/csv", good)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, st.Orders(), 1)
}

func TestReportsCSVFormat(t *testing.T) {
	engine, _ := newTestEngine(t, config.ServerConfig{})

	rec := do(t, engine, http.MethodGet, "/api/reports/yield?format=csv", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "variety,trays_sown,boxes_harvested,yield_ratio\n"))

	rec = do(t, engine, http.MethodGet, "/api/reports/upcoming-harvests", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]json.RawMessage](t, rec), 14)

	rec = do(t, engine, http.MethodGet, "/api/reports/summary?start=2024-06-10&end=2024-06-01", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanningEndpoints(t *testing.T) {
	engine, _ := newTestEngine(t, config.ServerConfig{})

	rec := do(t, engine, http.MethodGet, "/api/planning/intelligent", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/planning/sowing?date=2024-06-01", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2024-06-01"`)

	// Too little history: the advisor is not consulted.
	rec = do(t, engine, http.MethodGet, "/api/planning/suggestions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSuggestionsUpstreamFailure(t *testing.T) {
	engine, st := newTestEngine(t, config.ServerConfig{})
	data := st.Snapshot()
	for i := 0; i < planning.MinSuggestionOrders; i++ {
		data.Orders = append(data.Orders, models.Order{
			ID:     "ORD-" + string(rune('A'+i)),
			Status: models.OrderCompleted,
			Items:  []models.OrderItem{{Variety: "Radish", Quantity: 2}},
		})
	}
	require.NoError(t, st.Replace(context.Background(), data))

	rec := do(t, engine, http.MethodGet, "/api/planning/suggestions", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "ai overloaded")
}

func TestDataExportImportReset(t *testing.T) {
	engine, st := newTestEngine(t, config.ServerConfig{})

	rec := do(t, engine, http.MethodPost, "/api/varieties", "application/json", `{"name":"Basil","growthCycleDays":12}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, engine, http.MethodGet, "/api/data/export", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "microgreens_backup_")
	exported := rec.Body.String()

	rec = do(t, engine, http.MethodPost, "/api/data/reset", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, st.Varieties(), 5)

	rec = do(t, engine, http.MethodPost, "/api/data/import", "application/json", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, st.Varieties(), 6)

	rec = do(t, engine, http.MethodPost, "/api/data/import", "application/json", `{"orders":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitedRoutes(t *testing.T) {
	engine, _ := newTestEngine(t, config.ServerConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, engine, http.MethodGet, "/api/planning/intelligent", "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, engine, http.MethodGet, "/api/planning/intelligent", "", "").Code)
	// Unlimited routes are unaffected.
	assert.Equal(t, http.StatusOK, do(t, engine, http.MethodGet, "/api/orders", "", "").Code)
}

func TestIPLimiterForgetsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)
	l := newIPLimiter(0.001, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(visitorTTL + time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}
