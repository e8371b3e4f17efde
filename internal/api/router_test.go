package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-manager/internal/core/advisory"
	"food-manager/internal/core/ai/provider"
	"food-manager/internal/core/ai/queue"
	"food-manager/internal/core/ai/service"
	foodService "food-manager/internal/core/food"
	"food-manager/internal/core/lifecycle"
	"food-manager/internal/core/model"
	recipeService "food-manager/internal/core/recipe"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"
	"food-manager/internal/realtime"
	"food-manager/internal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

// scriptedProvider 依 system prompt 回傳固定內容
type scriptedProvider struct {
	advice string
	recipe string
	update string
}

func (p *scriptedProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	system := req.Messages[0].Content
	switch {
	case strings.Contains(system, "storage expert"):
		return &provider.Response{Content: p.advice}, nil
	case strings.Contains(system, "creative chef"):
		return &provider.Response{Content: p.recipe}, nil
	default:
		return &provider.Response{Content: p.update}, nil
	}
}

func (p *scriptedProvider) GetModel() string          { return "scripted" }
func (p *scriptedProvider) GetTimeout() time.Duration { return time.Second }
func (p *scriptedProvider) Close() error              { return nil }

type testServer struct {
	router *gin.Engine
	clock  *common.FixedClock
}

func newTestServer(t *testing.T, p provider.Provider) *testServer {
	t.Helper()
	cfg := &config.Config{
		App:         config.AppConfig{Version: "test"},
		Queue:       config.QueueConfig{Workers: 2, MaxSize: 10},
		Storage:     config.StorageConfig{Driver: "memory"},
		DedupWindow: time.Nanosecond,
	}

	aiSvc := service.NewService(cfg, p, nil, queue.NewManager(&cfg.Queue))
	advisor := advisory.NewClient(aiSvc, advisory.DefaultOptions())
	clock := &common.FixedClock{T: now}
	hub := realtime.NewHub()
	foodSvc := foodService.NewService(memory.New().Repositories(), advisor, lifecycle.MergePolicy{PantryMeansUnset: true},
		foodService.WithClock(clock),
		foodService.WithNotifier(hub),
	)

	router, err := SetupRouter(cfg, Dependencies{
		AIService:         aiSvc,
		FoodService:       foodSvc,
		SuggestionService: recipeService.NewSuggestionService(foodSvc, advisor),
		Hub:               hub,
	})
	require.NoError(t, err)
	return &testServer{router: router, clock: clock}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const adviceJSON = `{"category":"dairy","shelf_life_days":10,"storage_recommendation":"refrigerated","emoji":"🥛","storage_tips":"Keep cold"}`

func TestStatusAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["storage"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ai_enabled":false`)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/live", nil).Code)
}

func TestFoodItemLifecycle(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{advice: adviceJSON})

	w := s.do(t, http.MethodPost, "/api/v1/food-items", map[string]interface{}{"name": "Milk", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decode[model.FoodItem](t, w)
	assert.Equal(t, model.CategoryDairy, item.Category)
	assert.Equal(t, model.StorageRefrigerated, item.StorageCondition)
	assert.Equal(t, now.AddDate(0, 0, 10), item.ExpirationDate)

	w = s.do(t, http.MethodGet, "/api/v1/food-items/"+item.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	events := decode[[]model.CalendarEvent](t, s.do(t, http.MethodGet, "/api/v1/calendar-events", nil))
	assert.Len(t, events, 3)

	w = s.do(t, http.MethodPut, "/api/v1/food-items/"+item.ID, map[string]interface{}{
		"expiration_date": now.AddDate(0, 0, 1).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	events = decode[[]model.CalendarEvent](t, s.do(t, http.MethodGet, "/api/v1/calendar-events", nil))
	assert.Len(t, events, 2)

	w = s.do(t, http.MethodGet, "/api/v1/notifications/unread", nil)
	assert.JSONEq(t, `{"unread_count":2}`, w.Body.String())

	notes := decode[[]model.Notification](t, s.do(t, http.MethodGet, "/api/v1/notifications", nil))
	require.Len(t, notes, 2)
	w = s.do(t, http.MethodPut, "/api/v1/notifications/"+notes[0].ID+"/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/notifications/unread", nil)
	assert.JSONEq(t, `{"unread_count":1}`, w.Body.String())

	stats := decode[foodService.DashboardStats](t, s.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil))
	assert.Equal(t, 1, stats.TotalItems)
	assert.Equal(t, 1, stats.ExpiringSoon)

	w = s.do(t, http.MethodDelete, "/api/v1/food-items/"+item.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/food-items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	events = decode[[]model.CalendarEvent](t, s.do(t, http.MethodGet, "/api/v1/calendar-events", nil))
	assert.Empty(t, events)
}

func TestFoodItemErrors(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/food-items", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)

	w = s.do(t, http.MethodPost, "/api/v1/food-items", map[string]interface{}{"name": "x", "category": "snacks"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/food-items?filter=rotten", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/food-items/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeNotFound)

	w = s.do(t, http.MethodPut, "/api/v1/food-items/missing", map[string]interface{}{"name": "y"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/notifications/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateFallsBackWithoutAI(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/food-items", map[string]interface{}{"name": "Mystery"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decode[model.FoodItem](t, w)
	assert.Equal(t, model.CategoryOther, item.Category)
	assert.Equal(t, model.DefaultShelfLifeDays, item.ShelfLifeDays)

	items := decode[[]model.FoodItem](t, s.do(t, http.MethodGet, "/api/v1/food-items?filter=expiring_soon", nil))
	assert.Len(t, items, 1)
}

func TestAIUpdate(t *testing.T) {
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	s := newTestServer(t, &scriptedProvider{
		advice: adviceJSON,
		update: `{"expiration_date":"` + tomorrow + `","notes":"opened"}`,
	})
	item := decode[model.FoodItem](t, s.do(t, http.MethodPost, "/api/v1/food-items", map[string]interface{}{"name": "Milk"}))

	w := s.do(t, http.MethodPost, "/api/v1/food-items/"+item.ID+"/ai-update", map[string]interface{}{"instruction": "I opened it, use by tomorrow"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[foodService.InterpretResult](t, w)
	assert.True(t, res.Success)
	assert.Equal(t, tomorrow, res.UpdatedFields["expiration_date"])

	w = s.do(t, http.MethodPost, "/api/v1/food-items/"+item.ID+"/ai-update", map[string]interface{}{"instruction": "apply it", "apply": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[foodService.InterpretResult](t, w)
	require.NotNil(t, res.Item)
	require.NotNil(t, res.Item.Notes)
	assert.Equal(t, "opened", *res.Item.Notes)

	w = s.do(t, http.MethodPost, "/api/v1/food-items/"+item.ID+"/ai-update", map[string]interface{}{"instruction": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealSuggestions(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{
		advice: adviceJSON,
		recipe: `{"recipes":[{"name":"Milk Pudding","servings":2,"prep_time":5,"cook_time":15,"ingredients":[],"instructions":["Mix","Chill"]}]}`,
	})

	w := s.do(t, http.MethodPost, "/api/v1/meal-suggestions", map[string]interface{}{"type": "dessert"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[recipeService.SuggestionResult](t, w)
	assert.False(t, res.Success)
	assert.Equal(t, recipeService.MessageNoIngredients, res.Message)

	s.do(t, http.MethodPost, "/api/v1/food-items", map[string]interface{}{"name": "Milk"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meal-suggestions", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[recipeService.SuggestionResult](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.AvailableItemsCount)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, 20, res.Recipes[0].TotalTime)
}
