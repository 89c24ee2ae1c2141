package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories/memory"
	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type apiEnv struct {
	engine *gin.Engine
	store  *memory.Store
	tokens *utils.TokenManager

	adminToken  string
	serverToken string
	cookToken   string
	cookID      int64
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	repos := memory.NewSet(store)
	tokens := utils.NewTokenManager("router-test-secret-0123456789", time.Hour)
	clock := fixedClock{t: time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)}

	engine := gin.New()
	Setup(engine, Dependencies{Store: store, Repos: repos, Tokens: tokens, Clock: clock})

	env := &apiEnv{engine: engine, store: store, tokens: tokens}

	auth := services.NewAuthService(store, repos.Auth, tokens, clock)
	for _, u := range []struct {
		name, role string
		token      *string
	}{
		{"alice", models.RoleAdmin, &env.adminToken},
		{"sam", models.RoleServer, &env.serverToken},
		{"cody", models.RoleCook, &env.cookToken},
	} {
		user, err := auth.CreateUser(context.Background(), services.CreateUserRequest{
			Username: u.name, Password: "password123", Role: u.role,
		})
		require.NoError(t, err)
		*u.token, err = tokens.GenerateAccessToken(user.ID, user.Username, user.Role)
		require.NoError(t, err)
		if u.role == models.RoleCook {
			env.cookID = user.ID
		}
	}
	return env
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error utils.APIError `json:"error"`
	}
	decodeInto(t, w, &body)
	return body.Error.Code
}

// seedMenu creates Flour, a Dough unit using 0.5 of it, an ingredient-free Bake
// unit, a Bread dish at 4.50 made of both and table T1 through the API.
func (e *apiEnv) seedMenu(t *testing.T) (dishID int64) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/stock-items", e.adminToken, gin.H{
		"name": "Flour", "unit": "kg", "quantity": "10", "unit_price": "2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var stock models.StockItem
	decodeInto(t, w, &stock)

	w = e.do(t, http.MethodPost, "/api/v1/preparation-units", e.adminToken, gin.H{
		"name": "Dough", "estimated_minutes": 10,
		"ingredients": []gin.H{{"stock_item_id": stock.ID, "quantity": "0.5", "wastage_percent": "0"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dough models.PreparationUnitDefinition
	decodeInto(t, w, &dough)

	w = e.do(t, http.MethodPost, "/api/v1/preparation-units", e.adminToken, gin.H{"name": "Bake", "estimated_minutes": 20})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bake models.PreparationUnitDefinition
	decodeInto(t, w, &bake)

	w = e.do(t, http.MethodPost, "/api/v1/dishes", e.adminToken, gin.H{
		"name": "Bread", "category": "bakery", "price": "4.50", "preparation_unit_ids": []int64{dough.ID, bake.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dish models.DishDefinition
	decodeInto(t, w, &dish)

	w = e.do(t, http.MethodPost, "/api/v1/tables", e.adminToken, gin.H{"name": "T1", "floor": "main"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dish.ID
}

func TestPing(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogin(t *testing.T) {
	env := newAPIEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "sam", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp services.AuthResponse
		decodeInto(t, w, &resp)
		claims, err := env.tokens.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "sam", claims.Username)
		assert.Equal(t, models.RoleServer, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "sam", "password": "nope-nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, utils.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("missing fields", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "sam"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthAndRoles(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/orders", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/orders", "not-a-jwt", http.StatusUnauthorized},
		{"server lists orders", http.MethodGet, "/api/v1/orders", env.serverToken, http.StatusOK},
		{"cook cannot list orders", http.MethodGet, "/api/v1/orders", env.cookToken, http.StatusForbidden},
		{"cook reads kitchen queue", http.MethodGet, "/api/v1/kitchen/queue", env.cookToken, http.StatusOK},
		{"server cannot read kitchen queue", http.MethodGet, "/api/v1/kitchen/queue", env.serverToken, http.StatusForbidden},
		{"server reads menu", http.MethodGet, "/api/v1/dishes", env.serverToken, http.StatusOK},
		{"server cannot read ledger", http.MethodGet, "/api/v1/finance/records", env.serverToken, http.StatusForbidden},
		{"admin reads ledger", http.MethodGet, "/api/v1/finance/records", env.adminToken, http.StatusOK},
		{"admin reads low stock", http.MethodGet, "/api/v1/reports/low-stock", env.adminToken, http.StatusOK},
		{"me", http.MethodGet, "/api/v1/auth/me", env.cookToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestOrderLifecycle(t *testing.T) {
	env := newAPIEnv(t)
	dishID := env.seedMenu(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders", env.serverToken, gin.H{
		"table_name": "T1", "party_size": 2,
		"items": []gin.H{{"dish_id": dishID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decodeInto(t, w, &order)
	assert.Equal(t, "ORD001", order.ID)
	assert.True(t, decimal.RequireFromString("9").Equal(order.Total), order.Total.String())
	require.Len(t, order.Items, 1)
	require.Len(t, order.Items[0].Units, 2)

	w = env.do(t, http.MethodGet, "/api/v1/tables/T1", env.serverToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var table models.Table
	decodeInto(t, w, &table)
	assert.Equal(t, models.TableStatusOccupied, table.Status)

	unit := order.Items[0].Units[0]
	unitPath := fmt.Sprintf("/api/v1/orders/%s/items/%d/units/%d", order.ID, order.Items[0].ID, unit.ID)

	t.Run("skipping preparing is a conflict", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, unitPath, env.cookToken, gin.H{"status": "ready"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, utils.ErrCodeInvalidTransition, errorCode(t, w))
	})

	t.Run("cook walks a unit to ready", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, unitPath, env.cookToken, gin.H{"status": "preparing", "cook_id": env.cookID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = env.do(t, http.MethodPatch, unitPath, env.cookToken, gin.H{"status": "ready"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got models.PreparationUnitInstance
		decodeInto(t, w, &got)
		assert.Equal(t, models.UnitStatusReady, got.Status)
	})

	t.Run("partial cost covers the ready unit", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID+"/partial-cost", env.serverToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var cost models.PartialCost
		decodeInto(t, w, &cost)
		// Dough ready, Bake pending: 0.5 kg flour at 2, marked up 3x, for 2 loaves.
		assert.True(t, decimal.RequireFromString("9").Equal(cost.NominalTotal), cost.NominalTotal.String())
		assert.True(t, decimal.RequireFromString("6").Equal(cost.AdjustedTotal), cost.AdjustedTotal.String())
		assert.True(t, cost.IsPartial)
	})

	t.Run("settle records revenue and frees the table", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/settle", env.serverToken, gin.H{
			"payment_method": "cash", "final_amount": "9",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodGet, "/api/v1/finance/records", env.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			Data  []models.FinancialRecord `json:"data"`
			Total int                      `json:"total"`
		}
		decodeInto(t, w, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Order ORD001 delivered (cash)", page.Data[0].Description)

		w = env.do(t, http.MethodGet, "/api/v1/tables/T1", env.serverToken, nil)
		var table models.Table
		decodeInto(t, w, &table)
		assert.Equal(t, models.TableStatusAvailable, table.Status)
	})

	t.Run("delivered orders reject edits", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/orders/"+order.ID, env.serverToken, gin.H{
			"table_name": "T1", "party_size": 2,
			"items": []gin.H{{"dish_id": dishID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderErrors(t *testing.T) {
	env := newAPIEnv(t)
	dishID := env.seedMenu(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{"empty items", http.MethodPost, "/api/v1/orders", gin.H{"table_name": "T1", "party_size": 1, "items": []gin.H{}}, http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{"unknown dish", http.MethodPost, "/api/v1/orders", gin.H{"table_name": "T1", "party_size": 1, "items": []gin.H{{"dish_id": dishID + 100, "quantity": 1}}}, http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{"unknown order", http.MethodGet, "/api/v1/orders/ORD999", nil, http.StatusNotFound, utils.ErrCodeNotFound},
		{"bad status", http.MethodPatch, "/api/v1/orders/ORD999/status", gin.H{}, http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{"server cannot move units", http.MethodPatch, "/api/v1/orders/ORD001/items/1/units/1", gin.H{"status": "ready"}, http.StatusForbidden, utils.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, env.serverToken, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, errorCode(t, w))
		})
	}

	w := env.do(t, http.MethodGet, "/api/v1/orders", env.serverToken, nil)
	var page struct {
		Total int `json:"total"`
	}
	decodeInto(t, w, &page)
	assert.Zero(t, page.Total)
}

func TestStorageFailureMapsTo503(t *testing.T) {
	env := newAPIEnv(t)
	env.seedMenu(t)

	env.store.FailNext("OrderRepository.GetOrder", fmt.Errorf("connection reset"))
	w := env.do(t, http.MethodGet, "/api/v1/orders/ORD001", env.serverToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	assert.Equal(t, utils.ErrCodeStorageFailure, errorCode(t, w))
}

func TestCatalogConflictAndAvailability(t *testing.T) {
	env := newAPIEnv(t)
	dishID := env.seedMenu(t)

	w := env.do(t, http.MethodPost, "/api/v1/dishes", env.adminToken, gin.H{"name": "bread", "price": "3"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.ErrCodeConflict, errorCode(t, w))

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/dishes/%d/availability", dishID), env.serverToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail struct {
		DishID    int64 `json:"dish_id"`
		Available bool  `json:"available"`
	}
	decodeInto(t, w, &avail)
	assert.True(t, avail.Available)

	w = env.do(t, http.MethodPost, "/api/v1/stock-items/1/adjust", env.adminToken, gin.H{"delta": "-9.8", "reason": "spill"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/dishes/%d/availability", dishID), env.serverToken, nil)
	decodeInto(t, w, &avail)
	assert.False(t, avail.Available)

	w = env.do(t, http.MethodGet, "/api/v1/stock-movements?stock_item_id=1", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var movements struct {
		Data []models.StockMovement `json:"data"`
	}
	decodeInto(t, w, &movements)
	require.Len(t, movements.Data, 1)
	assert.Equal(t, models.MovementTypeConsumption, movements.Data[0].MovementType)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	env := newAPIEnv(t)
	body := gin.H{"username": "nina", "password": "password123", "role": models.RoleServer}

	w := env.do(t, http.MethodPost, "/api/v1/users", env.serverToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/users", env.adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/users", env.adminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
