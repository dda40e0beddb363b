package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"webshop/internal/events"
	"webshop/internal/models"
	"webshop/internal/repo"
	"webshop/internal/service"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	Repo *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	gormRepo := &repo.GormRepo{DB: db}
	producer := events.NewProducer("")
	jwtSecret := []byte("test-jwt-secret")

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: &service.AuthService{Repo: gormRepo, Producer: producer, JWTSecret: jwtSecret}},
		ProductHandler: &ProductHTTP{Svc: &service.CatalogService{Repo: gormRepo}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: gormRepo, Producer: producer}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: gormRepo, Producer: producer}},
		JWTSecret:      jwtSecret,
	})

	return &testEnv{T: t, E: e, Repo: gormRepo}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder) envelope {
	env.T.Helper()

	var resp envelope
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (env *testEnv) registerAndLogin(email string) string {
	env.T.Helper()

	rec := env.do(http.MethodPost, "/auth/register", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "password",
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "password",
	}, "")
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	resp := env.decode(rec)
	require.NotEmpty(env.T, resp.Token)
	return resp.Token
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (env *testEnv) createProduct(name, sku, price string) *models.Product {
	env.T.Helper()

	product := models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    "test",
		Stock:       50,
		SKU:         sku,
	}
	require.NoError(env.T, env.Repo.DB.Create(&product).Error)
	return &product
}
