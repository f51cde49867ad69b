package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/db"
	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/repo"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/tokens"
)

var (
	testJWTSecret     = []byte("test-access-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

type testEnv struct {
	echo *echo.Echo
	db   *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	r := repo.New(gdb)
	orderSvc := &service.OrderService{DB: gdb, Repo: r}

	e := echo.New()
	Register(e, &Deps{
		JWTSecret: testJWTSecret,
		AuthHandler: &AuthHandler{Svc: &service.AuthService{
			Repo:          r,
			JWTSecret:     testJWTSecret,
			RefreshSecret: testRefreshSecret,
		}},
		UserHandler:    &UserHandler{Svc: &service.UserService{Repo: r}},
		ProductHandler: &ProductHandler{Svc: &service.ProductService{Repo: r}},
		PostHandler:    &PostHandler{Svc: &service.PostService{Repo: r}},
		CommentHandler: &CommentHandler{Svc: &service.CommentService{Repo: r}},
		CartHandler:    &CartHandler{Cart: &service.CartService{DB: gdb, Repo: r}, Orders: orderSvc},
		OrderHandler:   &OrderHandler{Svc: orderSvc},
		SearchHandler:  &SearchHandler{},
	})
	return &testEnv{echo: e, db: gdb}
}

// do issues a request against the in-memory router. A non-empty token is
// sent as a bearer credential.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func (env *testEnv) seedUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()

	u := &models.User{Name: "tester", Email: email, Role: role, Active: true, PasswordHash: "x"}
	require.NoError(t, env.db.Create(u).Error)

	token, _, err := tokens.SignAccessToken(u.ID, u.Email, u.Role, testJWTSecret)
	require.NoError(t, err)
	return u, token
}

func (env *testEnv) seedProduct(t *testing.T, name string, price float64, stock uint) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, env.db.Create(p).Error)
	return p
}
