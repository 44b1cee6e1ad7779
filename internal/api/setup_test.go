package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookverse/internal/config"
	"bookverse/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// newTestServer wires the real router against an in-memory SQLite DB and
// a miniredis instance. The audit recorder is nil (it is a no-op then).
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory DB
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Cart{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:  testSecret,
		TokenTTL:   time.Hour,
		CORSOrigin: "http://localhost:5173",
	}
	return NewRouter(db, rdb, nil, cfg), db
}

// doJSON performs a request with an optional JSON body and session cookie
func doJSON(t *testing.T, r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into dest
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

// registerUser registers an account through the API
func registerUser(t *testing.T, r http.Handler, name, email, password string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":            name,
		"email":           email,
		"password":        password,
		"confirmPassword": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// loginUser logs in and returns the session cookie
func loginUser(t *testing.T, r http.Handler, email, password string) *http.Cookie {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "auth_token" && ck.Value != "" {
			return ck
		}
	}
	t.Fatal("login response did not set the session cookie")
	return nil
}

// newSession registers and logs in a fresh user, returning its cookie
func newSession(t *testing.T, r http.Handler, db *gorm.DB, email string) (*http.Cookie, *domain.User) {
	t.Helper()
	registerUser(t, r, "Test User", email, "password123")
	ck := loginUser(t, r, email, "password123")
	var user domain.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	return ck, &user
}

// newAdminSession creates an administrator directly and logs it in
func newAdminSession(t *testing.T, r http.Handler, db *gorm.DB, email string) *http.Cookie {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	admin := domain.User{Name: "Admin", Email: email, Password: string(hash), IsAdmin: true}
	require.NoError(t, db.Create(&admin).Error)
	return loginUser(t, r, email, "password123")
}

// seedProduct inserts a product row directly
func seedProduct(t *testing.T, db *gorm.DB, name string, price, discount float64) *domain.Product {
	t.Helper()
	p := domain.Product{
		Name:     name,
		Price:    price,
		Discount: discount,
		Category: "Fiction",
		ImageURL: "https://img.example/" + name + ".jpg",
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

// validAddress returns a complete delivery address payload
func validAddress() gin.H {
	return gin.H{
		"street":     "1 Library Lane",
		"city":       "Springfield",
		"state":      "IL",
		"postalCode": "62704",
		"country":    "USA",
	}
}
