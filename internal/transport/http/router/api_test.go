package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ecommerce-api/internal/core/auth"
	"ecommerce-api/internal/core/database/dbtest"
	"ecommerce-api/internal/repo"
	"ecommerce-api/internal/service"
	"ecommerce-api/pkg/utils"
)

var testSecret = []byte("test-secret")

func init() { gin.SetMode(gin.TestMode) }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	db := dbtest.New(t)
	j := auth.NewJWTer(testSecret, "", time.Hour, 0)
	return NewAPIEngine(Deps{
		Auth:         service.NewAuthService(repo.NewUserRepo(db), utils.NewBcryptHasher(bcrypt.MinCost), j, nil),
		Products:     service.NewProductService(repo.NewProductRepo(db), service.ProductOptions{}),
		Verifier:     j,
		MaxBodyBytes: 1 << 20,
		MaxInFlight:  16,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
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
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func signupAndLogin(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/signup", gin.H{"username": "a", "email": email, "password": "pw", "role": "vendor"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/login", gin.H{"email": email, "password": "pw"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[map[string]string](t, w)
	require.NotEmpty(t, out["token"])
	return out["token"]
}

func TestRoot(t *testing.T) {
	r := newTestEngine(t)

	w := do(t, r, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "E-commerce API is running...", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":1}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ecommerce_http_requests_total")
}

func TestSignup(t *testing.T) {
	r := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/api/signup", gin.H{"username": "a", "email": "a@x.com", "password": "pw", "role": "customer"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, w.Body.String())

	// 重复 email 保持 500
	w = do(t, r, http.MethodPost, "/api/signup", gin.H{"username": "b", "email": "a@x.com", "password": "pw2", "role": "customer"}, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to register user"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/signup", gin.H{"username": "c", "email": "c@x.com"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password is required"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	r := newTestEngine(t)
	tok := signupAndLogin(t, r, "a@x.com")

	j := auth.NewJWTer(testSecret, "", time.Hour, 0)
	id, err := j.Verify(tok)
	require.NoError(t, err)
	assert.NotZero(t, id.UserID)
	assert.Equal(t, "vendor", id.Role)

	w := do(t, r, http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/login", gin.H{"email": "nobody@x.com", "password": "pw"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "pw"}, "")
	out := decode[map[string]string](t, w)
	assert.Equal(t, "Login successful", out["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestEngine(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, gin.H{"name": "x"}, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Access denied, token missing"}`, w.Body.String())

			w = do(t, r, tc.method, tc.path, gin.H{"name": "x"}, "not-a-jwt")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	r := newTestEngine(t)

	past := time.Now().Add(-2 * time.Hour)
	claims := auth.Claims{
		UID:  1,
		Role: "vendor",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/api/products", gin.H{"name": "x"}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
}

func TestProductLifecycle(t *testing.T) {
	r := newTestEngine(t)
	tok := signupAndLogin(t, r, "v@x.com")

	in := gin.H{
		"name":          "Green Tea",
		"description":   "loose leaf",
		"category":      "drinks",
		"price":         9.99,
		"start_date":    "2024-01-01",
		"expiry_date":   "2024-12-31",
		"free_delivery": true,
		"image_url":     "http://img/tea.png",
		"old_price":     12.5,
		"new_price":     9.99,
	}
	w := do(t, r, http.MethodPost, "/api/products", in, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Message   string `json:"message"`
		ProductID int64  `json:"productId"`
	}](t, w)
	assert.Equal(t, "Product created successfully", created.Message)
	require.NotZero(t, created.ProductID)

	path := fmt.Sprintf("/api/products/%d", created.ProductID)
	w = do(t, r, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "Green Tea", got["name"])
	assert.Equal(t, "drinks", got["category"])
	assert.InDelta(t, 9.99, got["price"], 0.001)
	assert.Equal(t, "2024-01-01", got["start_date"])
	assert.Equal(t, "2024-12-31", got["expiry_date"])
	assert.Equal(t, true, got["free_delivery"])
	assert.NotNil(t, got["vendor_id"], "vendor defaults to caller")

	in["name"] = "Black Tea"
	w = do(t, r, http.MethodPut, path, in, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product updated successfully"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Black Tea", list[0]["name"])

	w = do(t, r, http.MethodDelete, path, nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, w.Body.String())

	w = do(t, r, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())
}

func TestUpdateDeleteMissingProduct(t *testing.T) {
	r := newTestEngine(t)
	tok := signupAndLogin(t, r, "v@x.com")

	w := do(t, r, http.MethodPut, "/api/products/999", gin.H{"name": "x"}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodDelete, "/api/products/999", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodGet, "/api/products/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmptyListIsArray(t *testing.T) {
	r := newTestEngine(t)
	w := do(t, r, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/products/search?name=zzz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSearch(t *testing.T) {
	r := newTestEngine(t)
	tok := signupAndLogin(t, r, "v@x.com")

	for i := 1; i <= 12; i++ {
		w := do(t, r, http.MethodPost, "/api/products", gin.H{"name": fmt.Sprintf("FooBar %02d", i), "category": "snacks"}, tok)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := do(t, r, http.MethodPost, "/api/products", gin.H{"name": "apple", "category": "fruit"}, tok)
	require.Equal(t, http.StatusCreated, w.Code)

	names := func(w *httptest.ResponseRecorder) []string {
		var out []string
		for _, p := range decode[[]map[string]any](t, w) {
			out = append(out, p["name"].(string))
		}
		return out
	}

	t.Run("page 2 limit 5 skips five", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/products/search?name=foo&page=2&limit=5", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"FooBar 06", "FooBar 07", "FooBar 08", "FooBar 09", "FooBar 10"}, names(w))
	})

	t.Run("defaults page 1 limit 10", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/products/search?name=FOOBAR", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		got := names(w)
		require.Len(t, got, 10)
		assert.Equal(t, "FooBar 01", got[0])
	})

	t.Run("category", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/products/search?category=fruit", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"apple"}, names(w))
	})

	t.Run("unparsable paging falls back to defaults", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/products/search?page=x&limit=y", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, names(w), 10)
	})
}
