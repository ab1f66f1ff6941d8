package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type echoOut struct {
	Name string `json:"name"`
}

func newEngine(l *zap.Logger, h func(c *gin.Context, in *echoIn) (echoOut, error)) *gin.Engine {
	r := gin.New()
	RegisterAction(New(r.Group(""), l), Action[echoIn, echoOut]{
		Method:  http.MethodPost,
		Path:    "/echo",
		Binder:  BindJSON,
		Status:  http.StatusCreated,
		Handler: h,
	})
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAction_Success(t *testing.T) {
	r := newEngine(nil, func(_ *gin.Context, in *echoIn) (echoOut, error) {
		return echoOut{Name: in.Name}, nil
	})
	w := post(r, `{"name":"a","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"a"}`, w.Body.String())
}

func TestRegisterAction_BindErrors(t *testing.T) {
	called := false
	r := newEngine(nil, func(*gin.Context, *echoIn) (echoOut, error) {
		called = true
		return echoOut{}, nil
	})

	w := post(r, `{"name":"a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password is required"}`, w.Body.String())

	w = post(r, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())

	// 空 body 等同 {}，仍会走到 required 校验
	w = post(r, ``)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password is required"}`, w.Body.String())
	assert.False(t, called)
}

func TestRegisterAction_ErrorMapping(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"bad request", BadRequest("Invalid credentials"), http.StatusBadRequest, `{"error":"Invalid credentials"}`},
		{"unauthorized", Unauthorized("nope"), http.StatusUnauthorized, `{"error":"nope"}`},
		{"not found", NotFound("Product not found"), http.StatusNotFound, `{"error":"Product not found"}`},
		{"internal hides cause", Internal("Failed to add product", errors.New("dial tcp: refused")), http.StatusInternalServerError, `{"error":"Failed to add product"}`},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(zap.New(core), func(*gin.Context, *echoIn) (echoOut, error) { return echoOut{}, tc.err })
			w := post(r, `{"password":"pw"}`)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}

	// 只有 5xx 记日志，且带上真实原因
	entries := logs.FilterMessage("action failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "dial tcp: refused", entries[0].ContextMap()["error"])
}
