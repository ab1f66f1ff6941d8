package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecommerce-api/internal/core/server"
	"ecommerce-api/internal/transport/http/ez"
	"ecommerce-api/internal/transport/http/handler"
	mdw "ecommerce-api/internal/transport/http/middleware"
)

// Deps 由 main 组装后传入，engine 内不持有全局状态
type Deps struct {
	Log          *zap.Logger
	Auth         handler.AuthService
	Products     handler.ProductService
	Verifier     mdw.TokenVerifier
	MaxBodyBytes int64
	MaxInFlight  int64
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(l)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(d.MaxInFlight),
		mdw.MaxBodyBytes(d.MaxBodyBytes),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "E-commerce API is running...") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())

	api := r.Group("/api")
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.Verifier))

	handler.NewAuthHandler(d.Auth).Mount(ez.New(api, l))

	products := handler.NewProductHandler(d.Products)
	products.MountPublic(ez.New(api, l))
	products.MountProtected(ez.New(authed, l))

	return r
}
