package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-api/internal/core/auth"
	resp "ecommerce-api/internal/transport/http/response"
)

const KeyIdentity = "identity"

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// AuthJWT 缺 token 401，token 无效 400
func AuthJWT(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, "Access denied, token missing"))
			return
		}
		id, err := v.Verify(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.Error(http.StatusBadRequest, "Invalid token"))
			return
		}
		c.Set(KeyIdentity, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// CurrentIdentity 取 AuthJWT 写入的调用者
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
