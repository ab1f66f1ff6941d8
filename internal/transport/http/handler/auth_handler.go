package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/service"
	"ecommerce-api/internal/transport/http/ez"
	resp "ecommerce-api/internal/transport/http/response"
)

type AuthService interface {
	Signup(ctx context.Context, in service.SignupInput) (int64, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct{ svc AuthService }

func NewAuthHandler(svc AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

type signupIn struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginOut struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Mount /signup /login
func (h *AuthHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[signupIn, resp.MsgResp]{
		Method:  http.MethodPost,
		Path:    "/signup",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Handler: h.signup,
	})
	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Handler: h.login,
	})
}

func (h *AuthHandler) signup(c *gin.Context, in *signupIn) (resp.MsgResp, error) {
	_, err := h.svc.Signup(c.Request.Context(), service.SignupInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	switch {
	case errors.Is(err, service.ErrPasswordRequired):
		return resp.MsgResp{}, ez.BadRequest("Password is required")
	case err != nil:
		// 重复 email 也走 500
		return resp.MsgResp{}, ez.Internal("Failed to register user", err)
	}
	return resp.Msg("User registered successfully"), nil
}

func (h *AuthHandler) login(c *gin.Context, in *loginIn) (loginOut, error) {
	tok, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return loginOut{}, ez.NotFound("User not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return loginOut{}, ez.BadRequest("Invalid credentials")
	case err != nil:
		return loginOut{}, ez.Internal("Failed to login", err)
	}
	return loginOut{Message: "Login successful", Token: tok}, nil
}
