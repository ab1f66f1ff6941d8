package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ecommerce-api/internal/domain"
	"ecommerce-api/pkg/utils"
)

var (
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type TokenIssuer interface {
	Issue(uid int64, role string) (string, error)
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users  domain.UserRepository
	hasher utils.PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthService(users domain.UserRepository, hasher utils.PasswordHasher, tokens TokenIssuer, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: l}
}

// Signup 哈希密码后写入；email 重复返回 domain.ErrDuplicate
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (int64, error) {
	if in.Password == "" {
		return 0, ErrPasswordRequired
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = domain.RoleCustomer
	}
	u := &domain.User{
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed,
		Role:         role,
	}
	id, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return 0, err
	}
	s.log.Info("user registered", zap.Int64("user_id", id), zap.String("role", role))
	return id, nil
}

// Login 校验密码并签发令牌；用户不存在返回 domain.ErrNotFound
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}
