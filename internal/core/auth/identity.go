package auth

import (
	"context"
	"strings"
)

// Identity 令牌解出的调用方身份
type Identity struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// BearerToken 取 Authorization 头中第二个空白分隔字段
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 2 || fields[1] == "" {
		return "", ErrMissingToken
	}
	return fields[1], nil
}
