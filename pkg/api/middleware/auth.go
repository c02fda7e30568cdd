// Package middleware authenticates requests with the auth provider's HS256 access tokens.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/utils"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ContextKeyUserID = contextKey("userID")

// AuthMiddleware rejects requests without a valid Bearer token and stores the token subject
// as the user ID.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				response.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing Authorization header", nil)
				return
			}

			sub, err := ValidateToken(strings.TrimPrefix(h, "Bearer "), secret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					response.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, err)
					return
				}
				response.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateToken checks signature and expiry and returns the subject claim.
func ValidateToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("missing subject claim")
	}
	return sub, nil
}

// UserID returns the authenticated user, or "" outside AuthMiddleware.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserID).(string)
	return v
}

// WithUserID is used by tests and internal callers to act as a user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}
