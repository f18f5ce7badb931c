package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/models"
)

// Claims is the decoded token payload attached to authenticated requests.
type Claims struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	NomComplet string `json:"nom_complet"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

type contextKey struct{}

var claimsKey contextKey

// ClaimsFrom extracts the authenticated claims from the request context.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

// NewToken signs a session token for the user.
func NewToken(secret []byte, expiry time.Duration, u *models.Utilisateur) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:         u.ID,
		Role:       u.Role,
		NomComplet: u.NomComplet,
		Email:      u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Authenticate validates the Authorization bearer token and attaches the
// decoded claims to the request context. A missing token is 401; an expired
// or otherwise invalid one is 403, with distinct messages.
func Authenticate(rp *httpjson.Responder, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				rp.Message(w, http.StatusUnauthorized, "Accès non autorisé : Token manquant.")
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				if errors.Is(err, jwt.ErrTokenExpired) {
					rp.Message(w, http.StatusForbidden, "Accès interdit : Token expiré.")
					return
				}
				rp.Message(w, http.StatusForbidden, "Accès interdit : Token invalide.")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to the given roles. It must run after
// Authenticate.
func RequireRole(rp *httpjson.Responder, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || claims.Role == "" {
				rp.Message(w, http.StatusForbidden, "Accès interdit : Rôle utilisateur non défini.")
				return
			}
			if !allowed[claims.Role] {
				rp.Message(w, http.StatusForbidden, "Accès interdit : Permissions insuffisantes.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
