// Package middleware provides HTTP middleware: authentication, request IDs,
// and rate limiting.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"aihub/internal/domain"
)

// Auth tries a JWT bearer token first, then a static service API key.
// Requests that satisfy neither get a 401.
func Auth(jwtSecret []byte, apiKey, apiKeyPrincipal string) func(http.Handler) http.Handler {
	var apiKeyHash [sha256.Size]byte
	if apiKey != "" {
		apiKeyHash = sha256.Sum256([]byte(apiKey))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr := strings.TrimPrefix(auth, "Bearer ")
				token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
					return jwtSecret, nil
				}, jwt.WithValidMethods([]string{"HS256"}))

				if err == nil && token.Valid {
					if claims, ok := token.Claims.(jwt.MapClaims); ok {
						if sub, ok := claims["sub"].(string); ok && sub != "" {
							ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
								Name: sub,
								Type: "user",
							})
							next.ServeHTTP(w, r.WithContext(ctx))
							return
						}
					}
				}
			}

			if presented := r.Header.Get("X-API-Key"); presented != "" && apiKey != "" {
				presentedHash := sha256.Sum256([]byte(presented))
				if subtle.ConstantTimeCompare(presentedHash[:], apiKeyHash[:]) == 1 {
					ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
						Name: apiKeyPrincipal,
						Type: "service_principal",
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "error",
				"message": "unauthorized: provide a valid JWT Bearer token or API key",
			})
		})
	}
}
