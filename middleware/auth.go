package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"socialconnect/database"
	"socialconnect/models"
)

type contextKey string

const GestionnaireContextKey contextKey = "gestionnaire"

type Claims struct {
	GestionnaireID uuid.UUID   `json:"gestionnaire_id"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	ServiceID      string      `json:"service_id"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func GenerateToken(g *models.Gestionnaire, expiration time.Duration) (string, error) {
	claims := &Claims{
		GestionnaireID: g.ID,
		Email:          g.Email,
		Role:           g.Role,
		ServiceID:      g.ServiceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Cookie first, Authorization header as fallback
		var tokenString string
		cookie, err := r.Cookie("token")
		if err == nil {
			tokenString = cookie.Value
		}

		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenString = parts[1]
				}
			}
		}

		if tokenString == "" {
			http.Error(w, `{"error":"Non authentifié"}`, http.StatusUnauthorized)
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			http.SetCookie(w, &http.Cookie{
				Name:     "token",
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
			})
			http.Error(w, `{"error":"Session expirée"}`, http.StatusUnauthorized)
			return
		}

		var gestionnaire models.Gestionnaire
		if err := database.GetDB().First(&gestionnaire, "id = ?", claims.GestionnaireID).Error; err != nil {
			http.Error(w, `{"error":"Non authentifié"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), GestionnaireContextKey, &gestionnaire)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g := GetGestionnaireFromContext(r.Context())
			if g == nil {
				http.Error(w, `{"error":"Non authentifié"}`, http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if g.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, `{"error":"Accès refusé"}`, http.StatusForbidden)
		})
	}
}

func GetGestionnaireFromContext(ctx context.Context) *models.Gestionnaire {
	g, ok := ctx.Value(GestionnaireContextKey).(*models.Gestionnaire)
	if !ok {
		return nil
	}
	return g
}
