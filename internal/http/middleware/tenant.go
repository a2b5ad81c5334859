package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

const headerTenantID = "X-Tenant-Id"

// TenantClaims is the token shape the middleware understands. Only the
// tenant_id claim matters here; authorization stays with the issuer.
type TenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type TenantMiddleware struct {
	log     *logger.Logger
	secret  []byte
	require bool
}

// NewTenantMiddleware resolves the request tenant from a Bearer token signed
// with the shared HS256 secret, falling back to the X-Tenant-Id header. With
// require set, requests that resolve no tenant are rejected.
func NewTenantMiddleware(log *logger.Logger, secret string, require bool) *TenantMiddleware {
	return &TenantMiddleware{
		log:     log.With("middleware", "TenantMiddleware"),
		secret:  []byte(secret),
		require: require,
	}
}

func (tm *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		td, err := tm.resolve(c)
		if err != nil {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
			c.Abort()
			return
		}
		if td == nil {
			if tm.require {
				response.RespondError(c, http.StatusUnauthorized, "tenant_required", nil)
				c.Abort()
				return
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithTenantData(c.Request.Context(), td))
		c.Set("tenant_id", td.TenantID)
		c.Next()
	}
}

func (tm *TenantMiddleware) resolve(c *gin.Context) (*ctxutil.TenantData, error) {
	tokenString := extractBearerToken(c)
	if tokenString != "" {
		claims := &TenantClaims{}
		parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
			}
			return tm.secret, nil
		})
		if err != nil {
			tm.log.Warn("tenant token rejected", "error", err)
			return nil, fmt.Errorf("invalid token: %w", err)
		}
		if !parsed.Valid || strings.TrimSpace(claims.TenantID) == "" {
			return nil, fmt.Errorf("token carries no tenant_id")
		}
		return &ctxutil.TenantData{
			TenantID: strings.TrimSpace(claims.TenantID),
			Subject:  strings.TrimSpace(claims.Subject),
		}, nil
	}

	if id := strings.TrimSpace(c.GetHeader(headerTenantID)); id != "" {
		return &ctxutil.TenantData{TenantID: id}, nil
	}
	return nil, nil
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
