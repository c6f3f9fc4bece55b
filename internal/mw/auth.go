package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/auth"
)

// Context keys set by RequireRole for downstream handlers.
const (
	CtxPrincipalID = "principal_id"
	CtxRole        = "principal_role"
)

// RequireRole validates the bearer token and rejects principals whose
// role does not match. The principal id lands in the gin context.
func RequireRole(tokens *auth.Tokens, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
			return
		}

		c.Set(CtxPrincipalID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}
