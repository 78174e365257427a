package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/services/auth"
	domainauth "staymarket/internal/domain/auth"
	domainuser "staymarket/internal/domain/user"
)

const principalContextKey = "staymarket.principal"

// principal is the request-scoped view of an authenticated user. It carries
// just enough for role checks and response rendering; handlers go back to
// the repositories for anything else.
type principal struct {
	ID        string
	Email     string
	Name      string
	Roles     []string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p principal) HasRole(role string) bool {
	want := strings.ToLower(strings.TrimSpace(role))
	if want == "" {
		return false
	}
	for _, have := range p.Roles {
		if strings.EqualFold(have, want) {
			return true
		}
	}
	return false
}

// AuthMiddleware resolves bearer tokens to a principal without rejecting
// anonymous requests; individual routes enforce their own role requirements.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	defer c.Next()

	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		// An expired or revoked token just means an anonymous request.
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		return
	}
	setPrincipal(c, principalFromUser(resolved.User, token))
}

func principalFromUser(user *domainuser.User, token string) principal {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	return principal{
		ID:        string(user.ID),
		Email:     user.Email,
		Name:      user.Name,
		Roles:     roles,
		Token:     token,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireRole aborts with 401 for anonymous callers and 403 for callers
// missing the role. An empty role only requires authentication.
func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
