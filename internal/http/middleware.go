package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-sentiment/internal/domain"
)

const identityKey = "identity"

// requireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the context for downstream handlers.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Authorization header is missing or invalid")
			return
		}

		claims, err := h.tokens.Decode(token)
		if err != nil {
			h.logger.WithError(err).Debug("rejecting bearer token")
			abortUnauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(identityKey, domain.Identity{UserID: claims.UserID})
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func identityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	who, ok := v.(domain.Identity)
	return who, ok
}

// mustIdentity returns the caller resolved by requireAuth. Routes using it
// are always registered behind the guard.
func mustIdentity(c *gin.Context) domain.Identity {
	who, ok := identityFrom(c)
	if !ok {
		panic("http: identity missing, route registered without auth guard")
	}
	return who
}
