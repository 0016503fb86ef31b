// Package auth verifies the bearer tokens the gateway accepts. Tokens are
// HS256 JWTs carrying the actor's id and role; issuing them belongs to the
// identity provider, the gateway only verifies.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys under which the verified identity is stored
const (
	ContextActorID   = "actor_id"
	ContextActorRole = "actor_role"
)

// Claims are the JWT claims the gateway understands
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is a verified actor
type Identity struct {
	ID   string
	Role string
}

// Verifier validates bearer tokens against a shared secret
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given HS256 secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a raw token string
func (v *Verifier) Verify(tokenStr string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return &Identity{ID: claims.Subject, Role: claims.Role}, nil
}

// Issue signs a token for the given identity. Used by tests and local
// tooling; production tokens come from the identity provider.
func (v *Verifier) Issue(id, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Required rejects requests without a valid bearer token
func Required(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(v, c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}
		c.Set(ContextActorID, identity.ID)
		c.Set(ContextActorRole, identity.Role)
		c.Next()
	}
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through.
func Optional(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := identityFromRequest(v, c); err == nil {
			c.Set(ContextActorID, identity.ID)
			c.Set(ContextActorRole, identity.Role)
		}
		c.Next()
	}
}

// FromContext returns the identity attached by Required or Optional. The
// zero identity means anonymous.
func FromContext(c *gin.Context) Identity {
	return Identity{
		ID:   c.GetString(ContextActorID),
		Role: c.GetString(ContextActorRole),
	}
}

func identityFromRequest(v *Verifier, c *gin.Context) (*Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		// Browsers cannot set headers on websocket upgrades
		if token := c.Query("token"); token != "" {
			return v.Verify(token)
		}
		return nil, fmt.Errorf("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("malformed authorization header")
	}

	return v.Verify(parts[1])
}
