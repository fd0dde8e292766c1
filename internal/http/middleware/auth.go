package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"familytrip/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
)

const (
	identityKey  = "identity"
	authErrorKey = "auth_error"

	maxSessionCacheTTL = 5 * time.Minute
)

var (
	errNoSession      = errors.New("geen sessie gevonden")
	errAuthNotEnabled = errors.New("sessieverificatie niet geconfigureerd")
)

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies the signed session token issued by the external auth
// provider. Verified tokens are remembered until they expire, at most 5 minutes.
type Authenticator struct {
	secret   []byte
	cookie   string
	audience string
	sessions *cache.Cache
	now      func() time.Time
}

func NewAuthenticator(secret, cookieName, audience string) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		cookie:   cookieName,
		audience: audience,
		sessions: cache.New(maxSessionCacheTTL, 10*time.Minute),
		now:      time.Now,
	}
}

// Resolve returns the caller's identity, or an error describing why there is none.
func (a *Authenticator) Resolve(r *http.Request) (domain.Identity, error) {
	raw := a.token(r)
	if raw == "" {
		return domain.Identity{}, errNoSession
	}
	if len(a.secret) == 0 {
		return domain.Identity{}, errAuthNotEnabled
	}

	key := cacheKey(raw)
	if v, ok := a.sessions.Get(key); ok {
		return v.(domain.Identity), nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
		jwt.WithTimeFunc(a.now),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return domain.Identity{}, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, errors.New("sessie zonder gebruiker")
	}

	id := domain.Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}
	ttl := maxSessionCacheTTL
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(a.now()); left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		a.sessions.Set(key, id, ttl)
	}
	return id, nil
}

// token reads the session from the Authorization header or the session cookie.
func (a *Authenticator) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if a.cookie == "" {
		return ""
	}
	ck, err := r.Cookie(a.cookie)
	if err != nil {
		return ""
	}
	return cookieToken(ck.Value)
}

// cookieToken accepts a bare JWT or the auth helper's encoded session, which is a
// JSON object with access_token or an array whose first element is the token,
// optionally prefixed with "base64-".
func cookieToken(v string) string {
	if dec, err := url.QueryUnescape(v); err == nil {
		v = dec
	}
	v = strings.TrimSpace(v)
	if after, ok := strings.CutPrefix(v, "base64-"); ok {
		b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(after, "="))
		if err != nil {
			return ""
		}
		v = string(b)
	}

	switch {
	case strings.HasPrefix(v, "{"):
		var s struct {
			AccessToken string `json:"access_token"`
		}
		if json.Unmarshal([]byte(v), &s) == nil {
			return s.AccessToken
		}
		return ""
	case strings.HasPrefix(v, "["):
		var arr []any
		if json.Unmarshal([]byte(v), &arr) == nil && len(arr) > 0 {
			if s, ok := arr[0].(string); ok {
				return s
			}
		}
		return ""
	}
	return v
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AuthOptional resolves the identity when a session is present and never rejects.
func AuthOptional(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a != nil {
			id, err := a.Resolve(c.Request)
			if err != nil {
				c.Set(authErrorKey, err.Error())
			} else {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without an identity. It must run after AuthOptional.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).Authenticated() {
			c.Next()
			return
		}
		details := GetAuthError(c)
		if details == "" {
			details = errNoSession.Error()
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":      "niet ingelogd",
			"details":    details,
			"request_id": GetRequestID(c),
		})
	}
}

// GetIdentity returns the resolved identity, or the zero Identity.
func GetIdentity(c *gin.Context) domain.Identity {
	if c == nil {
		return domain.Identity{}
	}
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

// GetAuthError returns why no identity was resolved, if a reason is known.
func GetAuthError(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(authErrorKey)
}
