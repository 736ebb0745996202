// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"
	"sync"
	"time"

	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// ContextSessionIDKey is the gin context key for the client session ID.
	ContextSessionIDKey = "sessionID"

	sessionClaimSID = "sid"
)

// RequestLogger logs HTTP requests with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		if status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			log.HTTPError(c.Request.Method, path, status, c.Errors.Last(), clientIP)
			return
		}
		log.HTTPRequest(c.Request.Method, path, status, float64(latency.Milliseconds()), clientIP)
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS when serving TLS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
		log:   log,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, exists := i.limiters.Load(ip)
	if !exists {
		newLimiter := rate.NewLimiter(i.rate, i.burst)
		i.limiters.Store(ip, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := i.getLimiter(ip)

		if !limiter.Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// Session returns middleware that establishes a durable, client-sticky
// session identity. The session ID is a uuid carried in an HS256-signed
// cookie; a valid token from a previous visit is reused, anything else gets
// a fresh identity. EventSource cannot set headers, so a "session" query
// parameter carrying the same signed token is accepted as a fallback.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	secret := []byte(cfg.GetSessionSecret())
	cookieName := cfg.GetSessionCookieName()
	ttl := cfg.GetSessionTTL()

	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			raw = c.Query("session")
		}

		if sid, ok := parseSessionToken(raw, secret); ok {
			c.Set(ContextSessionIDKey, sid)
			c.Next()
			return
		}

		sid := uuid.NewString()
		token, err := signSessionToken(sid, secret, ttl)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not establish session"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, token, int(ttl.Seconds()), "/", "", false, true)
		c.Set(ContextSessionIDKey, sid)
		c.Next()
	}
}

// SessionID returns the session ID established by the Session middleware.
func SessionID(c *gin.Context) (string, bool) {
	value, ok := c.Get(ContextSessionIDKey)
	if !ok {
		return "", false
	}
	sid, ok := value.(string)
	return sid, ok && sid != ""
}

func signSessionToken(sid string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		sessionClaimSID: sid,
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSessionToken(raw string, secret []byte) (string, bool) {
	if raw == "" {
		return "", false
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sid, _ := claims[sessionClaimSID].(string)
	if sid == "" {
		return "", false
	}
	if _, err := uuid.Parse(sid); err != nil {
		return "", false
	}
	return sid, true
}
