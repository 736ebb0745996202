package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
	"golang.org/x/time/rate"
)

func sessionConfig() *config.Config {
	return &config.Config{
		SessionSecret:     "test-secret-at-least-32-characters!",
		SessionCookieName: "outreach_session",
		SessionTTL:        time.Hour,
	}
}

func sessionRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(cfg))
	r.GET("/whoami", func(c *gin.Context) {
		sid, ok := SessionID(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session")
			return
		}
		c.String(http.StatusOK, sid)
	})
	return r
}

func TestSessionMintsNewIdentity(t *testing.T) {
	cfg := sessionConfig()
	r := sessionRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, err := uuid.Parse(w.Body.String()); err != nil {
		t.Fatalf("body %q is not a uuid: %v", w.Body.String(), err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "outreach_session" {
		t.Fatalf("cookies = %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	cfg := sessionConfig()
	r := sessionRouter(cfg)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	sid := first.Body.String()
	cookie := first.Result().Cookies()[0]

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(second, req)

	if second.Body.String() != sid {
		t.Fatalf("session changed: %q vs %q", second.Body.String(), sid)
	}
	if len(second.Result().Cookies()) != 0 {
		t.Fatal("valid session should not be re-issued")
	}
}

func TestSessionRejectsTamperedToken(t *testing.T) {
	cfg := sessionConfig()
	r := sessionRouter(cfg)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	sid := first.Body.String()
	cookie := first.Result().Cookies()[0]
	cookie.Value += "tampered"

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(second, req)

	if second.Code != http.StatusOK {
		t.Fatalf("status = %d", second.Code)
	}
	if second.Body.String() == sid {
		t.Fatal("tampered token must not keep the old identity")
	}
}

func TestSessionAcceptsQueryFallback(t *testing.T) {
	// EventSource cannot set cookies cross-origin, so the signed token may
	// arrive as a query parameter instead.
	cfg := sessionConfig()
	r := sessionRouter(cfg)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	sid := first.Body.String()
	token := first.Result().Cookies()[0].Value

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami?session="+token, nil)
	r.ServeHTTP(second, req)

	if second.Body.String() != sid {
		t.Fatalf("query fallback yielded %q, want %q", second.Body.String(), sid)
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(rate.Limit(0), 2, logger.New("test"))

	r := gin.New()
	r.Use(limiter.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst requests should pass: %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", statuses[2])
	}
}
