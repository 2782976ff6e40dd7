package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/tracker"
	"miaoyou_backend/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memorySink struct {
	mu     sync.Mutex
	events []eventlog.BehaviorEvent
}

func (s *memorySink) AppendBehavior(ev eventlog.BehaviorEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func newTrackingRouter(sink *memorySink) *gin.Engine {
	r := gin.New()
	r.Use(BehaviorTracking(tracker.New(sink)))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/articles", ok)
	r.GET("/api/articles/popular", ok)
	r.GET("/api/articles/:id", ok)
	r.GET("/api/admin/articles", ok)
	r.GET("/api/works", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.POST("/api/moments", ok)
	r.GET("/api/auth/profile", func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Status(http.StatusOK)
	})
	return r
}

func TestBehaviorTracking_ListPages(t *testing.T) {
	sink := &memorySink{}
	r := newTrackingRouter(sink)

	for _, path := range []string{"/api/articles", "/api/articles/popular"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, sink.events, 2)
	assert.Equal(t, eventlog.PageView, sink.events[0].Type)
	assert.Equal(t, "/api/articles", sink.events[0].TargetID)
	assert.Equal(t, "articles", sink.events[0].TargetTitle)
	assert.Equal(t, "/api/articles/popular", sink.events[1].TargetID)
}

func TestBehaviorTracking_PageViewCarriesUser(t *testing.T) {
	sink := &memorySink{}
	m := auth.NewJWTManager("tracking-secret", time.Hour, time.Hour)
	r := gin.New()
	r.Use(BehaviorTracking(tracker.New(sink)))
	r.GET("/api/articles", OptionalAuthMiddleware(m), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := m.GenerateToken("u42", "reader", auth.RoleUser)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	require.Len(t, sink.events, 2)
	assert.Equal(t, eventlog.PageView, sink.events[0].Type)
	assert.Equal(t, "u42", sink.events[0].UserID)
	assert.Empty(t, sink.events[1].UserID)
}

func TestBehaviorTracking_Skips(t *testing.T) {
	sink := &memorySink{}
	r := newTrackingRouter(sink)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/articles/123", nil),
		httptest.NewRequest(http.MethodGet, "/api/admin/articles", nil),
		httptest.NewRequest(http.MethodGet, "/api/works", nil),
		httptest.NewRequest(http.MethodPost, "/api/moments", nil),
	}
	for _, req := range requests {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Empty(t, sink.events)
}

func TestBehaviorTracking_ProfileVisit(t *testing.T) {
	sink := &memorySink{}
	r := newTrackingRouter(sink)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))

	require.Len(t, sink.events, 1)
	assert.Equal(t, eventlog.UserVisit, sink.events[0].Type)
	assert.Equal(t, "u1", sink.events[0].UserID)
}

func TestBehaviorTracking_SessionCookie(t *testing.T) {
	sink := &memorySink{}
	r := newTrackingRouter(sink)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tracker.DefaultSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	require.Len(t, sink.events, 1)
	assert.Equal(t, cookies[0].Value, sink.events[0].SessionID)

	// повторный запрос с cookie: та же сессия, cookie не переустанавливается
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Result().Cookies())
	require.Len(t, sink.events, 2)
	assert.Equal(t, cookies[0].Value, sink.events[1].SessionID)
}

func newAuthRouter(m *auth.JWTManager) *gin.Engine {
	r := gin.New()
	admin := r.Group("/admin", AuthMiddleware(m), RequireRoles(auth.RoleAdmin))
	admin.GET("", func(c *gin.Context) { c.String(http.StatusOK, GetUserID(c)) })
	r.GET("/optional", OptionalAuthMiddleware(m), func(c *gin.Context) { c.String(http.StatusOK, GetUserID(c)) })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour, time.Hour)
	r := newAuthRouter(m)

	adminToken, err := m.GenerateToken("admin-1", "root", auth.RoleAdmin)
	require.NoError(t, err)
	userToken, err := m.GenerateToken("user-1", "bob", auth.RoleUser)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"user role", "Bearer " + userToken, http.StatusForbidden},
		{"admin role", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour, time.Hour)
	r := newAuthRouter(m)

	// тот же секрет, но токен истек минуту назад
	stale, err := auth.NewJWTManager("secret", -time.Minute, time.Hour).GenerateToken("admin-1", "root", auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+stale)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var resp struct {
		Error struct {
			Code apperrors.ErrorCode `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeTokenExpired, resp.Error.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour, time.Hour)
	r := newAuthRouter(m)
	token, err := m.GenerateToken("user-1", "bob", auth.RoleUser)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "user-1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

type errorSink struct {
	mu     sync.Mutex
	events []eventlog.ErrorEvent
}

func (s *errorSink) AppendError(ev eventlog.ErrorEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestRecovery_RecordsPanic(t *testing.T) {
	sink := &errorSink{}
	tr := tracker.New(&memorySink{})

	r := gin.New()
	r.Use(RequestIDMiddleware(), Recovery(sink, tr))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, eventlog.LevelError, ev.Level)
	assert.Contains(t, ev.Message, "kaboom")
	assert.NotEmpty(t, ev.Stack)
	assert.Equal(t, "curl/8.0", ev.UserAgent)
	assert.Equal(t, "req-42", ev.Extra["requestId"])
	assert.Equal(t, "/boom", ev.Extra["path"])
}
