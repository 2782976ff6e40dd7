package tracker

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/internal/eventlog"
)

type memorySink struct {
	mu     sync.Mutex
	events []eventlog.BehaviorEvent
}

func (m *memorySink) AppendBehavior(ev eventlog.BehaviorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

type panicSink struct{}

func (panicSink) AppendBehavior(eventlog.BehaviorEvent) { panic("disk on fire") }

type stubGeo struct{}

func (stubGeo) Resolve(ip string) (string, string) { return "CN", "Shanghai" }

const (
	chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

func TestClientIP_Priority(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": " 1.1.1.1 , 2.2.2.2", "X-Real-IP": "3.3.3.3"}, "9.9.9.9:1234", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3", "CF-Connecting-IP": "4.4.4.4"}, "9.9.9.9:1234", "3.3.3.3"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "4.4.4.4"}, "9.9.9.9:1234", "4.4.4.4"},
		{"socket", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"fallback", nil, "", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestSessionID_FromCookie(t *testing.T) {
	tr := New(&memorySink{})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "abc"})

	id, generated := tr.SessionID(r)
	assert.Equal(t, "abc", id)
	assert.False(t, generated)
}

func TestSessionID_GeneratedPerRequestWithoutCookie(t *testing.T) {
	now := time.UnixMilli(1704067200000)
	tr := New(&memorySink{}, WithClock(func() time.Time { return now }))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	first, generated := tr.SessionID(r)
	second, _ := tr.SessionID(r)

	assert.True(t, generated)
	assert.True(t, strings.HasPrefix(first, "sess_1704067200000_"))
	assert.Len(t, first, len("sess_1704067200000_")+9)
	assert.NotEqual(t, first, second)
}

func TestDeviceFromOS(t *testing.T) {
	assert.Equal(t, DeviceMobile, deviceFromOS("Android"))
	assert.Equal(t, DeviceMobile, deviceFromOS("iOS"))
	assert.Equal(t, DeviceDesktop, deviceFromOS("Mac OS X"))
	assert.Equal(t, DeviceDesktop, deviceFromOS("Windows"))
	assert.Equal(t, DeviceDesktop, deviceFromOS("Linux"))
	assert.Equal(t, DeviceUnknown, deviceFromOS(""))
	assert.Equal(t, DeviceUnknown, deviceFromOS("PlayStation"))
}

func TestParse_KnownAgents(t *testing.T) {
	p := NewUAParser()

	desktop := p.Parse(chromeWindows)
	assert.Equal(t, DeviceDesktop, desktop.Device)
	assert.True(t, strings.HasPrefix(desktop.Browser, "Chrome"))
	assert.Contains(t, desktop.OS, "Windows")

	phone := p.Parse(safariIPhone)
	assert.Equal(t, DeviceMobile, phone.Device)
	assert.True(t, strings.HasPrefix(phone.Browser, "Safari"))
}

func TestTrackArticleView_BuildsEvent(t *testing.T) {
	sink := &memorySink{}
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tr := New(sink, WithClock(func() time.Time { return now }), WithGeoResolver(stubGeo{}))

	r := httptest.NewRequest(http.MethodPost, "/api/articles/art1/view", nil)
	r.Header.Set("User-Agent", chromeWindows)
	r.Header.Set("Referer", "https://example.com/blog")
	r.Header.Set("X-Forwarded-For", "8.8.8.8")
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})

	tr.TrackArticleView(r, "art1", "Hello", "user-1")

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, eventlog.ArticleView, ev.Type)
	assert.Equal(t, "art1", ev.TargetID)
	assert.Equal(t, "Hello", ev.TargetTitle)
	assert.Equal(t, "user-1", ev.UserID)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, "8.8.8.8", ev.IPAddress)
	assert.Equal(t, "https://example.com/blog", ev.Referer)
	assert.Equal(t, "CN", ev.Country)
	assert.Equal(t, "Shanghai", ev.City)
	assert.Equal(t, DeviceDesktop, ev.Device)
	assert.Equal(t, now, ev.Timestamp)
}

func TestTrackLikeAction_Extra(t *testing.T) {
	sink := &memorySink{}
	tr := New(sink)

	r := httptest.NewRequest(http.MethodPost, "/api/works/w1/like", nil)
	tr.TrackLikeAction(r, "work", "w1", "like", "")

	require.Len(t, sink.events, 1)
	assert.Equal(t, eventlog.LikeAction, sink.events[0].Type)
	assert.Equal(t, map[string]any{"targetType": "work", "action": "like"}, sink.events[0].Extra)
	assert.Empty(t, sink.events[0].Country)
}

func TestTrack_SinkPanicDoesNotEscape(t *testing.T) {
	tr := New(panicSink{})
	r := httptest.NewRequest(http.MethodGet, "/api/articles", nil)

	assert.NotPanics(t, func() { tr.TrackPageView(r, "/api/articles", "", "") })
}

func TestTrack_UnknownTypeIgnored(t *testing.T) {
	sink := &memorySink{}
	tr := New(sink)

	tr.Track(httptest.NewRequest(http.MethodGet, "/", nil), eventlog.BehaviorType("scroll"), Target{})
	assert.Empty(t, sink.events)
}
