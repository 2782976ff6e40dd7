package tracker

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/logger"
)

const DefaultSessionCookie = "session_id"

// EventSink принимает готовые события. Реализуется eventlog.Store.
type EventSink interface {
	AppendBehavior(ev eventlog.BehaviorEvent)
}

// Target - доменная цель события.
type Target struct {
	ID     string
	Title  string
	UserID string
	Extra  map[string]any
}

// Tracker превращает HTTP-запрос в BehaviorEvent и пишет его в журнал.
// Ошибки и паники не выходят наружу: запрос пользователя не должен падать из-за трекинга.
type Tracker struct {
	sink          EventSink
	ua            UAParser
	geo           GeoResolver
	sessionCookie string
	now           func() time.Time
}

type Option func(*Tracker)

func WithUAParser(p UAParser) Option        { return func(t *Tracker) { t.ua = p } }
func WithGeoResolver(g GeoResolver) Option  { return func(t *Tracker) { t.geo = g } }
func WithClock(now func() time.Time) Option { return func(t *Tracker) { t.now = now } }

func WithSessionCookie(name string) Option {
	return func(t *Tracker) {
		if name != "" {
			t.sessionCookie = name
		}
	}
}

func New(sink EventSink, opts ...Option) *Tracker {
	t := &Tracker{
		sink:          sink,
		ua:            NewUAParser(),
		geo:           noopGeo{},
		sessionCookie: DefaultSessionCookie,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) SessionCookie() string { return t.sessionCookie }

// Track собирает событие typ для запроса r и отправляет его в журнал.
func (t *Tracker) Track(r *http.Request, typ eventlog.BehaviorType, target Target) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Behavior tracking failed", "type", typ, "panic", rec)
		}
	}()

	if !typ.Valid() {
		logger.Warn("Behavior tracking: unknown event type", "type", typ)
		return
	}

	sessionID, _ := t.SessionID(r)
	info := t.RequestInfo(r)
	info.UserID = target.UserID

	t.sink.AppendBehavior(eventlog.BehaviorEvent{
		Timestamp:   t.now(),
		Type:        typ,
		TargetID:    target.ID,
		TargetTitle: target.Title,
		SessionID:   sessionID,
		RequestInfo: info,
		Extra:       target.Extra,
	})
}

func (t *Tracker) TrackPageView(r *http.Request, targetID, targetTitle, userID string) {
	t.Track(r, eventlog.PageView, Target{ID: targetID, Title: targetTitle, UserID: userID})
}

func (t *Tracker) TrackArticleView(r *http.Request, articleID, title, userID string) {
	t.Track(r, eventlog.ArticleView, Target{ID: articleID, Title: title, UserID: userID})
}

func (t *Tracker) TrackMomentView(r *http.Request, momentID, userID string) {
	t.Track(r, eventlog.MomentView, Target{ID: momentID, UserID: userID})
}

func (t *Tracker) TrackWorkView(r *http.Request, workID, title, userID string) {
	t.Track(r, eventlog.WorkView, Target{ID: workID, Title: title, UserID: userID})
}

func (t *Tracker) TrackUserVisit(r *http.Request, userID string) {
	t.Track(r, eventlog.UserVisit, Target{UserID: userID})
}

func (t *Tracker) TrackCommentCreate(r *http.Request, targetType, targetID, userID string) {
	t.Track(r, eventlog.CommentCreate, Target{
		ID:     targetID,
		UserID: userID,
		Extra:  map[string]any{"targetType": targetType},
	})
}

// TrackLikeAction; action - "like" или "unlike".
func (t *Tracker) TrackLikeAction(r *http.Request, targetType, targetID, action, userID string) {
	t.Track(r, eventlog.LikeAction, Target{
		ID:     targetID,
		UserID: userID,
		Extra:  map[string]any{"targetType": targetType, "action": action},
	})
}

// RequestInfo извлекает из запроса IP, User-Agent, Referer, устройство и гео.
func (t *Tracker) RequestInfo(r *http.Request) eventlog.RequestInfo {
	ua := r.Header.Get("User-Agent")
	client := t.ua.Parse(ua)
	ip := ClientIP(r)
	country, city := t.geo.Resolve(ip)

	return eventlog.RequestInfo{
		IPAddress: ip,
		UserAgent: ua,
		Referer:   r.Header.Get("Referer"),
		Country:   country,
		City:      city,
		Device:    client.Device,
		Browser:   client.Browser,
		OS:        client.OS,
	}
}

// SessionID берет id сессии из cookie. Если cookie нет, генерирует новый id
// и возвращает generated=true. Клиент без cookie получает новую сессию на
// каждый запрос.
func (t *Tracker) SessionID(r *http.Request) (id string, generated bool) {
	if c, err := r.Cookie(t.sessionCookie); err == nil && c.Value != "" {
		return c.Value, false
	}
	return NewSessionID(t.now()), true
}

// NewSessionID формирует id вида sess_<unix ms>_<9 случайных символов>.
func NewSessionID(at time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "sess_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + random
}

// ClientIP: x-forwarded-for (первый адрес) > x-real-ip > cf-connecting-ip >
// адрес сокета > 127.0.0.1.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return "127.0.0.1"
}
