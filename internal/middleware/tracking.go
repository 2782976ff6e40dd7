package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/tracker"
	"miaoyou_backend/pkg/contextkeys"
)

const sessionCookieMaxAge = 30 * 24 * 60 * 60

var (
	trackingExcludes = []*regexp.Regexp{
		regexp.MustCompile(`^/api/admin/`),
		regexp.MustCompile(`^/api/health$`),
		regexp.MustCompile(`^/swagger/`),
		regexp.MustCompile(`^/favicon\.ico$`),
		regexp.MustCompile(`^/robots\.txt$`),
		regexp.MustCompile(`^/sitemap\.xml$`),
		regexp.MustCompile(`\.(css|js|png|jpg|jpeg|gif|svg|ico|woff|woff2|ttf|eot)$`),
	}

	// списки разделов и их подборки; детальные просмотры пишут хендлеры
	listPagePattern = regexp.MustCompile(
		`^/api/(articles|moments|works|categories)` +
			`(/(recommended|popular|recent|featured|tags|categories|technologies|locations|with-count|category/[^/]+|tag/[^/]+|location/[^/]+))?/?$`)

	profilePath = "/api/auth/profile"
)

// BehaviorTracking гарантирует cookie сессии и после ответа пишет page_view
// для списков и user_visit для профиля. Учитываются только успешные GET.
func BehaviorTracking(t *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if shouldExclude(path) {
			c.Next()
			return
		}

		ensureSession(c, t)
		c.Next()

		if c.Request.Method != http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		switch {
		case path == profilePath:
			t.TrackUserVisit(c.Request, GetUserID(c))
		case listPagePattern.MatchString(path):
			m := listPagePattern.FindStringSubmatch(path)
			t.TrackPageView(c.Request, strings.TrimSuffix(path, "/"), m[1], GetUserID(c))
		}
	}
}

func shouldExclude(path string) bool {
	for _, re := range trackingExcludes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// ensureSession выставляет cookie, если клиент пришел без нее, и подкладывает
// тот же id в запрос, чтобы все события запроса попали в одну сессию.
func ensureSession(c *gin.Context, t *tracker.Tracker) {
	name := t.SessionCookie()
	id := ""
	if cookie, err := c.Request.Cookie(name); err == nil && cookie.Value != "" {
		id = cookie.Value
	} else {
		id, _ = t.SessionID(c.Request)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, id, sessionCookieMaxAge, "/", "", c.Request.TLS != nil, true)
		c.Request.AddCookie(&http.Cookie{Name: name, Value: id})
	}

	c.Set(contextkeys.SessionIDKey, id)
	c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), id))
}
