package analytics

import (
	"sort"

	"miaoyou_backend/internal/eventlog"
)

// DefaultTopN - размер рейтингов topPages и topArticles.
const DefaultTopN = 10

type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

type ArticleStat struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
}

// DailyStatistics - сводка за день. Не хранится целиком: в БД попадают только
// скалярные счетчики (models.DailyStats).
type DailyStatistics struct {
	Date           string         `json:"date"`
	TotalViews     int            `json:"total_views"`
	UniqueVisitors int            `json:"unique_visitors"`
	ArticleViews   int            `json:"article_views"`
	MomentViews    int            `json:"moment_views"`
	WorkViews      int            `json:"work_views"`
	NewComments    int            `json:"new_comments"`
	NewLikes       int            `json:"new_likes"`
	TopPages       []PageStat     `json:"top_pages"`
	TopArticles    []ArticleStat  `json:"top_articles"`
	DeviceStats    map[string]int `json:"device_stats"`
	BrowserStats   map[string]int `json:"browser_stats"`
	OSStats        map[string]int `json:"os_stats"`
	CountryStats   map[string]int `json:"country_stats"`
}

// counter считает частоты, запоминая порядок первого появления ключа.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top возвращает n ключей по убыванию счетчика; равные - в порядке первого появления.
func (c *counter) top(n int) []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// ComputeStatistics - чистая функция от последовательности событий за день.
func ComputeStatistics(date string, events []eventlog.BehaviorEvent, topN int) DailyStatistics {
	if topN <= 0 {
		topN = DefaultTopN
	}

	stats := DailyStatistics{
		Date:         date,
		TopPages:     []PageStat{},
		TopArticles:  []ArticleStat{},
		DeviceStats:  map[string]int{},
		BrowserStats: map[string]int{},
		OSStats:      map[string]int{},
		CountryStats: map[string]int{},
	}

	sessions := make(map[string]struct{})
	pages := newCounter()
	articles := newCounter()
	titles := make(map[string]string)

	for _, ev := range events {
		if ev.SessionID != "" {
			sessions[ev.SessionID] = struct{}{}
		}

		countDimension(stats.DeviceStats, ev.Device)
		countDimension(stats.BrowserStats, ev.Browser)
		countDimension(stats.OSStats, ev.OS)
		countDimension(stats.CountryStats, ev.Country)

		if ev.Type.IsView() {
			stats.TotalViews++
		}

		switch ev.Type {
		case eventlog.PageView:
			if ev.Referer != "" {
				pages.inc(ev.Referer)
			}
		case eventlog.ArticleView:
			stats.ArticleViews++
			if ev.TargetID != "" && ev.TargetTitle != "" {
				articles.inc(ev.TargetID)
				titles[ev.TargetID] = ev.TargetTitle
			}
		case eventlog.MomentView:
			stats.MomentViews++
		case eventlog.WorkView:
			stats.WorkViews++
		case eventlog.CommentCreate:
			stats.NewComments++
		case eventlog.LikeAction:
			stats.NewLikes++
		case eventlog.UserVisit:
		}
	}

	stats.UniqueVisitors = len(sessions)

	for _, path := range pages.top(topN) {
		stats.TopPages = append(stats.TopPages, PageStat{Path: path, Views: pages.counts[path]})
	}
	for _, id := range articles.top(topN) {
		stats.TopArticles = append(stats.TopArticles, ArticleStat{ID: id, Title: titles[id], Views: articles.counts[id]})
	}

	return stats
}

func countDimension(m map[string]int, value string) {
	if value != "" {
		m[value]++
	}
}
