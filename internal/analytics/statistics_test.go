package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/internal/eventlog"
)

func ev(typ eventlog.BehaviorType, session string) eventlog.BehaviorEvent {
	return eventlog.BehaviorEvent{Type: typ, SessionID: session}
}

func TestComputeStatistics_Scenario(t *testing.T) {
	events := []eventlog.BehaviorEvent{
		{Type: eventlog.PageView, SessionID: "a", RequestInfo: eventlog.RequestInfo{Referer: "/home"}},
		{Type: eventlog.PageView, SessionID: "a", RequestInfo: eventlog.RequestInfo{Referer: "/home"}},
		{Type: eventlog.ArticleView, SessionID: "b", TargetID: "art1", TargetTitle: "Hello"},
	}

	s := ComputeStatistics("2024-01-01", events, DefaultTopN)

	assert.Equal(t, "2024-01-01", s.Date)
	assert.Equal(t, 2, s.UniqueVisitors)
	assert.Equal(t, 3, s.TotalViews)
	assert.Equal(t, 1, s.ArticleViews)
	assert.Equal(t, []PageStat{{Path: "/home", Views: 2}}, s.TopPages)
	assert.Equal(t, []ArticleStat{{ID: "art1", Title: "Hello", Views: 1}}, s.TopArticles)
}

func TestComputeStatistics_UniqueVisitorsIgnoresRepetitionAndEmpty(t *testing.T) {
	var events []eventlog.BehaviorEvent
	for i := 0; i < 5; i++ {
		events = append(events, ev(eventlog.PageView, "s1"), ev(eventlog.LikeAction, "s2"), ev(eventlog.UserVisit, "s3"))
	}
	events = append(events, ev(eventlog.PageView, ""))

	s := ComputeStatistics("2024-01-01", events, 0)
	assert.Equal(t, 3, s.UniqueVisitors)
}

func TestComputeStatistics_TotalViewsOnlyViewTypes(t *testing.T) {
	events := []eventlog.BehaviorEvent{
		ev(eventlog.PageView, "a"),
		ev(eventlog.ArticleView, "a"),
		ev(eventlog.MomentView, "a"),
		ev(eventlog.WorkView, "a"),
		ev(eventlog.CommentCreate, "a"),
		ev(eventlog.LikeAction, "a"),
		ev(eventlog.LikeAction, "a"),
		ev(eventlog.UserVisit, "a"),
	}

	s := ComputeStatistics("2024-01-01", events, 0)
	assert.Equal(t, 4, s.TotalViews)
	assert.Equal(t, 1, s.ArticleViews)
	assert.Equal(t, 1, s.MomentViews)
	assert.Equal(t, 1, s.WorkViews)
	assert.Equal(t, 1, s.NewComments)
	assert.Equal(t, 2, s.NewLikes)
}

func TestComputeStatistics_TopArticlesRequireIDAndTitle(t *testing.T) {
	events := []eventlog.BehaviorEvent{
		{Type: eventlog.ArticleView, SessionID: "a", TargetID: "art1"},
		{Type: eventlog.ArticleView, SessionID: "a", TargetTitle: "No id"},
		{Type: eventlog.ArticleView, SessionID: "a", TargetID: "art2", TargetTitle: "Two"},
	}

	s := ComputeStatistics("2024-01-01", events, 0)
	assert.Equal(t, 3, s.ArticleViews)
	require.Len(t, s.TopArticles, 1)
	assert.Equal(t, "art2", s.TopArticles[0].ID)
}

func TestComputeStatistics_TopArticlesKeepLastSeenTitle(t *testing.T) {
	events := []eventlog.BehaviorEvent{
		{Type: eventlog.ArticleView, SessionID: "a", TargetID: "art1", TargetTitle: "Old title"},
		{Type: eventlog.ArticleView, SessionID: "b", TargetID: "art1", TargetTitle: "New title"},
	}

	s := ComputeStatistics("2024-01-01", events, 0)
	require.Len(t, s.TopArticles, 1)
	assert.Equal(t, ArticleStat{ID: "art1", Title: "New title", Views: 2}, s.TopArticles[0])
}

func TestComputeStatistics_TopPagesStableTieBreakAndLimit(t *testing.T) {
	var events []eventlog.BehaviorEvent
	// 12 страниц по одному просмотру, затем /p5 получает второй
	for i := 0; i < 12; i++ {
		events = append(events, eventlog.BehaviorEvent{
			Type: eventlog.PageView, SessionID: "a",
			RequestInfo: eventlog.RequestInfo{Referer: fmt.Sprintf("/p%d", i)},
		})
	}
	events = append(events, eventlog.BehaviorEvent{
		Type: eventlog.PageView, SessionID: "a", RequestInfo: eventlog.RequestInfo{Referer: "/p5"},
	})
	// без referer в рейтинг не попадает
	events = append(events, ev(eventlog.PageView, "a"))

	s := ComputeStatistics("2024-01-01", events, 10)

	require.Len(t, s.TopPages, 10)
	assert.Equal(t, PageStat{Path: "/p5", Views: 2}, s.TopPages[0])
	paths := make([]string, 0, len(s.TopPages))
	for _, p := range s.TopPages[1:] {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"/p0", "/p1", "/p2", "/p3", "/p4", "/p6", "/p7", "/p8", "/p9"}, paths)
	assert.Equal(t, 14, s.TotalViews)
}

func TestComputeStatistics_DimensionMapsCountAllTypes(t *testing.T) {
	events := []eventlog.BehaviorEvent{
		{Type: eventlog.PageView, SessionID: "a", RequestInfo: eventlog.RequestInfo{Device: "desktop", Browser: "Chrome 120", OS: "Windows 10", Country: "CN"}},
		{Type: eventlog.LikeAction, SessionID: "a", RequestInfo: eventlog.RequestInfo{Device: "desktop", Browser: "Chrome 120"}},
		{Type: eventlog.CommentCreate, SessionID: "b", RequestInfo: eventlog.RequestInfo{Device: "mobile"}},
	}

	s := ComputeStatistics("2024-01-01", events, 0)
	assert.Equal(t, map[string]int{"desktop": 2, "mobile": 1}, s.DeviceStats)
	assert.Equal(t, map[string]int{"Chrome 120": 2}, s.BrowserStats)
	assert.Equal(t, map[string]int{"Windows 10": 1}, s.OSStats)
	assert.Equal(t, map[string]int{"CN": 1}, s.CountryStats)
}

func TestComputeStatistics_Empty(t *testing.T) {
	s := ComputeStatistics("2024-01-01", nil, 0)
	assert.Zero(t, s.TotalViews)
	assert.Empty(t, s.TopPages)
	assert.NotNil(t, s.DeviceStats)
}
