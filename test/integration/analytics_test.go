package integration_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/test/helpers"
)

// TestAnalytics_ViewToDailyStats проходит весь путь: просмотр статьи
// пишется в журнал, ручной запуск агрегирует день, статистика читается из БД.
func TestAnalytics_ViewToDailyStats(t *testing.T) {
	ts := GetTestServer(t)
	adminToken := ts.LoginAdmin(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/admin/articles", adminToken, map[string]interface{}{
		"title":   "Первая статья",
		"content": "Текст",
		"status":  "published",
		"tags":    []string{"go", "gin"},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var article struct {
		ID string `json:"id"`
	}
	helpers.Decode(t, body, &article)

	for i := 0; i < 2; i++ {
		res, body = ts.SendRequest(t, http.MethodPost, "/api/articles/"+article.ID+"/view", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
	}

	today := time.Now().UTC().Format("2006-01-02")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/admin/analytics/tasks/run?date="+today, adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var run struct {
		Date       string `json:"date"`
		Processed  bool   `json:"processed"`
		Statistics struct {
			ArticleViews int `json:"article_views"`
		} `json:"statistics"`
	}
	helpers.Decode(t, body, &run)
	assert.Equal(t, today, run.Date)
	assert.True(t, run.Processed)
	assert.Equal(t, 2, run.Statistics.ArticleViews)

	res, body = ts.SendRequest(t, http.MethodGet, fmt.Sprintf("/api/admin/analytics/daily-stats?start_date=%s&end_date=%s", today, today), adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, today)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/admin/analytics/top-content?type=article_view&date="+today, adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "Первая статья")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/admin/analytics/logs/dates", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, today)
}

func TestAnalytics_RequiresAdmin(t *testing.T) {
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/admin/analytics/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
