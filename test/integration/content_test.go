package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/test/helpers"
)

func TestContent_CommentModeration(t *testing.T) {
	ts := GetTestServer(t)
	adminToken := ts.LoginAdmin(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/admin/articles", adminToken, map[string]interface{}{
		"title":   "Статья с комментариями",
		"content": "Текст",
		"status":  "published",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var article struct {
		ID string `json:"id"`
	}
	helpers.Decode(t, body, &article)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/comments", "", map[string]interface{}{
		"content":     "Гостевой комментарий",
		"target_type": "article",
		"target_id":   article.ID,
		"guest_name":  "Гость",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var comment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	helpers.Decode(t, body, &comment)
	assert.Equal(t, "pending", comment.Status)

	// до модерации комментарий не виден
	res, body = ts.SendRequest(t, http.MethodGet, "/api/comments/article/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, body, "Гостевой комментарий")

	res, body = ts.SendRequest(t, http.MethodPut, "/api/admin/comments/"+comment.ID+"/status", adminToken, map[string]string{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/comments/article/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Гостевой комментарий")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/articles/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"comment_count":1`)
}

func TestContent_DraftHiddenFromPublic(t *testing.T) {
	ts := GetTestServer(t)
	adminToken := ts.LoginAdmin(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/admin/articles", adminToken, map[string]interface{}{
		"title":   "Черновик",
		"content": "Текст",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var article struct {
		ID string `json:"id"`
	}
	helpers.Decode(t, body, &article)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/articles/"+article.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/admin/articles/"+article.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
