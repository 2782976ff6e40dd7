package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/test/helpers"
)

func TestHealth(t *testing.T) {
	ts := GetTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestCategories_DeleteBlockedWhileInUse(t *testing.T) {
	ts := GetTestServer(t)
	adminToken := ts.LoginAdmin(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/admin/categories", adminToken, map[string]interface{}{
		"name": "Бэкенд",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var category struct {
		ID       string `json:"id"`
		IsActive bool   `json:"is_active"`
	}
	helpers.Decode(t, body, &category)
	assert.True(t, category.IsActive)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/admin/categories", adminToken, map[string]interface{}{
		"name": "Бэкенд",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/admin/articles", adminToken, map[string]interface{}{
		"title":       "Статья в категории",
		"content":     "Текст",
		"status":      "published",
		"category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var article struct {
		ID string `json:"id"`
	}
	helpers.Decode(t, body, &article)

	res, body = ts.SendRequest(t, http.MethodDelete, "/api/admin/categories/"+category.ID, adminToken, nil)
	require.Equal(t, http.StatusConflict, res.StatusCode, body)
	assert.Contains(t, body, `"articles":1`)

	// выключенная категория не видна публично
	res, body = ts.SendRequest(t, http.MethodPatch, "/api/admin/categories/"+category.ID+"/toggle-status", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/categories/"+category.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodDelete, "/api/admin/articles/"+article.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodDelete, "/api/admin/categories/"+category.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, body)
}

func TestWorks_PublicCatalog(t *testing.T) {
	ts := GetTestServer(t)
	adminToken := ts.LoginAdmin(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/admin/works", adminToken, map[string]interface{}{
		"title":        "Портфолио",
		"category":     "web",
		"status":       "published",
		"technologies": []string{"Go", "Vue"},
		"is_featured":  true,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var work struct {
		ID string `json:"id"`
	}
	helpers.Decode(t, body, &work)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/admin/works", adminToken, map[string]interface{}{
		"title":    "Неверная категория",
		"category": "game",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/works/categories", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var categories struct {
		Data []struct {
			Value string `json:"value"`
			Count int64  `json:"count"`
		} `json:"data"`
	}
	helpers.Decode(t, body, &categories)
	require.Len(t, categories.Data, 5)
	assert.Equal(t, "web", categories.Data[0].Value)
	assert.Equal(t, int64(1), categories.Data[0].Count)
	assert.Equal(t, int64(0), categories.Data[1].Count)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/works/featured", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, work.ID)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/works/"+work.ID+"/view", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"count":1`)
}
