package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
)

type fakeCategoryRepo struct {
	repositories.CategoryRepository
	categories map[string]*models.Category
}

func (f *fakeCategoryRepo) FindByID(_ *gorm.DB, id string) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryRepo) UpdateCategory(_ *gorm.DB, c *models.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) CreateCategory(_ *gorm.DB, c *models.Category) error {
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return repositories.ErrCategoryAlreadyExists
		}
	}
	c.ID = "c-" + c.Name
	f.categories[c.ID] = c
	return nil
}

func category(id string, active bool) *models.Category {
	c := &models.Category{Name: "name-" + id, IsActive: active}
	c.ID = id
	return c
}

func TestCategoryService_GetCategoryHidesInactive(t *testing.T) {
	repo := &fakeCategoryRepo{categories: map[string]*models.Category{
		"on":  category("on", true),
		"off": category("off", false),
	}}
	svc := NewCategoryService(repo)

	got, err := svc.GetCategory(nil, "on", true)
	require.NoError(t, err)
	assert.Equal(t, "name-on", got.Name)

	_, err = svc.GetCategory(nil, "off", true)
	requireAppError(t, err, http.StatusNotFound)

	got, err = svc.GetCategory(nil, "off", false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.GetCategory(nil, "missing", false)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCategoryService_ToggleStatus(t *testing.T) {
	repo := &fakeCategoryRepo{categories: map[string]*models.Category{"c1": category("c1", true)}}
	svc := NewCategoryService(repo)

	toggled, err := svc.ToggleStatus(nil, "c1")
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.False(t, repo.categories["c1"].IsActive)

	toggled, err = svc.ToggleStatus(nil, "c1")
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestCategoryService_CreateCategory(t *testing.T) {
	repo := &fakeCategoryRepo{categories: map[string]*models.Category{}}
	svc := NewCategoryService(repo)

	created, err := svc.CreateCategory(nil, &dto.CreateCategoryRequest{Name: "Go"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	hidden := false
	created, err = svc.CreateCategory(nil, &dto.CreateCategoryRequest{Name: "Drafts", IsActive: &hidden})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	_, err = svc.CreateCategory(nil, &dto.CreateCategoryRequest{Name: "Go"})
	requireAppError(t, err, http.StatusConflict)
}

type fakeWorkRepo struct {
	repositories.WorkRepository

	works      map[string]*models.Work
	byCategory []repositories.CountByValue
	feedLimit  int
	increments map[repositories.Counter]int
}

func (f *fakeWorkRepo) FindByID(_ *gorm.DB, id string) (*models.Work, error) {
	w, ok := f.works[id]
	if !ok {
		return nil, repositories.ErrWorkNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWorkRepo) UpdateWork(_ *gorm.DB, w *models.Work) error {
	f.works[w.ID] = w
	return nil
}

func (f *fakeWorkRepo) IncrementCounter(_ *gorm.DB, _ string, counter repositories.Counter, delta int) error {
	f.increments[counter] += delta
	return nil
}

func (f *fakeWorkRepo) CountByCategory(_ *gorm.DB, _ bool) ([]repositories.CountByValue, error) {
	return f.byCategory, nil
}

func (f *fakeWorkRepo) FindFeatured(_ *gorm.DB, limit int) ([]models.Work, error) {
	f.feedLimit = limit
	return nil, nil
}

func work(id string, status models.ArticleStatus) *models.Work {
	w := &models.Work{Title: "Work " + id, Status: status, LikeCount: 2}
	w.ID = id
	return w
}

func newFakeWorkRepo(works ...*models.Work) *fakeWorkRepo {
	f := &fakeWorkRepo{works: map[string]*models.Work{}, increments: map[repositories.Counter]int{}}
	for _, w := range works {
		f.works[w.ID] = w
	}
	return f
}

func TestWorkService_GetCategoriesIncludesEmpty(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.byCategory = []repositories.CountByValue{
		{Value: string(models.WorkCategoryDesign), Count: 2},
		{Value: string(models.WorkCategoryWeb), Count: 5},
	}
	svc := NewWorkService(repo, nil)

	got, err := svc.GetCategories(nil)
	require.NoError(t, err)
	require.Len(t, got, len(models.WorkCategories()))

	for i, c := range models.WorkCategories() {
		assert.Equal(t, string(c), got[i].Value)
	}
	assert.Equal(t, int64(5), got[0].Count)
	assert.Equal(t, int64(0), got[1].Count)
	assert.Equal(t, int64(2), got[3].Count)
}

func TestWorkService_VisibilityAndCounters(t *testing.T) {
	repo := newFakeWorkRepo(work("pub", models.ArticleStatusPublished), work("draft", models.ArticleStatusDraft))
	svc := NewWorkService(repo, nil)

	_, err := svc.RecordView(nil, "draft")
	requireAppError(t, err, http.StatusNotFound)

	viewed, err := svc.RecordView(nil, "pub")
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.ViewCount)

	liked, err := svc.Like(nil, "pub")
	require.NoError(t, err)
	assert.Equal(t, dto.CounterResponse{ID: "pub", Count: 3}, *liked)
	assert.Equal(t, 1, repo.increments[repositories.CounterViews])
	assert.Equal(t, 1, repo.increments[repositories.CounterLikes])
}

func TestWorkService_ToggleFeaturedAndFeedLimit(t *testing.T) {
	repo := newFakeWorkRepo(work("w1", models.ArticleStatusPublished))
	svc := NewWorkService(repo, nil)

	toggled, err := svc.ToggleFeatured(nil, "w1")
	require.NoError(t, err)
	assert.True(t, toggled.IsFeatured)
	assert.True(t, repo.works["w1"].IsFeatured)

	_, err = svc.ToggleFeatured(nil, "missing")
	requireAppError(t, err, http.StatusNotFound)

	_, err = svc.GetFeatured(nil, -3)
	require.NoError(t, err)
	assert.Equal(t, defaultFeedLimit, repo.feedLimit)

	_, err = svc.GetFeatured(nil, maxFeedLimit+1)
	require.NoError(t, err)
	assert.Equal(t, maxFeedLimit, repo.feedLimit)
}
