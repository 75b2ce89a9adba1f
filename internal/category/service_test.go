package category

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type memoryRepository struct {
	categories map[string]*domain.Category
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{categories: map[string]*domain.Category{}}
}

func (r *memoryRepository) Insert(ctx context.Context, c *domain.Category) error {
	copied := *c
	copied.CreatedAt = time.Now()
	r.categories[c.ID] = &copied
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("category", "id", id)
	}
	copied := *c
	return &copied, nil
}

func (r *memoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("category", "name", name)
}

func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(r.categories)), nil
}

func (r *memoryRepository) Update(ctx context.Context, c *domain.Category) error {
	stored, ok := r.categories[c.ID]
	if !ok {
		return apperrors.NewNotFoundError("category", "id", c.ID)
	}
	copied := *c
	copied.CreatedAt = stored.CreatedAt
	r.categories[c.ID] = &copied
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.categories[id]; !ok {
		return apperrors.NewNotFoundError("category", "id", id)
	}
	delete(r.categories, id)
	return nil
}

type stubProductChecker struct {
	inUse map[string]bool
}

func (c *stubProductChecker) HasProductsInCategory(ctx context.Context, categoryID string) (bool, error) {
	return c.inUse[categoryID], nil
}

func newTestService() (*Service, *stubProductChecker) {
	repo := newMemoryRepository()
	products := &stubProductChecker{inUse: map[string]bool{}}
	nextID := 0
	newID := func() string {
		nextID++
		return fmt.Sprintf("cat-%d", nextID)
	}
	svc := NewService(repo, products, cache.NewEntity[domain.Category](16, time.Minute), newID, zap.NewNop())
	return svc, products
}

func TestCreate_DuplicateNameConflict(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "Audio", "headphones and speakers")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "Audio", "a second audio section")
	require.Error(t, err)

	conflict, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Contains(t, conflict.Error(), "Audio")
}

func TestUpdate_RenameToExistingConflict(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "Audio", "")
	require.NoError(t, err)
	video, err := svc.Create(context.Background(), "Video", "")
	require.NoError(t, err)

	name := "Audio"
	_, err = svc.Update(context.Background(), video.ID, &name, nil)
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestDelete_CategoryWithProductsRejected(t *testing.T) {
	svc, products := newTestService()

	c, err := svc.Create(context.Background(), "Audio", "")
	require.NoError(t, err)
	products.inUse[c.ID] = true

	err = svc.Delete(context.Background(), c.ID)
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	_, err = svc.GetByID(context.Background(), c.ID)
	assert.NoError(t, err, "category survives")
}

func TestDelete_EmptyCategory(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Create(context.Background(), "Audio", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), c.ID))

	_, err = svc.GetByID(context.Background(), c.ID)
	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
