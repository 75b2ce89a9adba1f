package payment

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
	methods map[string]*domain.PaymentMethod
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{methods: map[string]*domain.PaymentMethod{}}
}

func (r *memoryRepository) Insert(ctx context.Context, m *domain.PaymentMethod) error {
	copied := *m
	copied.CreatedAt = time.Now()
	r.methods[m.ID] = &copied
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	m, ok := r.methods[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("payment method", "id", id)
	}
	copied := *m
	return &copied, nil
}

func (r *memoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	for _, m := range r.methods {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memoryRepository) ClearDefault(ctx context.Context, userID string) error {
	for _, m := range r.methods {
		if m.UserID == userID {
			m.IsDefault = false
		}
	}
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, m *domain.PaymentMethod) error {
	stored, ok := r.methods[m.ID]
	if !ok {
		return apperrors.NewNotFoundError("payment method", "id", m.ID)
	}
	copied := *m
	copied.CreatedAt = stored.CreatedAt
	r.methods[m.ID] = &copied
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.methods[id]; !ok {
		return apperrors.NewNotFoundError("payment method", "id", id)
	}
	delete(r.methods, id)
	return nil
}

type stubUserChecker struct{}

func (stubUserChecker) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func newTestService() (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	nextID := 0
	newID := func() string {
		nextID++
		return fmt.Sprintf("pm-%d", nextID)
	}
	svc := NewService(repo, stubUserChecker{}, cache.NewEntity[domain.PaymentMethod](16, time.Minute), newID, zap.NewNop())
	return svc, repo
}

func TestCreate_KindWhitelist(t *testing.T) {
	tests := []struct {
		kind  string
		valid bool
	}{
		{"card", true},
		{"paypal", true},
		{"bank", true},
		{"crypto", false},
		{"CARD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("kind="+tt.kind, func(t *testing.T) {
			svc, _ := newTestService()

			_, err := svc.Create(context.Background(), "u1", Input{Kind: tt.kind, Label: "main", Token: "tok_123456"})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok)
		})
	}
}

func TestCreate_NewDefaultDisplacesPrevious(t *testing.T) {
	svc, repo := newTestService()

	first, err := svc.Create(context.Background(), "u1", Input{Kind: "card", Label: "old", Token: "tok_1111", IsDefault: true})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), "u1", Input{Kind: "paypal", Label: "new", Token: "tok_2222", IsDefault: true})
	require.NoError(t, err)

	assert.True(t, second.IsDefault)
	assert.False(t, repo.methods[first.ID].IsDefault, "previous default cleared")
}

func TestGetByID_OtherUsersMethodForbidden(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.Create(context.Background(), "u1", Input{Kind: "card", Label: "main", Token: "tok_1111"})
	require.NoError(t, err)

	// Creation warmed the cache, so this exercises the cache-hit path too.
	_, err = svc.GetByID(context.Background(), m.ID, "u2")
	require.Error(t, err)

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
}
