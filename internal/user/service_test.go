package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type mockRepository struct {
	InsertFunc      func(ctx context.Context, u *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountFunc       func(ctx context.Context) (int64, error)
	UpdateFunc      func(ctx context.Context, u *domain.User) error
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *mockRepository) Insert(ctx context.Context, u *domain.User) error {
	return m.InsertFunc(ctx, u)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return m.ListFunc(ctx, limit, offset)
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}

func (m *mockRepository) Update(ctx context.Context, u *domain.User) error {
	return m.UpdateFunc(ctx, u)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, cache.NewEntity[domain.User](16, time.Minute), func() string { return "fixed-id" }, zap.NewNop())
}

func TestRegister_HashesPassword(t *testing.T) {
	var inserted *domain.User

	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, apperrors.NewNotFoundError("user", "email", email)
		},
		InsertFunc: func(ctx context.Context, u *domain.User) error {
			inserted = u
			return nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			out := *inserted
			out.CreatedAt = time.Now()
			return &out, nil
		},
	}

	svc := newTestService(repo)

	u, err := svc.Register(context.Background(), "a@b.c", "hunter2hunter2", "Ada", "Lovelace", nil)
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", u.ID)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.NotEqual(t, "hunter2hunter2", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email}, nil
		},
	}

	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "a@b.c", "hunter2hunter2", "Ada", "Lovelace", nil)
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			if email == "a@b.c" {
				return &domain.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, apperrors.NewNotFoundError("user", "email", email)
		},
	}

	svc := newTestService(repo)

	u, err := svc.Authenticate(context.Background(), "a@b.c", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.Authenticate(context.Background(), "a@b.c", "wrong")
	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok, "wrong password must be unauthorized")

	_, err = svc.Authenticate(context.Background(), "nobody@b.c", "correct-horse")
	_, ok = apperrors.IsUnauthorizedError(err)
	assert.True(t, ok, "unknown email must be unauthorized, not not-found")
}

func TestGetByID_ReadThrough(t *testing.T) {
	calls := 0
	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			calls++
			return &domain.User{ID: id, Email: "a@b.c"}, nil
		},
	}

	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second read must hit the cache")
}

func TestUpdate_EmailConflict(t *testing.T) {
	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "old@b.c"}, nil
		},
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "other", Email: email}, nil
		},
	}

	svc := newTestService(repo)

	newEmail := "taken@b.c"
	_, err := svc.Update(context.Background(), "u1", UpdateInput{Email: &newEmail})
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestDelete_InvalidatesCache(t *testing.T) {
	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}

	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1"))

	_, ok := svc.cache.Get(cache.IDKey("u1"))
	assert.False(t, ok)
}
