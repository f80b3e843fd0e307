package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byID    map[uint]*User
	nextID  uint
	updates int
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[uint]*User{}}
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = u
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *memRepo) FindByTelegramID(_ context.Context, tgID int64) (*User, error) {
	for _, u := range r.byID {
		if u.TelegramID == tgID {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memRepo) Update(_ context.Context, u *User) error {
	r.updates++
	r.byID[u.ID] = u
	return nil
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("首次登录创建用户", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		u, err := svc.EnsureUser(ctx, Profile{TelegramID: 42, Username: "@ivan", FirstName: "Иван"})
		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, "ivan", u.Username)
		assert.True(t, u.CanOrder())
	})

	t.Run("再次登录同步资料", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		_, err := svc.EnsureUser(ctx, Profile{TelegramID: 42, FirstName: "Иван"})
		require.NoError(t, err)
		_, err = svc.EnsureUser(ctx, Profile{TelegramID: 42, FirstName: "Иван"})
		require.NoError(t, err)
		assert.Equal(t, 0, repo.updates)

		u, err := svc.EnsureUser(ctx, Profile{TelegramID: 42, FirstName: "Иван", LastName: "Петров"})
		require.NoError(t, err)
		assert.Equal(t, 1, repo.updates)
		assert.Equal(t, "Иван Петров", u.DisplayName())
		assert.Len(t, repo.byID, 1)
	})

	t.Run("封禁用户", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		u, err := svc.EnsureUser(ctx, Profile{TelegramID: 7})
		require.NoError(t, err)
		u.IsBlocked = true

		_, err = svc.EnsureUser(ctx, Profile{TelegramID: 7})
		assert.True(t, errors.Is(err, ErrUserBlocked))

		_, err = svc.GetActiveUser(ctx, u.ID)
		assert.ErrorIs(t, err, ErrUserBlocked)
	})

	t.Run("非法Telegram ID", func(t *testing.T) {
		_, err := NewService(newMemRepo()).EnsureUser(ctx, Profile{TelegramID: 0})
		assert.ErrorIs(t, err, ErrInvalidTelegramID)
	})
}
