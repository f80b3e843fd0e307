package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/user"
	"github.com/xiebiao/meatshop/pkg/jwt"
)

type stubUsers struct {
	u   *user.User
	err error
}

func (s *stubUsers) EnsureUser(_ context.Context, p user.Profile) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.u.TelegramID = p.TelegramID
	s.u.Username = p.Username
	return s.u, nil
}

func (s *stubUsers) GetActiveUser(_ context.Context, id uint) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.u, nil
}

type memSessions struct {
	saved     map[uint]map[string]interface{}
	blacklist map[string]time.Duration
	saveErr   error
}

func newMemSessions() *memSessions {
	return &memSessions{saved: map[uint]map[string]interface{}{}, blacklist: map[string]time.Duration{}}
}

func (m *memSessions) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[userID] = data
	return nil
}

func (m *memSessions) DeleteSession(_ context.Context, userID uint) error {
	delete(m.saved, userID)
	return nil
}

func (m *memSessions) AddToBlacklist(_ context.Context, tokenID string, ttl time.Duration) error {
	m.blacklist[tokenID] = ttl
	return nil
}

func TestSessionFlow(t *testing.T) {
	users := &stubUsers{u: &user.User{ID: 5, IsActive: true}}
	sessions := newMemSessions()
	manager := jwt.NewManager("secret", time.Hour, 24*time.Hour)
	ctx := context.Background()

	start := NewStartSessionUseCase(users, manager, sessions, 24*time.Hour, zap.NewNop())
	resp, err := start.Execute(ctx, StartSessionRequest{TelegramID: 777, Username: "ivan"})
	require.NoError(t, err)
	assert.Equal(t, uint(5), resp.User.ID)
	assert.Equal(t, "@ivan", resp.User.DisplayName)
	assert.Contains(t, sessions.saved, uint(5))

	claims, err := manager.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(777), claims.TelegramID)

	t.Run("刷新时读取最新权限", func(t *testing.T) {
		users.u.IsAdmin = true
		token, err := NewRefreshTokenUseCase(users, manager).Execute(ctx, resp.RefreshToken)
		require.NoError(t, err)
		c, err := manager.ParseAccessToken(token)
		require.NoError(t, err)
		assert.True(t, c.IsAdmin)
	})

	t.Run("登出拉黑Token", func(t *testing.T) {
		require.NoError(t, NewLogoutUseCase(sessions, manager).Execute(ctx, claims))
		assert.NotContains(t, sessions.saved, uint(5))
		ttl, ok := sessions.blacklist[claims.ID]
		require.True(t, ok)
		assert.True(t, ttl > 0 && ttl <= time.Hour)
	})
}

func TestStartSession_Errors(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour, time.Hour)

	t.Run("封禁用户", func(t *testing.T) {
		uc := NewStartSessionUseCase(&stubUsers{err: user.ErrUserBlocked}, manager, newMemSessions(), time.Hour, zap.NewNop())
		_, err := uc.Execute(context.Background(), StartSessionRequest{TelegramID: 1})
		assert.ErrorIs(t, err, user.ErrUserBlocked)
	})

	t.Run("会话保存失败不影响登录", func(t *testing.T) {
		sessions := newMemSessions()
		sessions.saveErr = errors.New("redis down")
		uc := NewStartSessionUseCase(&stubUsers{u: &user.User{ID: 1, IsActive: true}}, manager, sessions, time.Hour, zap.NewNop())
		resp, err := uc.Execute(context.Background(), StartSessionRequest{TelegramID: 1})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})
}
