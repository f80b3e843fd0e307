package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", 2*time.Hour, 7*24*time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 42, TelegramID: 123456789, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7200), pair.ExpiresIn)

	claims, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, int64(123456789), claims.TelegramID)
	assert.True(t, claims.IsAdmin)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "meatshop", claims.Issuer)

	t.Run("Refresh Token不能访问接口", func(t *testing.T) {
		_, err := m.ParseAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("刷新Access Token", func(t *testing.T) {
		token, err := m.RefreshAccessToken(pair.RefreshToken, false)
		require.NoError(t, err)
		c, err := m.ParseAccessToken(token)
		require.NoError(t, err)
		assert.False(t, c.IsAdmin)

		_, err = m.RefreshAccessToken(pair.AccessToken, false)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestParseToken_Invalid(t *testing.T) {
	m := NewManager("test-secret", time.Hour, time.Hour)
	pair, err := m.GenerateToken(Identity{UserID: 1})
	require.NoError(t, err)

	t.Run("签名密钥不同", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour, time.Hour)
		_, err := other.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := m.ParseToken("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("已过期", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})
}

func TestRemaining(t *testing.T) {
	m := NewManager("s", time.Hour, time.Hour)
	pair, err := m.GenerateToken(Identity{UserID: 1})
	require.NoError(t, err)
	c, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)

	r := m.Remaining(c)
	assert.True(t, r > 59*time.Minute && r <= time.Hour, r)
}
