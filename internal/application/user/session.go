package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/user"
	"github.com/xiebiao/meatshop/pkg/jwt"
	"github.com/xiebiao/meatshop/pkg/logger"
)

// SessionStore 会话与Token黑名单（redis.SessionStore实现）
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, tokenID string, ttl time.Duration) error
}

// StartSessionUseCase Bot为用户开启会话
// 调用方是持有bot secret的机器人（中间件校验），用户身份由Telegram担保
type StartSessionUseCase struct {
	users      user.Service
	jwtManager *jwt.Manager
	sessions   SessionStore
	sessionTTL time.Duration
	log        *zap.Logger
}

// NewStartSessionUseCase 创建会话用例，sessionTTL与Refresh Token有效期一致
func NewStartSessionUseCase(users user.Service, jwtManager *jwt.Manager, sessions SessionStore, sessionTTL time.Duration, log *zap.Logger) *StartSessionUseCase {
	return &StartSessionUseCase{
		users:      users,
		jwtManager: jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// StartSessionRequest Telegram资料
type StartSessionRequest struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// SessionResponse 会话
type SessionResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID          uint   `json:"id"`
	TelegramID  int64  `json:"telegram_id"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// Execute 查找或注册用户并签发Token
func (uc *StartSessionUseCase) Execute(ctx context.Context, req StartSessionRequest) (*SessionResponse, error) {
	u, err := uc.users.EnsureUser(ctx, user.Profile{
		TelegramID:   req.TelegramID,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(jwt.Identity{UserID: u.ID, TelegramID: u.TelegramID, IsAdmin: u.IsAdmin})
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"user_id":     u.ID,
		"telegram_id": u.TelegramID,
		"login_at":    time.Now().Unix(),
	}
	if err := uc.sessions.SaveSession(ctx, u.ID, data, uc.sessionTTL); err != nil {
		// 会话只用于审计，保存失败不影响登录
		logger.FromContext(ctx, uc.log).Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &SessionResponse{
		User: UserInfo{
			ID:          u.ID,
			TelegramID:  u.TelegramID,
			DisplayName: u.DisplayName(),
			IsAdmin:     u.IsAdmin,
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// RefreshTokenUseCase 用Refresh Token换取Access Token
type RefreshTokenUseCase struct {
	users      user.Service
	jwtManager *jwt.Manager
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(users user.Service, jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{users: users, jwtManager: jwtManager}
}

// Execute 重新读取用户，封禁用户无法刷新，管理员权限按最新状态签发
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (string, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	u, err := uc.users.GetActiveUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	return uc.jwtManager.RefreshAccessToken(refreshToken, u.IsAdmin)
}

// LogoutUseCase 登出
type LogoutUseCase struct {
	sessions   SessionStore
	jwtManager *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions, jwtManager: jwtManager}
}

// Execute 删除会话，Access Token在剩余有效期内进入黑名单
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims) error {
	if err := uc.sessions.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessions.AddToBlacklist(ctx, claims.ID, uc.jwtManager.Remaining(claims))
}
