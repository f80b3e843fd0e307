package user

import (
	"context"
	"errors"
	"strings"
)

// Service 用户领域服务
type Service interface {
	// EnsureUser 按Telegram ID查找用户，不存在则创建，存在则同步资料
	// 被封禁的用户返回ErrUserBlocked
	EnsureUser(ctx context.Context, p Profile) (*User, error)

	// GetActiveUser 获取可下单的用户
	GetActiveUser(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// EnsureUser 查找或创建用户
// 并发首次登录时由telegram_id唯一索引兜底：Create冲突后重新查询
func (s *service) EnsureUser(ctx context.Context, p Profile) (*User, error) {
	if p.TelegramID <= 0 {
		return nil, ErrInvalidTelegramID
	}
	p.Username = strings.TrimPrefix(strings.TrimSpace(p.Username), "@")

	u, err := s.repo.FindByTelegramID(ctx, p.TelegramID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		u = NewUser(p)
		if err := s.repo.Create(ctx, u); err != nil {
			existing, findErr := s.repo.FindByTelegramID(ctx, p.TelegramID)
			if findErr != nil {
				return nil, err
			}
			u = existing
		}
	case err != nil:
		return nil, err
	default:
		if u.ApplyProfile(p) {
			if err := s.repo.Update(ctx, u); err != nil {
				return nil, err
			}
		}
	}

	if u.IsBlocked {
		return nil, ErrUserBlocked
	}
	return u, nil
}

// GetActiveUser 获取可下单的用户
func (s *service) GetActiveUser(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.CanOrder() {
		return nil, ErrUserBlocked
	}
	return u, nil
}
