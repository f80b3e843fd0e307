package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层，具体实现在infrastructure/persistence/mysql层
type Repository interface {
	// Create 创建用户
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByTelegramID 根据Telegram ID查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByTelegramID(ctx context.Context, telegramID int64) (*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error
}
