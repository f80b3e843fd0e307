package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/meatshop/internal/domain/user"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// userRepository 用户仓储实现（MySQL）
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 手机号加密存储
type userRepository struct {
	db     *gorm.DB
	cipher FieldCipher
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB, cipher FieldCipher) user.Repository {
	return &userRepository{db: db, cipher: cipher}
}

// Create 创建用户
// telegram_id唯一性由数据库UNIQUE索引保证
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model, err := r.toModel(u)
	if err != nil {
		return err
	}

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "用户已存在")
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := dbFromContext(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return r.toEntity(&model)
}

// FindByTelegramID 根据Telegram ID查找用户
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	var model UserModel
	err := dbFromContext(ctx, r.db).Where("telegram_id = ?", telegramID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return r.toEntity(&model)
}

// Update 更新用户信息
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model, err := r.toModel(u)
	if err != nil {
		return err
	}

	// 使用Save更新所有字段
	if err := dbFromContext(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新用户失败")
	}

	u.UpdatedAt = model.UpdatedAt
	return nil
}

// =========================================
// 辅助函数：模型转换
// =========================================

func (r *userRepository) toModel(u *user.User) (*UserModel, error) {
	phone, err := r.cipher.Encrypt(u.Phone)
	if err != nil {
		return nil, apperrors.Wrap(err, "加密手机号失败")
	}
	return &UserModel{
		ID:           u.ID,
		TelegramID:   u.TelegramID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        phone,
		LanguageCode: u.LanguageCode,
		IsActive:     u.IsActive,
		IsBlocked:    u.IsBlocked,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func (r *userRepository) toEntity(model *UserModel) (*user.User, error) {
	phone, err := r.cipher.Decrypt(model.Phone)
	if err != nil {
		return nil, apperrors.Wrap(err, "解密手机号失败")
	}
	return &user.User{
		ID:           model.ID,
		TelegramID:   model.TelegramID,
		Username:     model.Username,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Phone:        phone,
		LanguageCode: model.LanguageCode,
		IsActive:     model.IsActive,
		IsBlocked:    model.IsBlocked,
		IsAdmin:      model.IsAdmin,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}
