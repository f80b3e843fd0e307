package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/meatshop/internal/domain/cart"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// FindItem 查找购物车明细,不存在时返回(nil, nil)
func (r *cartRepository) FindItem(ctx context.Context, userID, productID uint) (*cart.Item, error) {
	var model CartItemModel
	err := dbFromContext(ctx, r.db).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// Save 新增或更新明细
func (r *cartRepository) Save(ctx context.Context, item *cart.Item) error {
	model := &CartItemModel{
		ID:         item.ID,
		UserID:     item.UserID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		PriceAtAdd: item.PriceAtAdd,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
	if err := dbFromContext(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "保存购物车失败")
	}
	item.ID = model.ID
	return nil
}

// ListByUserID 用户购物车明细
func (r *cartRepository) ListByUserID(ctx context.Context, userID uint) ([]*cart.Item, error) {
	var models []CartItemModel
	err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	items := make([]*cart.Item, len(models))
	for i := range models {
		items[i] = toCartEntity(&models[i])
	}
	return items, nil
}

// ClearByUserID 清空购物车
func (r *cartRepository) ClearByUserID(ctx context.Context, userID uint) error {
	if err := dbFromContext(ctx, r.db).Where("user_id = ?", userID).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}

func toCartEntity(model *CartItemModel) *cart.Item {
	return &cart.Item{
		ID:         model.ID,
		UserID:     model.UserID,
		ProductID:  model.ProductID,
		Quantity:   model.Quantity,
		PriceAtAdd: model.PriceAtAdd,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
