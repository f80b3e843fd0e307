package product

import (
	"time"
)

// Product 商品实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"戈比"为单位(1卢布=100戈比,避免浮点数精度问题)
// 2. IsActive表示是否上架,IsAvailable表示当前是否有货
// 3. Unit是计价单位(кг、шт等),下单时作为快照写入订单明细
type Product struct {
	ID          uint
	CategoryID  uint
	Name        string
	Description string
	Unit        string // 计价单位
	Price       int64  // 单价(戈比)
	IsActive    bool   // 是否上架
	IsAvailable bool   // 是否有货
	SortOrder   int    // 展示顺序(越小越靠前)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct 创建新商品(工厂方法)
func NewProduct(categoryID uint, name, description, unit string, price int64, sortOrder int) *Product {
	now := time.Now()
	return &Product{
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
		Unit:        unit,
		Price:       price,
		IsActive:    true,
		IsAvailable: true,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanBeOrdered 是否可以下单
func (p *Product) CanBeOrdered() bool {
	return p.IsActive && p.IsAvailable
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0
func (p *Product) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	p.Price = newPrice
	p.UpdatedAt = time.Now()
	return nil
}

// SetAvailability 标记有货/缺货
func (p *Product) SetAvailability(available bool) {
	p.IsAvailable = available
	p.UpdatedAt = time.Now()
}
