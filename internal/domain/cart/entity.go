package cart

import (
	"time"
)

const (
	// MinQuantity 单行最小数量
	MinQuantity = 1
	// MaxQuantity 单行最大数量
	MaxQuantity = 99
)

// Item 购物车明细
// PriceAtAdd 是加入购物车时的单价快照(戈比),下单时按此价格计算金额
type Item struct {
	ID         uint
	UserID     uint
	ProductID  uint
	Quantity   int
	PriceAtAdd int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewItem 创建购物车明细
func NewItem(userID, productID uint, quantity int, price int64) (*Item, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Item{
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
		PriceAtAdd: price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Add 累加数量,价格快照更新为最新价格
func (i *Item) Add(quantity int, price int64) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if err := ValidateQuantity(i.Quantity + quantity); err != nil {
		return err
	}
	i.Quantity += quantity
	i.PriceAtAdd = price
	i.UpdatedAt = time.Now()
	return nil
}

// LineTotal 行金额
func (i *Item) LineTotal() int64 {
	return i.PriceAtAdd * int64(i.Quantity)
}

// ValidateQuantity 校验数量范围
func ValidateQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// Total 购物车合计
func Total(items []*Item) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
