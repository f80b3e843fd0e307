package cart

import (
	"context"
	"errors"

	"github.com/xiebiao/meatshop/internal/domain/cart"
	"github.com/xiebiao/meatshop/internal/domain/product"
)

// AddToCartUseCase 加入购物车
// 同一商品再次加入时累加数量，价格快照更新为当前价格
type AddToCartUseCase struct {
	carts    cart.Repository
	products product.Repository
}

// NewAddToCartUseCase 创建加购用例
func NewAddToCartUseCase(carts cart.Repository, products product.Repository) *AddToCartUseCase {
	return &AddToCartUseCase{carts: carts, products: products}
}

// AddToCartRequest 加购请求
type AddToCartRequest struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// Execute 执行加购
func (uc *AddToCartUseCase) Execute(ctx context.Context, req AddToCartRequest) (*CartDTO, error) {
	if err := cart.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	p, err := uc.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.CanBeOrdered() {
		return nil, product.ErrProductUnavailable
	}

	item, err := uc.carts.FindItem(ctx, req.UserID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item, err = cart.NewItem(req.UserID, req.ProductID, req.Quantity, p.Price)
	} else {
		err = item.Add(req.Quantity, p.Price)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.carts.Save(ctx, item); err != nil {
		return nil, err
	}
	return buildCart(ctx, uc.carts, uc.products, req.UserID)
}

// ListCartUseCase 查看购物车
type ListCartUseCase struct {
	carts    cart.Repository
	products product.Repository
}

// NewListCartUseCase 创建查看用例
func NewListCartUseCase(carts cart.Repository, products product.Repository) *ListCartUseCase {
	return &ListCartUseCase{carts: carts, products: products}
}

// Execute 查看购物车
func (uc *ListCartUseCase) Execute(ctx context.Context, userID uint) (*CartDTO, error) {
	return buildCart(ctx, uc.carts, uc.products, userID)
}

// ClearCartUseCase 清空购物车
type ClearCartUseCase struct {
	carts cart.Repository
}

// NewClearCartUseCase 创建清空用例
func NewClearCartUseCase(carts cart.Repository) *ClearCartUseCase {
	return &ClearCartUseCase{carts: carts}
}

// Execute 清空
func (uc *ClearCartUseCase) Execute(ctx context.Context, userID uint) error {
	return uc.carts.ClearByUserID(ctx, userID)
}

// CartDTO 购物车
type CartDTO struct {
	Items []CartItemDTO `json:"items"`
	Total int64         `json:"total"` // 按加入时价格计算（戈比）
}

// CartItemDTO 购物车明细
type CartItemDTO struct {
	ProductID  uint   `json:"product_id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Quantity   int    `json:"quantity"`
	PriceAtAdd int64  `json:"price_at_add"`
	LineTotal  int64  `json:"line_total"`
	Available  bool   `json:"available"`
}

func buildCart(ctx context.Context, carts cart.Repository, products product.Repository, userID uint) (*CartDTO, error) {
	items, err := carts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dto := &CartDTO{Items: make([]CartItemDTO, 0, len(items)), Total: cart.Total(items)}
	for _, item := range items {
		line := CartItemDTO{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceAtAdd: item.PriceAtAdd,
			LineTotal:  item.LineTotal(),
		}
		p, err := products.FindByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, product.ErrProductNotFound):
			// 商品已删除：保留明细，标记不可下单
		case err != nil:
			return nil, err
		default:
			line.Name = p.Name
			line.Unit = p.Unit
			line.Available = p.CanBeOrdered()
		}
		dto.Items = append(dto.Items, line)
	}
	return dto, nil
}
