package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/meatshop/internal/domain/cart"
	"github.com/xiebiao/meatshop/internal/domain/product"
)

type memCart struct {
	items map[uint][]*cart.Item
}

func (m *memCart) FindItem(_ context.Context, userID, productID uint) (*cart.Item, error) {
	for _, item := range m.items[userID] {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return nil, nil
}

func (m *memCart) Save(_ context.Context, item *cart.Item) error {
	for _, existing := range m.items[item.UserID] {
		if existing == item {
			return nil
		}
	}
	m.items[item.UserID] = append(m.items[item.UserID], item)
	return nil
}

func (m *memCart) ListByUserID(_ context.Context, userID uint) ([]*cart.Item, error) {
	return m.items[userID], nil
}

func (m *memCart) ClearByUserID(_ context.Context, userID uint) error {
	delete(m.items, userID)
	return nil
}

type memProducts map[uint]*product.Product

func (m memProducts) FindByID(_ context.Context, id uint) (*product.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (m memProducts) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return m.FindByID(ctx, id)
}

func (m memProducts) List(context.Context, product.ListParams) ([]*product.Product, int64, error) {
	return nil, 0, nil
}

func TestAddToCart(t *testing.T) {
	carts := &memCart{items: map[uint][]*cart.Item{}}
	products := memProducts{
		1: {ID: 1, Name: "Говядина", Unit: "кг", Price: 89000, IsActive: true, IsAvailable: true},
		2: {ID: 2, Name: "Баранина", Unit: "кг", Price: 99000, IsActive: true, IsAvailable: false},
	}
	add := NewAddToCartUseCase(carts, products)
	ctx := context.Background()

	dto, err := add.Execute(ctx, AddToCartRequest{UserID: 1, ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(178000), dto.Total)

	t.Run("再次加入累加数量并更新价格", func(t *testing.T) {
		products[1].Price = 90000
		dto, err := add.Execute(ctx, AddToCartRequest{UserID: 1, ProductID: 1, Quantity: 1})
		require.NoError(t, err)
		require.Len(t, dto.Items, 1)
		assert.Equal(t, 3, dto.Items[0].Quantity)
		assert.Equal(t, int64(270000), dto.Total)
	})

	t.Run("超过上限", func(t *testing.T) {
		_, err := add.Execute(ctx, AddToCartRequest{UserID: 1, ProductID: 1, Quantity: 99})
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

		_, err = add.Execute(ctx, AddToCartRequest{UserID: 1, ProductID: 1, Quantity: 0})
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})

	t.Run("缺货商品", func(t *testing.T) {
		_, err := add.Execute(ctx, AddToCartRequest{UserID: 1, ProductID: 2, Quantity: 1})
		assert.ErrorIs(t, err, product.ErrProductUnavailable)
	})

	t.Run("商品不存在", func(t *testing.T) {
		_, err := add.Execute(ctx, AddToCartRequest{UserID: 1, ProductID: 9, Quantity: 1})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("查看和清空", func(t *testing.T) {
		delete(products, 1)
		dto, err := NewListCartUseCase(carts, products).Execute(ctx, 1)
		require.NoError(t, err)
		require.Len(t, dto.Items, 1)
		assert.False(t, dto.Items[0].Available)

		require.NoError(t, NewClearCartUseCase(carts).Execute(ctx, 1))
		dto, err = NewListCartUseCase(carts, products).Execute(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, dto.Items)
	})
}
