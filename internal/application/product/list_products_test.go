package product

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/product"
)

type stubRepo struct {
	calls int
	last  product.ListParams
	items []*product.Product
}

func (r *stubRepo) FindByID(context.Context, uint) (*product.Product, error) {
	return nil, product.ErrProductNotFound
}

func (r *stubRepo) LockByID(context.Context, uint) (*product.Product, error) {
	return nil, product.ErrProductNotFound
}

func (r *stubRepo) List(_ context.Context, p product.ListParams) ([]*product.Product, int64, error) {
	r.calls++
	r.last = p
	return r.items, int64(len(r.items)), nil
}

type mapCache map[string][]byte

func (c mapCache) GetJSON(key string, dest interface{}) (bool, error) {
	b, ok := c[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c mapCache) SetJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	c[key] = b
	return err
}

func TestListProducts(t *testing.T) {
	repo := &stubRepo{items: []*product.Product{
		{ID: 1, Name: "Говядина", Unit: "кг", Price: 89050, IsActive: true, IsAvailable: true},
		{ID: 2, Name: "Фарш", Unit: "кг", Price: 52000, IsActive: true, IsAvailable: false},
	}}
	uc := NewListProductsUseCase(repo, mapCache{}, zap.NewNop())

	resp, err := uc.Execute(context.Background(), ListProductsRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.last.Page)
	assert.Equal(t, maxPageSize, repo.last.PageSize)
	require.Len(t, resp.List, 2)
	assert.Equal(t, "890.50", resp.List[0].PriceRub)
	assert.False(t, resp.List[1].Available)

	t.Run("第二次命中缓存", func(t *testing.T) {
		again, err := uc.Execute(context.Background(), ListProductsRequest{PageSize: 500})
		require.NoError(t, err)
		assert.Equal(t, 1, repo.calls)
		assert.Equal(t, resp.List, again.List)
	})

	t.Run("不同分类分开缓存", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), ListProductsRequest{CategoryID: 3})
		require.NoError(t, err)
		assert.Equal(t, 2, repo.calls)
		assert.Equal(t, uint(3), repo.last.CategoryID)
	})
}
