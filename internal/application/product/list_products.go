package product

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/domain/product"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Cache 进程内缓存（cache.Local实现）
type Cache interface {
	GetJSON(key string, dest interface{}) (bool, error)
	SetJSON(key string, v interface{}) error
}

// ListProductsUseCase 商品目录（只返回上架商品）
// 目录读多写少，按分页参数缓存在本地，过期时间见cache.life_window
type ListProductsUseCase struct {
	products product.Repository
	cache    Cache
	log      *zap.Logger
}

// NewListProductsUseCase 创建目录查询用例
func NewListProductsUseCase(products product.Repository, cache Cache, log *zap.Logger) *ListProductsUseCase {
	return &ListProductsUseCase{products: products, cache: cache, log: log}
}

// ListProductsRequest 查询参数
type ListProductsRequest struct {
	Page       int
	PageSize   int
	CategoryID uint
}

// ProductDTO 商品
type ProductDTO struct {
	ID          uint   `json:"id"`
	CategoryID  uint   `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"` // 戈比
	PriceRub    string `json:"price_rub"`
	Available   bool   `json:"available"`
}

// ListProductsResponse 查询结果
type ListProductsResponse struct {
	List     []ProductDTO `json:"list"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Execute 查询目录，优先读缓存
func (uc *ListProductsUseCase) Execute(ctx context.Context, req ListProductsRequest) (*ListProductsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	key := fmt.Sprintf("catalog:%d:%d:%d", req.CategoryID, req.Page, req.PageSize)

	var cached ListProductsResponse
	if hit, err := uc.cache.GetJSON(key, &cached); err != nil {
		uc.log.Warn("读取目录缓存失败", zap.String("key", key), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	products, total, err := uc.products.List(ctx, product.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	resp := &ListProductsResponse{
		List:     make([]ProductDTO, len(products)),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	for i, p := range products {
		resp.List[i] = ProductDTO{
			ID:          p.ID,
			CategoryID:  p.CategoryID,
			Name:        p.Name,
			Description: p.Description,
			Unit:        p.Unit,
			Price:       p.Price,
			PriceRub:    fmt.Sprintf("%d.%02d", p.Price/100, p.Price%100),
			Available:   p.IsAvailable,
		}
	}

	if err := uc.cache.SetJSON(key, resp); err != nil {
		uc.log.Warn("写入目录缓存失败", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}
