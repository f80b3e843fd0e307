package order

import (
	"context"
	"time"

	"github.com/xiebiao/meatshop/internal/domain/order"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ListOrdersUseCase 我的订单列表
type ListOrdersUseCase struct {
	orders order.Repository
	loc    *time.Location
}

// NewListOrdersUseCase 创建列表用例
func NewListOrdersUseCase(orders order.Repository, loc *time.Location) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders, loc: loc}
}

// ListOrdersRequest 列表请求
type ListOrdersRequest struct {
	UserID   uint
	Page     int
	PageSize int
}

// ListOrdersResponse 列表响应
type ListOrdersResponse struct {
	List     []OrderSummaryDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 查询列表（按下单时间倒序）
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	orders, total, err := uc.orders.ListByUserID(ctx, req.UserID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]OrderSummaryDTO, len(orders))
	for i, o := range orders {
		list[i] = toSummaryDTO(o, uc.loc)
	}

	return &ListOrdersResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
