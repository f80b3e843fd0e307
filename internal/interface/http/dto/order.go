package dto

// CreateOrderRequest 下单（商品来自购物车）
type CreateOrderRequest struct {
	Address       string `json:"delivery_address" binding:"required,min=10,max=500"`
	Phone         string `json:"delivery_phone" binding:"required,max=32"`
	DeliveryNotes string `json:"delivery_notes" binding:"max=200"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=card cash transfer"`
	PaymentStatus string `json:"payment_status" binding:"omitempty,oneof=pending paid"`
}

// UpdateOrderStatusRequest 管理员变更订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PageQuery 分页参数
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
