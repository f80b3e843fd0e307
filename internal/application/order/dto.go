package order

import (
	"fmt"
	"time"

	"github.com/xiebiao/meatshop/internal/domain/order"
)

const timeLayout = "2006-01-02 15:04:05"

// OrderDTO 订单详情
// 金额单位为戈比，*_rub字段是格式化后的卢布金额
type OrderDTO struct {
	ID            uint           `json:"id"`
	OrderNo       string         `json:"order_no"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	PaymentMethod string         `json:"payment_method"`
	Subtotal      int64          `json:"subtotal"`
	DeliveryCost  int64          `json:"delivery_cost"`
	Total         int64          `json:"total"`
	TotalRub      string         `json:"total_rub"`
	Address       string         `json:"delivery_address"`
	Phone         string         `json:"delivery_phone"`
	DeliveryNotes string         `json:"delivery_notes,omitempty"`
	Items         []OrderItemDTO `json:"items"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	ConfirmedAt   string         `json:"confirmed_at,omitempty"`
	ShippedAt     string         `json:"shipped_at,omitempty"`
	DeliveredAt   string         `json:"delivered_at,omitempty"`
}

// OrderItemDTO 订单明细
type OrderItemDTO struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
}

// OrderSummaryDTO 订单列表项（不含收货信息）
type OrderSummaryDTO struct {
	OrderNo   string `json:"order_no"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	TotalRub  string `json:"total_rub"`
	ItemCount int    `json:"item_count"`
	CreatedAt string `json:"created_at"`
}

// toOrderDTO 时间按loc（业务时区）格式化
func toOrderDTO(o *order.Order, loc *time.Location) *OrderDTO {
	items := make([]OrderItemDTO, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Unit:        item.ProductUnit,
			Price:       item.Price,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}

	return &OrderDTO{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		Subtotal:      o.Subtotal,
		DeliveryCost:  o.DeliveryCost,
		Total:         o.Total,
		TotalRub:      formatRub(o.Total),
		Address:       o.Delivery.Address,
		Phone:         o.Delivery.Phone,
		DeliveryNotes: o.Delivery.Notes,
		Items:         items,
		CreatedAt:     o.CreatedAt.In(loc).Format(timeLayout),
		UpdatedAt:     o.UpdatedAt.In(loc).Format(timeLayout),
		ConfirmedAt:   formatOptional(o.ConfirmedAt, loc),
		ShippedAt:     formatOptional(o.ShippedAt, loc),
		DeliveredAt:   formatOptional(o.DeliveredAt, loc),
	}
}

func toSummaryDTO(o *order.Order, loc *time.Location) OrderSummaryDTO {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderSummaryDTO{
		OrderNo:   o.OrderNo,
		Status:    string(o.Status),
		Total:     o.Total,
		TotalRub:  formatRub(o.Total),
		ItemCount: count,
		CreatedAt: o.CreatedAt.In(loc).Format(timeLayout),
	}
}

func formatOptional(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(timeLayout)
}

// formatRub 戈比→卢布
func formatRub(kopecks int64) string {
	return fmt.Sprintf("%d.%02d", kopecks/100, kopecks%100)
}
