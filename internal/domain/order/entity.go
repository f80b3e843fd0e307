package order

import (
	"time"
)

// OrderStatus 订单状态
// 使用字符串存储（与历史数据库中的枚举值一致）
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // 待处理
	OrderStatusConfirmed  OrderStatus = "confirmed"  // 已确认
	OrderStatusProcessing OrderStatus = "processing" // 备货中
	OrderStatusShipped    OrderStatus = "shipped"    // 配送中
	OrderStatusDelivered  OrderStatus = "delivered"  // 已送达
	OrderStatusCancelled  OrderStatus = "cancelled"  // 已取消
	OrderStatusRefunded   OrderStatus = "refunded"   // 已退款
)

// Valid 是否为已知状态
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ParsePaymentStatus 解析下单时允许的支付状态（pending/paid）
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case "":
		return PaymentStatusPending, nil
	case PaymentStatusPending, PaymentStatusPaid:
		return PaymentStatus(s), nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"     // 银行卡
	PaymentMethodCash     PaymentMethod = "cash"     // 货到付款
	PaymentMethodTransfer PaymentMethod = "transfer" // 转账
)

// ParsePaymentMethod 解析支付方式
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodTransfer:
		return PaymentMethod(s), nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// Delivery 收货信息（已校验、已规范化）
type Delivery struct {
	Address string
	Phone   string // +7XXXXXXXXXX
	Notes   string
}

// Order 订单实体(聚合根)
// 金额单位：戈比（1卢布=100戈比），避免浮点误差
type Order struct {
	ID            uint
	OrderNo       string // ORD-YYYYMMDD-NNNN，业务主键
	UserID        uint
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Subtotal      int64
	DeliveryCost  int64
	Total         int64
	Delivery      Delivery
	Notes         string
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ConfirmedAt   *time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
}

// OrderItem 订单明细项
// 保存下单时的商品快照（名称、单位、单价），商品后续改价不影响历史订单
type OrderItem struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string
	ProductUnit string
	Price       int64
	Quantity    int
	LineTotal   int64
}

// NewOrder 创建新订单(工厂方法)
// 订单号由Allocator分配后传入，初始状态为pending
func NewOrder(orderNo string, userID uint, items []OrderItem, delivery Delivery, method PaymentMethod, payStatus PaymentStatus, now time.Time) *Order {
	for i := range items {
		items[i].LineTotal = items[i].Price * int64(items[i].Quantity)
	}
	o := &Order{
		OrderNo:       orderNo,
		UserID:        userID,
		Status:        OrderStatusPending,
		PaymentStatus: payStatus,
		PaymentMethod: method,
		Delivery:      delivery,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.Subtotal = o.CalculateSubtotal()
	o.Total = o.Subtotal + o.DeliveryCost
	return o
}

// transitions 合法的状态流转
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换，并记录对应的时间戳
func (o *Order) TransitionTo(target OrderStatus, now time.Time) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusRefunded:
		o.PaymentStatus = PaymentStatusRefunded
	}
	return nil
}

// CalculateSubtotal 按明细计算商品金额
func (o *Order) CalculateSubtotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// IssueDate 订单号中的下单日期
func (o *Order) IssueDate() (time.Time, bool) {
	return ExtractIssueDate(o.OrderNo)
}
