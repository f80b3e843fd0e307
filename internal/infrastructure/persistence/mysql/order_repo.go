package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/meatshop/internal/domain/order"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// FieldCipher 字段级加解密（*crypt.Cipher实现）
type FieldCipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

// canonicalOrderNoPattern 只有规范格式的订单号才参与"当天最大序号"的计算
const canonicalOrderNoPattern = "^ORD-[0-9]{8}-[0-9]{4}$"

// orderRepository 订单仓储实现(MySQL)
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 事务通过context传递
// 3. 收货手机号、地址落库前加密,读出时解密
type orderRepository struct {
	db     *gorm.DB
	cipher FieldCipher
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB, cipher FieldCipher) order.Repository {
	return &orderRepository{db: db, cipher: cipher}
}

// LatestOrderNoForDate 查询当天最大的订单号并加行锁
//
//	SELECT order_no FROM orders
//	WHERE order_no LIKE 'ORD-20251021-____' AND order_no REGEXP '^ORD-[0-9]{8}-[0-9]{4}$'
//	ORDER BY order_no DESC LIMIT 1 FOR UPDATE
//
// 序号定长补零,字符串倒序即数值倒序。必须在事务内调用,
// 锁一直持有到事务提交,同一天的并发下单在这里排队。
func (r *orderRepository) LatestOrderNoForDate(ctx context.Context, issueDate time.Time) (string, bool, error) {
	var model OrderModel
	err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("order_no").
		Where("order_no LIKE ?", order.DayPrefix(issueDate)+"-____").
		Where("order_no REGEXP ?", canonicalOrderNoPattern).
		Order("order_no DESC").
		Limit(1).
		Take(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "查询当日订单号失败")
	}
	return model.OrderNo, true, nil
}

// Create 创建订单(包含订单明细)
// 订单号唯一索引冲突时返回order.ErrDuplicateOrderNo
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model, err := r.toOrderModel(o)
	if err != nil {
		return err
	}

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.WithCause(order.ErrDuplicateOrderNo, err)
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := dbFromContext(ctx, r.db).Preload("Items").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return r.toOrderEntity(&model)
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := dbFromContext(ctx, r.db).Preload("Items").Where("order_no = ?", orderNo).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return r.toOrderEntity(&model)
}

// LockByOrderNo 查找并锁定订单(用于状态变更)
func (r *orderRepository) LockByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	db := dbFromContext(ctx, r.db)

	var model OrderModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_no = ?", orderNo).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "锁定订单失败")
	}

	if err := db.Where("order_id = ?", model.ID).Find(&model.Items).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询订单明细失败")
	}
	return r.toOrderEntity(&model)
}

// Update 更新订单状态及相关时间戳(不更新明细)
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := dbFromContext(ctx, r.db).Model(&OrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
		"updated_at":     o.UpdatedAt,
		"confirmed_at":   o.ConfirmedAt,
		"shipped_at":     o.ShippedAt,
		"delivered_at":   o.DeliveredAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// ListByUserID 查询用户的订单列表
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	query := dbFromContext(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		o, err := r.toOrderEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func (r *orderRepository) toOrderModel(o *order.Order) (*OrderModel, error) {
	address, err := r.cipher.Encrypt(o.Delivery.Address)
	if err != nil {
		return nil, apperrors.Wrap(err, "加密收货地址失败")
	}
	phone, err := r.cipher.Encrypt(o.Delivery.Phone)
	if err != nil {
		return nil, apperrors.Wrap(err, "加密手机号失败")
	}

	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductUnit: item.ProductUnit,
			Price:       item.Price,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}

	return &OrderModel{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		Subtotal:        o.Subtotal,
		DeliveryCost:    o.DeliveryCost,
		Total:           o.Total,
		DeliveryAddress: address,
		DeliveryPhone:   phone,
		DeliveryNotes:   o.Delivery.Notes,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ConfirmedAt:     o.ConfirmedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
	}, nil
}

func (r *orderRepository) toOrderEntity(model *OrderModel) (*order.Order, error) {
	address, err := r.cipher.Decrypt(model.DeliveryAddress)
	if err != nil {
		return nil, apperrors.Wrap(err, "解密收货地址失败")
	}
	phone, err := r.cipher.Decrypt(model.DeliveryPhone)
	if err != nil {
		return nil, apperrors.Wrap(err, "解密手机号失败")
	}

	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductUnit: item.ProductUnit,
			Price:       item.Price,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}

	return &order.Order{
		ID:            model.ID,
		OrderNo:       model.OrderNo,
		UserID:        model.UserID,
		Status:        order.OrderStatus(model.Status),
		PaymentStatus: order.PaymentStatus(model.PaymentStatus),
		PaymentMethod: order.PaymentMethod(model.PaymentMethod),
		Subtotal:      model.Subtotal,
		DeliveryCost:  model.DeliveryCost,
		Total:         model.Total,
		Delivery: order.Delivery{
			Address: address,
			Phone:   phone,
			Notes:   model.DeliveryNotes,
		},
		Notes:       model.Notes,
		Items:       items,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		ConfirmedAt: model.ConfirmedAt,
		ShippedAt:   model.ShippedAt,
		DeliveredAt: model.DeliveredAt,
	}, nil
}
