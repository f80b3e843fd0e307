package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/meatshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. TranslateError=true：唯一索引冲突统一转换为gorm.ErrDuplicatedKey
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			// 时间戳统一存UTC，"当天"由业务层按配置时区计算
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	// 自动迁移表结构（开发环境）
	// 生产环境应使用版本化的迁移脚本
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// UserModel GORM用户模型
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	TelegramID   int64     `gorm:"uniqueIndex;not null;comment:Telegram用户ID"`
	Username     string    `gorm:"size:64;comment:Telegram用户名"`
	FirstName    string    `gorm:"size:128"`
	LastName     string    `gorm:"size:128"`
	Phone        string    `gorm:"size:255;comment:手机号(加密)"`
	LanguageCode string    `gorm:"size:8"`
	IsActive     bool      `gorm:"default:true"`
	IsBlocked    bool      `gorm:"index;default:false"`
	IsAdmin      bool      `gorm:"default:false"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 价格使用int64存储"戈比"
type ProductModel struct {
	ID          uint      `gorm:"primaryKey"`
	CategoryID  uint      `gorm:"index:idx_catalog;not null;comment:分类ID"`
	Name        string    `gorm:"size:200;not null;comment:商品名"`
	Description string    `gorm:"type:text"`
	Unit        string    `gorm:"size:16;not null;default:'кг';comment:计价单位"`
	Price       int64     `gorm:"not null;comment:单价(戈比)"`
	IsActive    bool      `gorm:"index:idx_catalog;default:true;comment:是否上架"`
	IsAvailable bool      `gorm:"default:true;comment:是否有货"`
	SortOrder   int       `gorm:"index:idx_catalog;default:0"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// CartItemModel GORM购物车明细模型
// (user_id, product_id)唯一：同一商品只占一行，重复加入时累加数量
type CartItemModel struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"uniqueIndex:uk_user_product;not null"`
	ProductID  uint      `gorm:"uniqueIndex:uk_user_product;not null"`
	Quantity   int       `gorm:"not null"`
	PriceAtAdd int64     `gorm:"not null;comment:加入时单价(戈比)"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// OrderModel GORM订单模型
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引：并发分配出相同订单号时，后提交的事务在这里失败
// 3. 收货手机号、地址为密文
type OrderModel struct {
	ID              uint             `gorm:"primaryKey"`
	OrderNo         string           `gorm:"uniqueIndex;size:32;not null;comment:订单号ORD-YYYYMMDD-NNNN"`
	UserID          uint             `gorm:"index;not null;comment:下单用户ID"`
	Status          string           `gorm:"index;size:20;not null;default:'pending'"`
	PaymentStatus   string           `gorm:"size:20;not null;default:'pending'"`
	PaymentMethod   string           `gorm:"size:20;not null"`
	Subtotal        int64            `gorm:"not null;comment:商品金额(戈比)"`
	DeliveryCost    int64            `gorm:"not null;default:0;comment:运费(戈比)"`
	Total           int64            `gorm:"not null;comment:订单总金额(戈比)"`
	DeliveryAddress string           `gorm:"type:text;comment:收货地址(加密)"`
	DeliveryPhone   string           `gorm:"size:255;comment:收货手机号(加密)"`
	DeliveryNotes   string           `gorm:"type:text"`
	Notes           string           `gorm:"type:text"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time        `gorm:"comment:更新时间"`
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 记录下单时的商品快照
type OrderItemModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index;not null;comment:订单ID"`
	ProductID   uint   `gorm:"index;not null;comment:商品ID"`
	ProductName string `gorm:"size:200;not null"`
	ProductUnit string `gorm:"size:16;not null"`
	Price       int64  `gorm:"not null;comment:下单时单价(戈比)"`
	Quantity    int    `gorm:"not null"`
	LineTotal   int64  `gorm:"not null"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
