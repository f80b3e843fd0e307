package mysql

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apporder "github.com/xiebiao/meatshop/internal/application/order"
	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/internal/domain/user"
	"github.com/xiebiao/meatshop/internal/infrastructure/messaging"
	"github.com/xiebiao/meatshop/pkg/clock"
	"github.com/xiebiao/meatshop/pkg/crypt"
)

// 需要真实MySQL：
//
//	MEATSHOP_TEST_MYSQL_DSN='root:root@tcp(localhost:3306)/meatshop_test?charset=utf8mb4&parseTime=true&loc=UTC' go test ./internal/infrastructure/persistence/mysql/
func openTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("MEATSHOP_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("未设置MEATSHOP_TEST_MYSQL_DSN，跳过MySQL集成测试")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, autoMigrate(db))

	for _, table := range []string{"order_items", "orders", "cart_items", "products", "users"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

type nopOrderCache struct{}

func (nopOrderCache) Get(context.Context, string) (*order.Order, error) { return nil, nil }
func (nopOrderCache) Set(context.Context, *order.Order) error          { return nil }
func (nopOrderCache) Delete(context.Context, string) error             { return nil }

func TestOrderRepository_LatestOrderNoForDate(t *testing.T) {
	db := openTestDB(t)
	cipher, err := crypt.NewCipher("integration")
	require.NoError(t, err)
	repo := NewOrderRepository(db, cipher)
	tx := NewTxManager(db)
	ctx := context.Background()

	for _, no := range []string{"ORD-20251021-0007", "ORD-20251021-0012", "ORD-20251021-99X9", "ORD-20251022-0500"} {
		require.NoError(t, db.Create(&OrderModel{OrderNo: no, UserID: 1, PaymentMethod: "cash"}).Error)
	}

	day := time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC)
	err = tx.Transaction(ctx, func(ctx context.Context) error {
		latest, found, err := repo.LatestOrderNoForDate(ctx, day)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "ORD-20251021-0012", latest, "格式不规范的订单号不参与比较")
		return nil
	})
	require.NoError(t, err)

	_, found, err := repo.LatestOrderNoForDate(ctx, day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	cipher, err := crypt.NewCipher("integration")
	require.NoError(t, err)
	repo := NewOrderRepository(db, cipher)
	ctx := context.Background()

	delivery, err := order.NewDelivery("г. Москва, ул. Ленина, д. 1", "+79123456789", "")
	require.NoError(t, err)
	items := []order.OrderItem{{ProductID: 1, ProductName: "Говядина", ProductUnit: "кг", Price: 89000, Quantity: 2}}
	o := order.NewOrder("ORD-20251021-0001", 1, items, delivery, order.PaymentMethodCash, order.PaymentStatusPending, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, o))
	assert.NotZero(t, o.ID)

	var raw OrderModel
	require.NoError(t, db.Where("order_no = ?", o.OrderNo).Take(&raw).Error)
	assert.NotEqual(t, "+79123456789", raw.DeliveryPhone, "手机号密文存储")

	found, err := repo.FindByOrderNo(ctx, o.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, "+79123456789", found.Delivery.Phone)
	assert.Equal(t, int64(178000), found.Total)
	require.Len(t, found.Items, 1)

	dup := order.NewOrder("ORD-20251021-0001", 2, items, delivery, order.PaymentMethodCash, order.PaymentStatusPending, time.Now().UTC())
	assert.ErrorIs(t, repo.Create(ctx, dup), order.ErrDuplicateOrderNo)

	_, err = repo.FindByOrderNo(ctx, "ORD-20251021-0002")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

// TestCreateOrder_ConcurrentMySQL 并发下单，订单号互不相同且连续
func TestCreateOrder_ConcurrentMySQL(t *testing.T) {
	const n = 20
	db := openTestDB(t)
	cipher, err := crypt.NewCipher("integration")
	require.NoError(t, err)

	require.NoError(t, db.Create(&ProductModel{ID: 1, CategoryID: 1, Name: "Говядина", Unit: "кг", Price: 89000, IsActive: true, IsAvailable: true}).Error)
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&UserModel{ID: uint(i), TelegramID: int64(5000 + i), IsActive: true}).Error)
		require.NoError(t, db.Create(&CartItemModel{UserID: uint(i), ProductID: 1, Quantity: 1, PriceAtAdd: 89000}).Error)
	}

	products := NewProductRepository(db)
	uc := apporder.NewCreateOrderUseCase(
		NewTxManager(db),
		user.NewService(NewUserRepository(db, cipher)),
		NewCartRepository(db),
		products,
		NewOrderRepository(db, cipher),
		nopOrderCache{},
		messaging.NewNoopPublisher(zap.NewNop()),
		clock.NewFixed(time.Date(2025, 10, 21, 12, 0, 0, 0, time.UTC)),
		10,
		zap.NewNop(),
	)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), apporder.CreateOrderRequest{
				UserID:        id,
				Address:       "г. Москва, ул. Ленина, д. 1",
				Phone:         "+79123456789",
				PaymentMethod: "card",
			})
			errs <- err
		}(uint(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var nos []string
	require.NoError(t, db.Model(&OrderModel{}).Order("order_no").Pluck("order_no", &nos).Error)
	require.Len(t, nos, n)
	for i, no := range nos {
		assert.Equal(t, fmt.Sprintf("ORD-20251021-%04d", i+1), no)
	}

	var left int64
	require.NoError(t, db.Model(&CartItemModel{}).Count(&left).Error)
	assert.Zero(t, left, "购物车全部清空")
}
