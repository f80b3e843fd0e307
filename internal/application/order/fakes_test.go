package order

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xiebiao/meatshop/internal/domain/cart"
	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/internal/domain/product"
	"github.com/xiebiao/meatshop/internal/domain/user"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

var canonicalOrderNo = regexp.MustCompile(`^ORD-[0-9]{8}-[0-9]{4}$`)

// memStore 内存版仓储
// Transaction用一把全局锁串行化事务，出错时回滚到事务开始前的快照，
// 效果等同于MySQL里 SELECT ... FOR UPDATE 让同一天的下单排队
type memStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	orders   map[string]*order.Order
	nextID   uint
	carts    map[uint][]*cart.Item
	products map[uint]*product.Product
	users    map[uint]*user.User

	// createHook 在写入订单前调用，用于注入冲突
	createHook func(o *order.Order) error
	findCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[string]*order.Order{},
		carts:    map[uint][]*cart.Item{},
		products: map[uint]*product.Product{},
		users:    map[uint]*user.User{},
	}
}

type snapshot struct {
	orders map[string]*order.Order
	carts  map[uint][]*cart.Item
	nextID uint
}

func (s *memStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := snapshot{orders: map[string]*order.Order{}, carts: map[uint][]*cart.Item{}, nextID: s.nextID}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = append([]*cart.Item(nil), v...)
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.orders, s.carts, s.nextID = snap.orders, snap.carts, snap.nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.OrderItem(nil), o.Items...)
	return &c
}

// --- order.Repository ---

func (s *memStore) LatestOrderNoForDate(_ context.Context, issueDate time.Time) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := order.DayPrefix(issueDate) + "-"
	latest := ""
	for no := range s.orders {
		if strings.HasPrefix(no, prefix) && canonicalOrderNo.MatchString(no) && no > latest {
			latest = no
		}
	}
	return latest, latest != "", nil
}

func (s *memStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createHook != nil {
		if err := s.createHook(o); err != nil {
			return err
		}
	}
	if _, ok := s.orders[o.OrderNo]; ok {
		return apperrors.WithCause(order.ErrDuplicateOrderNo, errors.New("Duplicate entry for key 'uk_order_no'"))
	}
	s.nextID++
	o.ID = s.nextID
	s.orders[o.OrderNo] = cloneOrder(o)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uint) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (s *memStore) FindByOrderNo(_ context.Context, orderNo string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	o, ok := s.orders[orderNo]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *memStore) LockByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return s.FindByOrderNo(ctx, orderNo)
}

func (s *memStore) Update(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.OrderNo]; !ok {
		return order.ErrOrderNotFound
	}
	s.orders[o.OrderNo] = cloneOrder(o)
	return nil
}

func (s *memStore) ListByUserID(_ context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []*order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			list = append(list, cloneOrder(o))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })

	total := int64(len(list))
	from := (page - 1) * pageSize
	if from >= len(list) {
		return nil, total, nil
	}
	to := from + pageSize
	if to > len(list) {
		to = len(list)
	}
	return list[from:to], total, nil
}

// orderNos 已保存的全部订单号
func (s *memStore) orderNos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	nos := make([]string, 0, len(s.orders))
	for no := range s.orders {
		nos = append(nos, no)
	}
	sort.Strings(nos)
	return nos
}

// --- cart.Repository ---

type memCarts struct{ *memStore }

func (c memCarts) FindItem(_ context.Context, userID, productID uint) (*cart.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.carts[userID] {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return nil, nil
}

func (c memCarts) Save(_ context.Context, item *cart.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.carts[item.UserID] {
		if existing.ProductID == item.ProductID {
			c.carts[item.UserID][i] = item
			return nil
		}
	}
	c.carts[item.UserID] = append(c.carts[item.UserID], item)
	return nil
}

func (c memCarts) ListByUserID(_ context.Context, userID uint) ([]*cart.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*cart.Item(nil), c.carts[userID]...), nil
}

func (c memCarts) ClearByUserID(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, userID)
	return nil
}

// --- product.Repository ---

type memProducts struct{ *memStore }

func (p memProducts) FindByID(_ context.Context, id uint) (*product.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	c := *pr
	return &c, nil
}

func (p memProducts) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return p.FindByID(ctx, id)
}

func (p memProducts) List(context.Context, product.ListParams) ([]*product.Product, int64, error) {
	return nil, 0, nil
}

// --- user.Service ---

type memUsers struct{ *memStore }

func (u memUsers) EnsureUser(context.Context, user.Profile) (*user.User, error) {
	return nil, errors.New("not implemented")
}

func (u memUsers) GetActiveUser(_ context.Context, id uint) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if !usr.CanOrder() {
		return nil, user.ErrUserBlocked
	}
	return usr, nil
}

// --- OrderCache ---

type memCache struct {
	mu      sync.Mutex
	data    map[string]*order.Order
	gets    int
	deletes []string
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{data: map[string]*order.Order{}}
}

func (c *memCache) Get(_ context.Context, orderNo string) (*order.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	if o, ok := c.data[orderNo]; ok {
		return cloneOrder(o), nil
	}
	return nil, nil
}

func (c *memCache) Set(_ context.Context, o *order.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[o.OrderNo] = cloneOrder(o)
	return nil
}

func (c *memCache) Delete(_ context.Context, orderNo string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, orderNo)
	c.deletes = append(c.deletes, orderNo)
	return nil
}

// --- EventPublisher ---

type recordingPublisher struct {
	mu      sync.Mutex
	err     error
	created []string
	changed []string
}

func (p *recordingPublisher) OrderCreated(_ context.Context, o *order.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, o.OrderNo)
	return nil
}

func (p *recordingPublisher) OrderStatusChanged(_ context.Context, o *order.Order, from order.OrderStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.changed = append(p.changed, string(from)+"->"+string(o.Status))
	return nil
}
