package order

import (
	"context"
	"time"
)

// SeedSource 订单号历史查询（由仓储实现）
//
// LatestOrderNoForDate 返回issueDate当天已分配的最大序号对应的订单号；
// 当天还没有订单时返回("", false, nil)。
// 必须在调用方的事务内执行，并锁定读到的行（SELECT ... FOR UPDATE），
// 这样"读最大序号"和"插入新订单"才能串行化。
type SeedSource interface {
	LatestOrderNoForDate(ctx context.Context, issueDate time.Time) (orderNo string, found bool, err error)
}

// SeedOutcome 本次分配的种子来源
type SeedOutcome int

const (
	// SeedNone 当天第一单，从1开始
	SeedNone SeedOutcome = iota
	// SeedParsed 在当天最大订单号的基础上+1
	SeedParsed
	// SeedFallback 历史订单号无法解析，按当天第一单处理
	SeedFallback
)

// String 实现Stringer接口(用于日志和指标标签)
func (o SeedOutcome) String() string {
	switch o {
	case SeedNone:
		return "none"
	case SeedParsed:
		return "parsed"
	case SeedFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Allocation 一次订单号分配的结果
type Allocation struct {
	Number  OrderNumber
	Outcome SeedOutcome
	Seed    string // 作为种子的历史订单号（SeedNone时为空）
}

// NextSequence 根据种子计算下一个序号
//
// 规则:
//  1. 没有种子 → 1
//  2. 种子是合法订单号且属于同一天 → 种子序号+1
//  3. 种子无法解析（脏数据、旧格式）或日期不符 → 1，结果标记为SeedFallback
//
// 第3条是有意的降级：历史脏数据不能阻塞新订单。代价是可能与已存在的
// 订单号重复，此时由orders.order_no唯一索引拦截。
func NextSequence(seed string, found bool, issueDate time.Time) (int, SeedOutcome) {
	if !found {
		return 1, SeedNone
	}

	n, err := ParseOrderNumber(seed)
	if err != nil || !n.IssueDate().Equal(DateOf(issueDate)) {
		return 1, SeedFallback
	}
	return n.Sequence() + 1, SeedParsed
}

// Allocator 订单号分配器
//
// 本身无状态：每次分配都重新查询历史，并发安全依赖调用方的事务
// （见SeedSource注释）。分配器不负责持久化新订单号。
type Allocator struct {
	seeds SeedSource
}

// NewAllocator 创建订单号分配器
func NewAllocator(seeds SeedSource) *Allocator {
	return &Allocator{seeds: seeds}
}

// Next 为currentDate分配下一个订单号
//
// 错误:
//   - 历史查询失败：原样返回（本次下单失败，分配器内部不重试）
//   - 当天序号超过9999：ErrSequenceExhausted
func (a *Allocator) Next(ctx context.Context, currentDate time.Time) (Allocation, error) {
	issueDate := DateOf(currentDate)

	seed, found, err := a.seeds.LatestOrderNoForDate(ctx, issueDate)
	if err != nil {
		return Allocation{}, err
	}

	seq, outcome := NextSequence(seed, found, issueDate)

	number, err := NewOrderNumber(issueDate, seq)
	if err != nil {
		return Allocation{}, err
	}

	return Allocation{Number: number, Outcome: outcome, Seed: seed}, nil
}
