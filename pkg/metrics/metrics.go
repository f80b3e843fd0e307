// Package metrics Prometheus指标
//
// 指标类型选择：
//   - Counter：只增不减的累计值（请求数、订单数、重试次数）
//   - Gauge：可增可减的瞬时值（处理中的请求数、熔断器状态）
//   - Histogram：观测值分布（请求耗时、下单耗时）
//
// 标签只使用有限取值的维度（method、path、outcome），不要用user_id、order_no。
//
// 使用示例：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.RecordOrderNumberMinted("parsed")
//	metrics.RecordOrderCreated(time.Since(start))
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数，标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时，标签：method、path
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// RateLimitedTotal 被限流拒绝的请求数，标签：role（user/admin/anonymous）
	RateLimitedTotal *prometheus.CounterVec

	// 下单指标

	// OrdersCreatedTotal 订单创建总数
	OrdersCreatedTotal prometheus.Counter

	// OrdersFailedTotal 订单创建失败总数，标签：reason
	OrdersFailedTotal *prometheus.CounterVec

	// OrderCreationDuration 订单创建耗时（含重试）
	OrderCreationDuration prometheus.Histogram

	// OrdersInProgress 正在处理的下单请求数
	OrdersInProgress prometheus.Gauge

	// OrderNumbersMintedTotal 分配的订单号数量，标签：outcome（none/parsed/fallback）
	// fallback持续增长说明orders表里有不规范的历史订单号
	OrderNumbersMintedTotal *prometheus.CounterVec

	// OrderAllocationRetriesTotal 订单号冲突或死锁导致的整笔事务重试次数
	OrderAllocationRetriesTotal prometheus.Counter

	// OrderStatusTransitionsTotal 订单状态变更次数，标签：to
	OrderStatusTransitionsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数，标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数，标签：exchange、routing_key
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数，标签：queue、result
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 注册所有指标到默认Registry（可重复调用）
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "被限流拒绝的请求数",
		},
		[]string{"role"},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "订单创建总数",
		},
	)

	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "订单创建失败总数",
		},
		[]string{"reason"},
	)

	OrderCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_creation_duration_seconds",
			Help:    "订单创建耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	OrdersInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_in_progress",
			Help: "正在处理的下单请求数",
		},
	)

	OrderNumbersMintedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_numbers_minted_total",
			Help: "分配的订单号数量（按种子来源）",
		},
		[]string{"outcome"},
	)

	OrderAllocationRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_allocation_retries_total",
			Help: "订单号冲突或死锁导致的下单重试次数",
		},
	)

	OrderStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "订单状态变更次数",
		},
		[]string{"to"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// =========================================
// 业务埋点
// =========================================

// RecordHTTPRequest 记录一次HTTP请求
func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordRateLimited 记录一次限流拒绝
func RecordRateLimited(role string) {
	InitMetrics()
	RateLimitedTotal.WithLabelValues(role).Inc()
}

// OrderStarted 下单开始，返回结束时调用的函数
func OrderStarted() func() {
	InitMetrics()
	OrdersInProgress.Inc()
	return OrdersInProgress.Dec
}

// RecordOrderCreated 记录下单成功及耗时
func RecordOrderCreated(d time.Duration) {
	InitMetrics()
	OrdersCreatedTotal.Inc()
	OrderCreationDuration.Observe(d.Seconds())
}

// RecordOrderFailed 记录下单失败
func RecordOrderFailed(reason string) {
	InitMetrics()
	OrdersFailedTotal.WithLabelValues(reason).Inc()
}

// RecordOrderNumberMinted 记录一次订单号分配
func RecordOrderNumberMinted(outcome string) {
	InitMetrics()
	OrderNumbersMintedTotal.WithLabelValues(outcome).Inc()
}

// RecordAllocationRetry 记录一次下单重试
func RecordAllocationRetry() {
	InitMetrics()
	OrderAllocationRetriesTotal.Inc()
}

// RecordStatusTransition 记录订单状态变更
func RecordStatusTransition(to string) {
	InitMetrics()
	OrderStatusTransitionsTotal.WithLabelValues(to).Inc()
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest 记录熔断器请求结果
func RecordCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordMessagePublished 记录消息发布
func RecordMessagePublished(exchange, routingKey string) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey).Inc()
}

// RecordMessageConsumed 记录消息消费结果及耗时
func RecordMessageConsumed(queue, result string, d time.Duration) {
	InitMetrics()
	MessagesConsumedTotal.WithLabelValues(queue, result).Inc()
	MessageProcessingDuration.Observe(d.Seconds())
}
