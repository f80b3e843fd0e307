package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/pkg/metrics"
)

// Notifier 订单通知消费者（cmd/worker使用）
// 把订单事件转换成发给用户的通知文本。实际投递由Bot负责，这里只写日志。
type Notifier struct {
	queue string
	log   *zap.Logger
}

// NewNotifier 创建通知消费者
func NewNotifier(queue string, log *zap.Logger) *Notifier {
	return &Notifier{queue: queue, log: log}
}

var statusText = map[string]string{
	"confirmed":  "подтверждён",
	"processing": "собирается",
	"shipped":    "передан в доставку",
	"delivered":  "доставлен",
	"cancelled":  "отменён",
	"refunded":   "возвращён",
}

// Handle 处理一条事件，签名与mq.Handler一致
func (n *Notifier) Handle(_ context.Context, routingKey string, body []byte) (err error) {
	start := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "error"
		}
		metrics.RecordMessageConsumed(n.queue, result, time.Since(start))
	}()

	text, userID, err := Render(routingKey, body)
	if err != nil {
		return err
	}
	if text == "" {
		n.log.Debug("忽略未知事件", zap.String("routing_key", routingKey))
		return nil
	}

	n.log.Info("订单通知", zap.Uint("user_id", userID), zap.String("routing_key", routingKey), zap.String("text", text))
	return nil
}

// Render 生成通知文本；未知路由键返回空串
func Render(routingKey string, body []byte) (string, uint, error) {
	switch routingKey {
	case RoutingKeyOrderCreated:
		var e OrderCreatedEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return "", 0, fmt.Errorf("解析下单事件失败: %w", err)
		}
		return fmt.Sprintf("Заказ %s принят. Сумма: %s ₽", e.OrderNo, FormatRubles(e.Total)), e.UserID, nil

	case RoutingKeyOrderStatusChanged:
		var e OrderStatusChangedEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return "", 0, fmt.Errorf("解析状态事件失败: %w", err)
		}
		text, ok := statusText[e.To]
		if !ok {
			text = e.To
		}
		return fmt.Sprintf("Заказ %s %s", e.OrderNo, text), e.UserID, nil
	}
	return "", 0, nil
}

// FormatRubles 戈比转卢布字符串，例如 223050 → "2230.50"
func FormatRubles(kopecks int64) string {
	sign := ""
	if kopecks < 0 {
		sign = "-"
		kopecks = -kopecks
	}
	return fmt.Sprintf("%s%d.%02d", sign, kopecks/100, kopecks%100)
}
