package order

import (
	"github.com/xiebiao/meatshop/internal/domain/order"
)

// InspectResult 订单号解析结果
type InspectResult struct {
	OrderNo   string `json:"order_no"`
	Valid     bool   `json:"valid"`
	IssueDate string `json:"issue_date,omitempty"` // YYYY-MM-DD
	Sequence  int    `json:"sequence,omitempty"`
}

// InspectOrderNumber 校验订单号并取出日期和序号（不做I/O）
func InspectOrderNumber(orderNo string) InspectResult {
	n, err := order.ParseOrderNumber(orderNo)
	if err != nil {
		return InspectResult{OrderNo: orderNo}
	}
	return InspectResult{
		OrderNo:   orderNo,
		Valid:     true,
		IssueDate: n.IssueDate().Format("2006-01-02"),
		Sequence:  n.Sequence(),
	}
}
