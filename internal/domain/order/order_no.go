package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 订单号格式：ORD-YYYYMMDD-NNNN
// 示例：ORD-20251021-0001
//
// 设计说明:
// 1. 日期段：下单日期（按配置时区的"当天"），便于人工识别和按天统计
// 2. 序号段：当天内从0001开始连续递增，4位补零
// 3. 格式已持久化到orders.order_no，必须长期保持不变（兼容历史订单号）
const (
	// Prefix 订单号固定前缀
	Prefix = "ORD"

	// MaxSequence 单日可分配的最大序号
	MaxSequence = 9999

	dateLayout  = "20060102"
	dateDigits  = 8
	seqDigits   = 4
	encodedLen  = len(Prefix) + 1 + dateDigits + 1 + seqDigits // 17
	segmentSep  = "-"
	segmentsLen = 3
)

// OrderNumber 订单号值对象
// 不可变：只能通过NewOrderNumber或ParseOrderNumber得到合法实例
type OrderNumber struct {
	issueDate time.Time // UTC零点，只保留年月日
	sequence  int
}

// NewOrderNumber 由日期和序号构造订单号
// date只取年月日部分（按date自身的时区），sequence必须在1-9999之间
func NewOrderNumber(date time.Time, sequence int) (OrderNumber, error) {
	if sequence < 1 {
		return OrderNumber{}, fmt.Errorf("order number: sequence %d out of range", sequence)
	}
	if sequence > MaxSequence {
		return OrderNumber{}, ErrSequenceExhausted
	}
	if date.Year() < 1 || date.Year() > 9999 {
		return OrderNumber{}, fmt.Errorf("order number: year %d out of range", date.Year())
	}
	return OrderNumber{issueDate: DateOf(date), sequence: sequence}, nil
}

// IssueDate 订单号中的日期（UTC零点）
func (n OrderNumber) IssueDate() time.Time { return n.issueDate }

// Sequence 当日序号
func (n OrderNumber) Sequence() int { return n.sequence }

// IsZero 是否为零值（未构造的订单号）
func (n OrderNumber) IsZero() bool { return n.sequence == 0 }

// String 规范编码
func (n OrderNumber) String() string {
	return fmt.Sprintf("%s-%04d", DayPrefix(n.issueDate), n.sequence)
}

// DayPrefix 某天所有订单号共享的前缀，例如 ORD-20251021
func DayPrefix(date time.Time) string {
	return Prefix + segmentSep + date.Format(dateLayout)
}

// DateOf 截取年月日，归一化为UTC零点
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseOrderNumber 解析订单号
// 校验规则见ValidateOrderNumber，失败时返回ErrInvalidOrderNo
func ParseOrderNumber(s string) (OrderNumber, error) {
	if len(s) != encodedLen {
		return OrderNumber{}, ErrInvalidOrderNo
	}

	parts := strings.Split(s, segmentSep)
	if len(parts) != segmentsLen {
		return OrderNumber{}, ErrInvalidOrderNo
	}
	prefix, datePart, seqPart := parts[0], parts[1], parts[2]

	if prefix != Prefix {
		return OrderNumber{}, ErrInvalidOrderNo
	}
	if len(datePart) != dateDigits || !isASCIIDigits(datePart) {
		return OrderNumber{}, ErrInvalidOrderNo
	}
	if len(seqPart) != seqDigits || !isASCIIDigits(seqPart) {
		return OrderNumber{}, ErrInvalidOrderNo
	}

	// time.Parse会校验月份天数（含闰年），例如20250230、20250431都会失败
	date, err := time.ParseInLocation(dateLayout, datePart, time.UTC)
	if err != nil || date.Year() < 1 {
		return OrderNumber{}, ErrInvalidOrderNo
	}

	seq, err := strconv.Atoi(seqPart)
	if err != nil || seq < 1 {
		return OrderNumber{}, ErrInvalidOrderNo
	}

	return OrderNumber{issueDate: date, sequence: seq}, nil
}

// ValidateOrderNumber 校验订单号格式（纯函数，不做I/O，任何输入都不会panic）
func ValidateOrderNumber(s string) bool {
	_, err := ParseOrderNumber(s)
	return err == nil
}

// ValidateOrderNumberPtr 可空版本：nil视为缺失，返回false
func ValidateOrderNumberPtr(s *string) bool {
	if s == nil {
		return false
	}
	return ValidateOrderNumber(*s)
}

// ExtractIssueDate 从订单号中取出下单日期
// 仅当ValidateOrderNumber(s)为true时返回(date, true)，否则返回(零值, false)
func ExtractIssueDate(s string) (time.Time, bool) {
	n, err := ParseOrderNumber(s)
	if err != nil {
		return time.Time{}, false
	}
	return n.issueDate, true
}

func isASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
