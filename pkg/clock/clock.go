package clock

import "time"

// Clock 可注入的时间源
// 订单号按"当天"分配序号，测试里用NewFixed固定日期
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem 返回基于time.Now的时钟，时间换算到loc时区（nil表示UTC）
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	now time.Time
}

// NewFixed 返回始终停在同一时刻的时钟（用于测试）
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
