package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOrderNumberString(t *testing.T) {
	n, err := NewOrderNumber(date(2025, 10, 21), 1)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20251021-0001", n.String())

	n, err = NewOrderNumber(date(2024, 12, 31), 9999)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20241231-9999", n.String())
	assert.Len(t, n.String(), 17)
}

func TestNewOrderNumberRange(t *testing.T) {
	_, err := NewOrderNumber(date(2025, 10, 21), 0)
	assert.Error(t, err)

	_, err = NewOrderNumber(date(2025, 10, 21), 10000)
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestNewOrderNumberKeepsLocalDate(t *testing.T) {
	// 莫斯科时间10月22日00:30 = UTC 10月21日21:30，订单号应使用本地日期
	msk := time.FixedZone("MSK", 3*60*60)
	n, err := NewOrderNumber(time.Date(2025, 10, 22, 0, 30, 0, 0, msk), 7)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20251022-0007", n.String())
}

func TestValidateOrderNumber(t *testing.T) {
	t.Run("合法订单号", func(t *testing.T) {
		valid := []string{
			"ORD-20251021-0001",
			"ORD-20241231-9999",
			"ORD-20240101-0001",
			"ORD-20240229-0042", // 闰年2月29日
		}
		for _, s := range valid {
			assert.True(t, ValidateOrderNumber(s), s)
		}
	})

	t.Run("结构错误", func(t *testing.T) {
		invalid := []string{
			"ORD-20251021",            // 段数不足
			"ORD-20251021-0001-EXTRA", // 段数过多
			"INVALID-20251021-0001",   // 前缀错误
			"ord-20251021-0001",       // 前缀大小写
			"ORD-2025102-0001",        // 日期7位
			"ORD-202510210-001",       // 日期9位
			"ORD-20251021-001",        // 序号3位
			"ORD-20251021-00001",      // 序号5位
			"ORD-2025102a-0001",       // 日期含字母
			"ORD-20251021-00a1",       // 序号含字母
			"ORD-20251021-+001",       // 符号
			"ORD-２０２５1021-0001",     // 全角数字
			"ORD_20251021_0001",       // 分隔符错误
			" ORD-20251021-0001",      // 前导空格
			"ORD-20251021-0000",       // 序号0从不分配
			"",                        // 空串
			"INVALID-ORDER-NUMBER",
		}
		for _, s := range invalid {
			assert.False(t, ValidateOrderNumber(s), s)
		}
	})

	t.Run("不存在的日期", func(t *testing.T) {
		invalid := []string{
			"ORD-20251321-0001", // 13月
			"ORD-20251032-0001", // 32日
			"ORD-20250230-0001", // 2月30日
			"ORD-20250229-0001", // 非闰年2月29日
			"ORD-20250431-0001", // 4月31日
			"ORD-20250631-0001", // 6月31日
			"ORD-20250931-0001", // 9月31日
			"ORD-20251131-0001", // 11月31日
			"ORD-20250001-0001", // 0月
			"ORD-20250100-0001", // 0日
			"ORD-00000101-0001", // 0年
		}
		for _, s := range invalid {
			assert.False(t, ValidateOrderNumber(s), s)
		}
	})

	t.Run("缺失值", func(t *testing.T) {
		assert.False(t, ValidateOrderNumberPtr(nil))

		s := "ORD-20251021-0001"
		assert.True(t, ValidateOrderNumberPtr(&s))
	})
}

func TestExtractIssueDate(t *testing.T) {
	t.Run("合法订单号", func(t *testing.T) {
		cases := []struct {
			in   string
			want time.Time
		}{
			{"ORD-20251021-0001", date(2025, 10, 21)},
			{"ORD-20241231-9999", date(2024, 12, 31)},
			{"ORD-20240101-0001", date(2024, 1, 1)},
		}
		for _, tc := range cases {
			got, ok := ExtractIssueDate(tc.in)
			require.True(t, ok, tc.in)
			assert.True(t, tc.want.Equal(got), "%s: got %s", tc.in, got)
		}
	})

	t.Run("非法订单号", func(t *testing.T) {
		for _, s := range []string{"ORD-20251021", "INVALID-20251021-0001", "ORD-20251321-0001", ""} {
			got, ok := ExtractIssueDate(s)
			assert.False(t, ok, s)
			assert.True(t, got.IsZero(), s)
		}
	})
}

// 对所有合法日期与序号：编码后可以校验通过，并还原出相同日期
func TestRoundTrip(t *testing.T) {
	sequences := []int{1, 2, 9, 10, 99, 100, 999, 1000, 5000, 9998, 9999}

	start := date(2023, 1, 1)
	end := date(2025, 1, 1) // 覆盖一个闰年
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		for _, seq := range sequences {
			n, err := NewOrderNumber(d, seq)
			require.NoError(t, err)

			s := n.String()
			require.True(t, ValidateOrderNumber(s), s)

			got, ok := ExtractIssueDate(s)
			require.True(t, ok, s)
			require.True(t, d.Equal(got), "%s: got %s", s, got)

			parsed, err := ParseOrderNumber(s)
			require.NoError(t, err)
			require.Equal(t, seq, parsed.Sequence())
		}
	}

	for seq := 1; seq <= MaxSequence; seq++ {
		n, err := NewOrderNumber(date(2025, 10, 21), seq)
		require.NoError(t, err)
		parsed, err := ParseOrderNumber(n.String())
		require.NoError(t, err)
		require.Equal(t, seq, parsed.Sequence())
	}
}

func TestDayPrefix(t *testing.T) {
	assert.Equal(t, "ORD-20251021", DayPrefix(date(2025, 10, 21)))
}
