// Package period 统一的计费周期（自然月）计算。
// 免费积分水位线和会员用量水位线都走这里，避免两套重置逻辑各自漂移。
package period

import (
	"time"
)

// MonthKey 返回 YYYY-MM 格式的周期键
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthStart 返回 t 所在自然月的起点（UTC）
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DayStart 返回 t 所在自然日的起点（UTC），用于分享奖励的当日计数
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameMonth 两个时间是否处于同一自然月
func SameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// NeedsRollover 水位线是否落在 now 之前的周期（nil 水位线视为需要重置）
func NeedsRollover(watermark *time.Time, now time.Time) bool {
	if watermark == nil {
		return true
	}
	return !SameMonth(*watermark, now)
}
