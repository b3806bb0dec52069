// Package reltime は相対時刻表記への変換を提供する。
// タイムラインの「3分前」「2時間前」のような表示に使用する。
package reltime

import (
	"fmt"
	"time"
)

// 閾値はdayjsのrelativeTimeプラグインに合わせている。
const (
	fewSecondsMax = 45 * time.Second
	oneMinuteMax  = 90 * time.Second
	minutesMax    = 45 * time.Minute
	oneHourMax    = 90 * time.Minute
	hoursMax      = 22 * time.Hour
	oneDayMax     = 36 * time.Hour
	daysMax       = 25 * 24 * time.Hour
	oneMonthMax   = 45 * 24 * time.Hour
	monthsMax     = 320 * 24 * time.Hour
	oneYearMax    = 548 * 24 * time.Hour
)

// FromNow は現在時刻を基準にtの相対時刻表記を返す。
func FromNow(t time.Time) string {
	return From(t, time.Now())
}

// From はnowを基準にtの相対時刻表記を返す。
// tが未来の場合は「数秒前」として扱う（時計ずれの吸収）。
func From(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < fewSecondsMax:
		return "数秒前"
	case d < oneMinuteMax:
		return "1分前"
	case d < minutesMax:
		return fmt.Sprintf("%d分前", int(d.Round(time.Minute)/time.Minute))
	case d < oneHourMax:
		return "1時間前"
	case d < hoursMax:
		return fmt.Sprintf("%d時間前", int(d.Round(time.Hour)/time.Hour))
	case d < oneDayMax:
		return "1日前"
	case d < daysMax:
		return fmt.Sprintf("%d日前", int(d.Round(24*time.Hour)/(24*time.Hour)))
	case d < oneMonthMax:
		return "1ヶ月前"
	case d < monthsMax:
		return fmt.Sprintf("%dヶ月前", int(d.Round(30*24*time.Hour)/(30*24*time.Hour)))
	case d < oneYearMax:
		return "1年前"
	default:
		return fmt.Sprintf("%d年前", int(d.Round(365*24*time.Hour)/(365*24*time.Hour)))
	}
}
