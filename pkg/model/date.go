package model

import (
	"fmt"
	"strings"
	"time"
)

// Date 日历日期，不带时间部分
// 序列化为 "2006-01-02"，反序列化时兼容远端存储返回的 RFC3339 时间戳
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate 创建日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Today 返回本地时区的当前日期
func Today() Date {
	return DateOf(time.Now())
}

// DateOf 提取时间中的日期部分
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate 解析 "2006-01-02" 或 RFC3339 格式的日期
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("解析日期 %q 失败", s)
}

// IsZero 判断是否为零值日期
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time 转换为该日零点的时间
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String 实现 fmt.Stringer
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON 实现 json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
