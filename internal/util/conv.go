package util

import "time"

// ParseDate 解析 yyyy-mm-dd，空字符串返回零值
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, Invalid("date %q must be formatted as %s", s, DateFormat)
	}
	return t, nil
}
