package service

import (
	"time"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// Clock 俱乐部时区下的“今天”
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock 创建时钟；loc 为 nil 时使用 UTC
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: time.Now}
}

// Today 当前日期（UTC 零点表示）
func (c Clock) Today() time.Time {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOnly(now().In(loc))
}

// Location 俱乐部时区
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
