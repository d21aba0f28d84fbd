package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const closedLiteral = "closed"

var (
	ErrInvalidTime       = errors.New("invalid time")
	ErrMalformedDayRange = errors.New("malformed opening hours")

	timePattern     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	dayRangePattern = regexp.MustCompile(`^(\d{1,2}:\d{2}(?::\d{2})?)\s*[-–]\s*(\d{1,2}:\d{2}(?::\d{2})?)$`)
)

// DayHours is one parsed weekday. Open and Close are nil when IsClosed.
type DayHours struct {
	Open     *string
	Close    *string
	IsClosed bool
}

// NormalizeTime turns "9:00", "09:00" or "09:00:00" into "09:00:00".
func NormalizeTime(s string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}
	if hour > 23 || minute > 59 || second > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), nil
}

// ParseDayRange parses "HH:MM-HH:MM" or "closed". An empty string yields nil
// and no error: the day is simply not listed.
func ParseDayRange(s string) (*DayHours, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.EqualFold(s, closedLiteral) {
		return &DayHours{IsClosed: true}, nil
	}

	m := dayRangePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedDayRange, s)
	}
	open, err := NormalizeTime(m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedDayRange, s)
	}
	closing, err := NormalizeTime(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedDayRange, s)
	}
	return &DayHours{Open: &open, Close: &closing}, nil
}

// WeekdayName maps 0..6 (Sunday first) to its English name.
func WeekdayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return time.Weekday(day).String()
}
