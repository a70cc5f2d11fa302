package model

import "time"

// DateLayout is the calendar-date format used for admission, discharge,
// appointment and health record dates.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// RoleAll targets a notification at every role.
const RoleAll = "all"

// StringPtr returns a pointer to s. It keeps partial-update literals short.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}
