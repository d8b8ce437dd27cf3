package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// IntPtr returns nil for the zero id, which stands for "no reference".
func IntPtr(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

// UTCNow is the default clock of the services; tests swap it for a fixed one.
func UTCNow() time.Time { return time.Now().UTC() }
