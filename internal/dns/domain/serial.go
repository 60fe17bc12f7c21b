package domain

import (
	"strconv"
	"time"
)

const serialLayout = "2006010215"

// SerialStamp formats t as a YYYYMMDDHH zone serial in UTC.
func SerialStamp(t time.Time) string {
	return t.UTC().Format(serialLayout)
}

// NextSerial returns the serial that should replace old at time now.
//
// The candidate is YYYYMMDDHH. When old starts with the same YYYYMMDD the result
// is old+1, which may run past the hour digits and is never range checked.
// Otherwise the candidate is used even if it is numerically smaller than old.
func NextSerial(old string, now time.Time) string {
	candidate := SerialStamp(now)
	if len(old) >= 8 && old[:8] == candidate[:8] {
		if n, err := strconv.ParseUint(old, 10, 64); err == nil {
			return strconv.FormatUint(n+1, 10)
		}
	}
	return candidate
}
