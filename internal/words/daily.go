// internal/words/daily.go
//
// Word of the day: every host picks the same reset word for a UTC date,
// derived from HMAC(salt, YYYY-MM-DD) over the loaded list.

package words

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// dailyIndex maps a date onto [0, n).
func dailyIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// ForDate returns the word of the day, or DefaultWord when no list is loaded.
func ForDate(date time.Time, salt string) string {
	if len(list) == 0 {
		return DefaultWord
	}
	return list[dailyIndex(date, salt, len(list))]
}
