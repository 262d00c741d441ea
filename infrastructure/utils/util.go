package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"
)

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDurationStrict decodes an ISO 8601 duration ("PT1H30M45S") into whole
// seconds. ok is false when no time component could be captured.
func ParseDurationStrict(iso8601 string) (int, bool) {
	m := durationPattern.FindStringSubmatch(iso8601)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, false
	}

	hours, _ := strconv.Atoi(zeroDefault(m[1]))
	minutes, _ := strconv.Atoi(zeroDefault(m[2]))
	seconds, _ := strconv.Atoi(zeroDefault(m[3]))

	return hours*3600 + minutes*60 + seconds, true
}

// ParseDuration is the 0-defaulting form of ParseDurationStrict: malformed
// input becomes 0 seconds. Callers must treat 0 as "unknown duration", not
// as proof of a parse failure.
func ParseDuration(iso8601 string) int {
	seconds, _ := ParseDurationStrict(iso8601)
	return seconds
}

func zeroDefault(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// FormatDuration renders seconds as H:MM:SS when hours are present, else
// M:SS. Hours are unpadded; minutes and seconds are zero-padded.
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

var (
	thousand = big.NewInt(1_000)
	million  = big.NewInt(1_000_000)
)

// FormatViewCount renders large counts with one-decimal K/M suffixes,
// rounding half up. It accepts string, int, int64, uint64 and *big.Int
// inputs; equal numeric values produce identical output regardless of type.
func FormatViewCount(count any) string {
	n := toBigInt(count)
	if n.CmpAbs(million) >= 0 {
		return scaledSuffix(n, million, "M")
	}
	if n.CmpAbs(thousand) >= 0 {
		return scaledSuffix(n, thousand, "K")
	}
	return n.String()
}

// scaledSuffix computes n/unit to one decimal place using half-up integer
// rounding, avoiding float drift on large counts.
func scaledSuffix(n, unit *big.Int, suffix string) string {
	tenths := new(big.Int).Mul(n, big.NewInt(10))
	tenths.Add(tenths, new(big.Int).Rsh(unit, 1))
	tenths.Div(tenths, unit)

	whole := new(big.Int).Div(tenths, big.NewInt(10))
	frac := new(big.Int).Mod(tenths, big.NewInt(10))
	return fmt.Sprintf("%s.%s%s", whole.String(), frac.String(), suffix)
}

func toBigInt(count any) *big.Int {
	switch v := count.(type) {
	case *big.Int:
		return v
	case int:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case uint64:
		return new(big.Int).SetUint64(v)
	case string:
		if n, ok := new(big.Int).SetString(v, 10); ok {
			return n
		}
	}
	return big.NewInt(0)
}

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}
