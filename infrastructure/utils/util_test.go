package utils_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"nosbot/infrastructure/utils"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"PT1H30M45S", 5445},
		{"PT45S", 45},
		{"PT5M", 300},
		{"PT2H", 7200},
		{"PT1M1S", 61},
		{"garbage", 0},
		{"", 0},
		{"PT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ParseDuration(tt.input))
		})
	}
}

func TestParseDurationStrict(t *testing.T) {
	seconds, ok := utils.ParseDurationStrict("PT5M")
	assert.True(t, ok)
	assert.Equal(t, 300, seconds)

	seconds, ok = utils.ParseDurationStrict("garbage")
	assert.False(t, ok)
	assert.Equal(t, 0, seconds)

	// "PT" matches the pattern but captures no component
	_, ok = utils.ParseDurationStrict("PT")
	assert.False(t, ok)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:45", utils.FormatDuration(45))
	assert.Equal(t, "3:05", utils.FormatDuration(185))
	assert.Equal(t, "1:01:05", utils.FormatDuration(3665))
	assert.Equal(t, "0:00", utils.FormatDuration(0))
	assert.Equal(t, "10:00:00", utils.FormatDuration(36000))
}

func TestFormatViewCount(t *testing.T) {
	assert.Equal(t, "1.5M", utils.FormatViewCount(1_500_000))
	assert.Equal(t, "25.0K", utils.FormatViewCount(25_000))
	assert.Equal(t, "999", utils.FormatViewCount(999))
	assert.Equal(t, "1.0K", utils.FormatViewCount(1_000))

	// half-up rounding at one decimal place
	assert.Equal(t, "1.3M", utils.FormatViewCount(1_250_000))
	assert.Equal(t, "1.2M", utils.FormatViewCount(1_249_999))
}

func TestFormatViewCountInputKinds(t *testing.T) {
	// the same numeric value must render identically regardless of input type
	want := utils.FormatViewCount(int64(2_500_000_000))
	assert.Equal(t, want, utils.FormatViewCount("2500000000"))
	assert.Equal(t, want, utils.FormatViewCount(uint64(2_500_000_000)))
	assert.Equal(t, want, utils.FormatViewCount(big.NewInt(2_500_000_000)))
	assert.Equal(t, "2.5M", utils.FormatViewCount("2500000"))

	assert.Equal(t, "0", utils.FormatViewCount("not-a-number"))
}
