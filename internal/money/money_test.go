package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.999", "1.00"},
		{"0.994", "0.99"},
		{"0.995", "1.00"},
		{"2.675", "2.68"},
		{"10", "10.00"},
	}
	for _, tc := range tests {
		got := Round2(decimal.RequireFromString(tc.in))
		require.Equal(t, tc.want, got.StringFixed(2), "round %s", tc.in)
	}
}

func TestRound2IsIdempotent(t *testing.T) {
	once := Round2(decimal.RequireFromString("3.14159"))
	require.True(t, once.Equal(Round2(once)))
}

func TestPercent(t *testing.T) {
	// 9.99 * 10% = 0.999 rounds to 1.00.
	got := Percent(decimal.RequireFromString("9.99"), 10)
	require.Equal(t, "1.00", got.StringFixed(2))

	require.True(t, Percent(decimal.RequireFromString("50.00"), 0).IsZero())
	require.Equal(t, "5.00", Percent(decimal.RequireFromString("50.00"), 10).StringFixed(2))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "1.50$", Format(decimal.RequireFromString("1.5"), "$"))
	require.Equal(t, "0.00$", Format(decimal.Zero, "$"))
}
