package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Conversions(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)
	assert.Equal(t, int64(123456), q.Int64Scaled())
	assert.Equal(t, "12.3456", q.String())
	assert.True(t, q.Decimal().Equal(decimal.RequireFromString("12.3456")))

	assert.Equal(t, "5.0000", NewQuantityFromFloat64(5).String())
	assert.Equal(t, "-0.5000", NewQuantityFromFloat64(-0.5).String())
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(7.25)
	data, err := q.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "7.2500", string(data))

	var parsed Quantity
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Equal(t, q, parsed)
}

func TestRoundMoney_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.34565", "12.3457"},
		{"12.34564", "12.3456"},
		{"-12.34565", "-12.3457"},
		{"100", "100"},
	}
	for _, tt := range tests {
		got := RoundMoney(MustMoney(tt.in))
		assert.True(t, MustMoney(tt.want).Equal(got), "RoundMoney(%s) = %s, want %s", tt.in, got, tt.want)
	}
}
