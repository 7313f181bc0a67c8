package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLenient_Plain(t *testing.T) {
	d, ok := ParseLenient("20000")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(20000).Equal(d))
}

func TestParseLenient_Decimal(t *testing.T) {
	d, ok := ParseLenient("1500.25")
	require.True(t, ok)
	assert.Equal(t, "1500.25", d.String())
}

func TestParseLenient_ThousandsSeparators(t *testing.T) {
	d, ok := ParseLenient("20,000.50")
	require.True(t, ok)
	assert.Equal(t, "20000.5", d.String())
}

func TestParseLenient_CurrencySymbol(t *testing.T) {
	d, ok := ParseLenient("₦120,000")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(120000).Equal(d))
}

func TestParseLenient_Negative(t *testing.T) {
	d, ok := ParseLenient("-2,000")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(-2000).Equal(d))
}

func TestParseLenient_Whitespace(t *testing.T) {
	d, ok := ParseLenient("  1 500 ")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1500).Equal(d))
}

func TestParseLenient_Garbage(t *testing.T) {
	_, ok := ParseLenient("not a number")
	assert.False(t, ok)

	_, ok = ParseLenient("")
	assert.False(t, ok)

	_, ok = ParseLenient("-")
	assert.False(t, ok)
}

func TestParseAny_Float(t *testing.T) {
	d, ok := ParseAny(float64(99.5))
	require.True(t, ok)
	assert.Equal(t, "99.5", d.String())
}

func TestParseAny_JSONNumber(t *testing.T) {
	d, ok := ParseAny(json.Number("50000"))
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(50000).Equal(d))
}

func TestParseAny_String(t *testing.T) {
	d, ok := ParseAny("10,000")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(10000).Equal(d))
}

func TestParseAny_Nil(t *testing.T) {
	d, ok := ParseAny(nil)
	assert.False(t, ok)
	assert.True(t, d.IsZero())
}

func TestParseAny_UnsupportedType(t *testing.T) {
	_, ok := ParseAny([]string{"nope"})
	assert.False(t, ok)
}

func TestWithinEpsilon(t *testing.T) {
	eps := decimal.NewFromFloat(0.01)

	a := decimal.NewFromFloat(100.00)
	b := decimal.NewFromFloat(100.005)
	assert.True(t, WithinEpsilon(a, b, eps))

	c := decimal.NewFromFloat(100.02)
	assert.False(t, WithinEpsilon(a, c, eps))

	// Exact equality is always within epsilon
	assert.True(t, WithinEpsilon(a, a, eps))
}
