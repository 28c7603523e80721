package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple positive", "100.50", "100.5"},
		{"simple negative", "-100.50", "-100.5"},
		{"with thousands", "1,234.56", "1234.56"},
		{"with currency $", "$1,250.00", "1250"},
		{"parentheses negative", "(45.20)", "-45.2"},
		{"parentheses with symbol", "($1,000.00)", "-1000"},
		{"integer", "42", "42"},
		{"zero", "0.00", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseAmount(tc.input)
			require.NoError(t, err)
			expected, _ := decimal.NewFromString(tc.expected)
			assert.True(t, expected.Equal(d), "got %s want %s", d, expected)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12.34.56"} {
		_, err := ParseAmount(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatFixed(t *testing.T) {
	d := decimal.RequireFromString("1250")
	assert.Equal(t, "1250.00", FormatFixed(d))

	neg := decimal.RequireFromString("-0.5")
	assert.Equal(t, "-0.50", FormatFixed(neg))
}

func TestCurrencyMetadata(t *testing.T) {
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, 2, Fraction("USD"))
	assert.Equal(t, 0, Fraction("JPY"))
	assert.Equal(t, "XXX?", Symbol("XXX?"))
}

func TestTestDataGenerator_Deterministic(t *testing.T) {
	a := NewTestDataGenerator(42)
	b := NewTestDataGenerator(42)
	assert.Equal(t, a.RawAmount(1, 100000), b.RawAmount(1, 100000))
}

func TestTestDataGenerator_RawAmountParses(t *testing.T) {
	g := NewTestDataGenerator(7)
	for i := 0; i < 50; i++ {
		raw := g.RawAmount(1, 5000000)
		_, err := ParseAmount(raw)
		require.NoError(t, err, "raw %q", raw)
	}
}
