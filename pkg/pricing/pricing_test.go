package pricing

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	weth    = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	dai     = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	usdc    = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	native  = "0x0000000000000000000000000000000000000000"
	unknown = "0x1111111111111111111111111111111111111111"
)

func defaultCalc() *Calculator {
	return NewCalculator(DefaultCurrencies(), DefaultSlippagePercent)
}

// ─── AdjustPrice: concrete scenarios ──────────────────────────────────────────

func TestAdjustPrice_HundredUnitsEighteenDecimals(t *testing.T) {
	got, err := defaultCalc().AdjustPrice("100000000000000000000", weth)
	require.NoError(t, err)
	assert.Equal(t, "110000000000000000000", got)
}

func TestAdjustPrice_NativeIsNoOp(t *testing.T) {
	c := defaultCalc()
	for _, cur := range []string{native, "0x0", "0x00"} {
		got, err := c.AdjustPrice("500", cur)
		require.NoError(t, err)
		assert.Equal(t, "500", got, cur)
	}
}

func TestAdjustPrice_UnknownCurrency(t *testing.T) {
	c := defaultCalc()
	for _, cur := range []string{unknown, "", "eth", "0xnotanaddress"} {
		_, err := c.AdjustPrice("100", cur)
		assert.ErrorIs(t, err, ErrUnknownCurrency, cur)
	}
}

func TestAdjustPrice_InvalidPrice(t *testing.T) {
	c := defaultCalc()
	for _, p := range []string{"", "-1", "1.5", "1e18", " 10", "0x10", "abc"} {
		_, err := c.AdjustPrice(p, dai)
		assert.ErrorIs(t, err, ErrInvalidPrice, p)

		_, err = c.AdjustPrice(p, native)
		assert.ErrorIs(t, err, ErrInvalidPrice, "native %q", p)
	}
}

// ─── AdjustPrice: arithmetic ──────────────────────────────────────────────────

func TestAdjustPrice_Truncates(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"0", "0"},
		{"9", "9"},   // padding 0.9 -> 0
		{"15", "16"}, // padding 1.5 -> 1
		{"19", "20"}, // padding 1.9 -> 1
		{"123456789012345678901", "135802467913580246791"},
		{"1", "1"},
	}

	c := defaultCalc()
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			got, err := c.AdjustPrice(tt.price, weth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdjustPrice_MatchesIntegerFormula(t *testing.T) {
	// price + floor(price * 10 / 100) computed with big.Int
	prices := []string{"1", "10", "99", "1000000000000000001", "987654321987654321987654321"}
	c := NewCalculator(CurrencyTable{common.HexToAddress(usdc): 6}, DefaultSlippagePercent)

	for _, p := range prices {
		v, _ := new(big.Int).SetString(p, 10)
		pad := new(big.Int).Div(new(big.Int).Mul(v, big.NewInt(10)), big.NewInt(100))
		want := new(big.Int).Add(v, pad).String()

		got, err := c.AdjustPrice(p, usdc)
		require.NoError(t, err)
		assert.Equal(t, want, got, p)
	}
}

func TestAdjustPrice_Monotonic(t *testing.T) {
	c := defaultCalc()
	for _, p := range []int64{0, 1, 9, 10, 11, 1000, 1 << 40} {
		s := big.NewInt(p).String()
		got, err := c.AdjustPrice(s, dai)
		require.NoError(t, err)

		in, _ := new(big.Int).SetString(s, 10)
		out, _ := new(big.Int).SetString(got, 10)
		assert.True(t, out.Cmp(in) >= 0, "%s -> %s", s, got)
		if p >= 10 {
			assert.True(t, out.Cmp(in) > 0, "%s -> %s", s, got)
		}
	}
}

func TestAdjustPrice_Deterministic(t *testing.T) {
	c := defaultCalc()
	a, err := c.AdjustPrice("424242424242424242", weth)
	require.NoError(t, err)
	b, err := c.AdjustPrice("424242424242424242", weth)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAdjustPrice_CaseInsensitiveCurrency(t *testing.T) {
	c := defaultCalc()
	lower, err := c.AdjustPrice("1000", "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	require.NoError(t, err)
	mixed, err := c.AdjustPrice("1000", weth)
	require.NoError(t, err)
	assert.Equal(t, "1100", lower)
	assert.Equal(t, mixed, lower)
}

// ─── Injected configuration ───────────────────────────────────────────────────

func TestNewCalculator_CustomTableAndPercent(t *testing.T) {
	table := CurrencyTable{common.HexToAddress(usdc): 6}
	c := NewCalculator(table, decimal.RequireFromString("2.5"))

	got, err := c.AdjustPrice("1000000", usdc) // 1 USDC
	require.NoError(t, err)
	assert.Equal(t, "1025000", got)

	_, err = c.AdjustPrice("1000000", weth)
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	// later mutation of the caller's table must not affect the calculator
	table[common.HexToAddress(weth)] = 18
	_, err = c.AdjustPrice("1000000", weth)
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestDecimals(t *testing.T) {
	c := defaultCalc()
	d, err := c.Decimals(dai)
	require.NoError(t, err)
	assert.Equal(t, int32(18), d)

	_, err = c.Decimals(unknown)
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestIsNative(t *testing.T) {
	assert.True(t, IsNative(native))
	assert.True(t, IsNative("0x0"))
	assert.False(t, IsNative(weth))
	assert.False(t, IsNative("0x"))
	assert.False(t, IsNative(""))
}
