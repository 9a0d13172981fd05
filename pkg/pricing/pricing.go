package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// NativeCurrency is the sentinel address of the chain's base currency.
var NativeCurrency = common.Address{}

// DefaultSlippagePercent is the buffer added on top of a quoted price.
var DefaultSlippagePercent = decimal.NewFromInt(10)

// CurrencyTable maps a currency contract to the number of decimals of its
// smallest unit.
type CurrencyTable map[common.Address]int32

// DefaultCurrencies returns the currencies the fixtures are generated for.
func DefaultCurrencies() CurrencyTable {
	return CurrencyTable{
		NativeCurrency: 18,
		common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"): 18, // WETH
		common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"): 18, // DAI
	}
}

// Calculator pads quoted prices with a fixed slippage percentage, in the
// precision of the quote currency. It is read-only after construction.
type Calculator struct {
	currencies CurrencyTable
	percent    decimal.Decimal
}

// NewCalculator copies table so later changes by the caller do not leak in.
func NewCalculator(table CurrencyTable, slippagePercent decimal.Decimal) *Calculator {
	currencies := make(CurrencyTable, len(table))
	for addr, dec := range table {
		currencies[addr] = dec
	}
	return &Calculator{currencies: currencies, percent: slippagePercent}
}

// IsNative reports whether currency denotes the chain's base currency.
// Both "0x0" and the full zero address are accepted.
func IsNative(currency string) bool {
	addr, ok := parseCurrency(currency)
	return ok && addr == NativeCurrency
}

// Decimals returns the decimal exponent configured for currency.
func (c *Calculator) Decimals(currency string) (int32, error) {
	addr, ok := parseCurrency(currency)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
	dec, ok := c.currencies[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, addr.Hex())
	}
	return dec, nil
}

// AdjustPrice returns rawPrice plus the slippage padding, both in smallest
// units of currency. Native currency prices are returned unchanged.
func (c *Calculator) AdjustPrice(rawPrice, currency string) (string, error) {
	price, err := parsePrice(rawPrice)
	if err != nil {
		return "", err
	}
	if IsNative(currency) {
		return rawPrice, nil
	}

	decimals, err := c.Decimals(currency)
	if err != nil {
		return "", err
	}

	scale := decimal.New(1, decimals)
	hundredUnits := decimal.New(100, decimals)

	// Dividing by 10^(decimals+2) is exact at decimals+2 fractional digits.
	fraction := price.DivRound(hundredUnits, decimals+2)
	slippage := fraction.Mul(c.percent)
	padding := slippage.Mul(scale).Floor()

	return price.Add(padding).String(), nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return decimal.Zero, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidPrice, raw)
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	return d, nil
}

func parseCurrency(currency string) (common.Address, bool) {
	s := strings.TrimSpace(currency)
	if s == "" {
		return common.Address{}, false
	}
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), true
	}
	// Short forms of the zero address, e.g. "0x0".
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		rest := s[2:]
		if rest != "" && strings.Trim(rest, "0") == "" {
			return NativeCurrency, true
		}
	}
	return common.Address{}, false
}
