package bitmap

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Layout of the loan bitmap word, in hex digits.
const (
	PriceWidth     = 55
	ThresholdWidth = 2
	LTVWidth       = 2
	LoanIDWidth    = 5
)

// LoanWidths lists the loan bitmap field widths in encoding order.
var LoanWidths = []int{PriceWidth, ThresholdWidth, LTVWidth, LoanIDWidth}

var (
	ErrEncodingOverflow = errors.New("encoding overflow")
	ErrInvalidField     = errors.New("invalid field")
	ErrLengthMismatch   = errors.New("encoded length mismatch")
	ErrInvalidHex       = errors.New("invalid hex encoding")
	ErrMissingParam     = errors.New("missing parameter")
	ErrInvalidNumber    = errors.New("invalid number")
)

// Field is a single fixed-width slot of a packed word.
type Field struct {
	Name  string
	Value *big.Int
	Width int
}

// OverflowError reports a field whose value needs more hex digits than its
// declared width.
type OverflowError struct {
	Index  int
	Name   string
	Width  int
	Digits int
}

func (e *OverflowError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("%s: field %s needs %d hex digits, width is %d (over by %d)",
		ErrEncodingOverflow, name, e.Digits, e.Width, e.Digits-e.Width)
}

func (e *OverflowError) Unwrap() error { return ErrEncodingOverflow }

// Pack encodes fields into a single 0x-prefixed uppercase hex string. Each
// field is left-padded with zeros to exactly its width.
func Pack(fields ...Field) (string, error) {
	var sb strings.Builder
	sb.WriteString("0x")

	for i, f := range fields {
		if f.Width <= 0 {
			return "", fmt.Errorf("%w: field %d has width %d", ErrInvalidField, i, f.Width)
		}
		if f.Value == nil || f.Value.Sign() < 0 {
			return "", fmt.Errorf("%w: field %d must be a non-negative integer", ErrInvalidField, i)
		}

		digits := fmt.Sprintf("%X", f.Value)
		if len(digits) > f.Width {
			return "", &OverflowError{Index: i, Name: f.Name, Width: f.Width, Digits: len(digits)}
		}
		sb.WriteString(strings.Repeat("0", f.Width-len(digits)))
		sb.WriteString(digits)
	}
	return sb.String(), nil
}

// Unpack splits a Pack result back into its field values. The digit count
// must match the sum of widths exactly.
func Unpack(encoded string, widths []int) ([]*big.Int, error) {
	if !strings.HasPrefix(encoded, "0x") && !strings.HasPrefix(encoded, "0X") {
		return nil, fmt.Errorf("%w: missing 0x prefix", ErrInvalidHex)
	}
	digits := encoded[2:]

	total := 0
	for i, w := range widths {
		if w <= 0 {
			return nil, fmt.Errorf("%w: width %d at index %d", ErrInvalidField, w, i)
		}
		total += w
	}
	if len(digits) != total {
		return nil, fmt.Errorf("%w: got %d hex digits, want %d", ErrLengthMismatch, len(digits), total)
	}

	values := make([]*big.Int, 0, len(widths))
	offset := 0
	for i, w := range widths {
		chunk := digits[offset : offset+w]
		v, ok := new(big.Int).SetString(chunk, 16)
		if !ok || strings.ContainsAny(chunk, "+-_") {
			return nil, fmt.Errorf("%w: field %d %q", ErrInvalidHex, i, chunk)
		}
		values = append(values, v)
		offset += w
	}
	return values, nil
}

// LoanParams are the numeric inputs of the loan bitmap.
type LoanParams struct {
	Price     *big.Int
	Threshold *big.Int
	LTV       *big.Int
	LoanID    *big.Int
}

func (p LoanParams) fields() []Field {
	return []Field{
		{Name: "price", Value: p.Price, Width: PriceWidth},
		{Name: "threshold", Value: p.Threshold, Width: ThresholdWidth},
		{Name: "ltv", Value: p.LTV, Width: LTVWidth},
		{Name: "loanId", Value: p.LoanID, Width: LoanIDWidth},
	}
}

// PackLoan encodes p as price|threshold|ltv|loanId.
func PackLoan(p LoanParams) (string, error) {
	return Pack(p.fields()...)
}

// UnpackLoan decodes a word produced by PackLoan.
func UnpackLoan(encoded string) (LoanParams, error) {
	vals, err := Unpack(encoded, LoanWidths)
	if err != nil {
		return LoanParams{}, err
	}
	return LoanParams{Price: vals[0], Threshold: vals[1], LTV: vals[2], LoanID: vals[3]}, nil
}

// ParseLoanParams parses base-10 command-line values. All four are required.
func ParseLoanParams(price, threshold, ltv, loanID string) (LoanParams, error) {
	raw := []struct {
		name  string
		value string
	}{
		{"price", price},
		{"threshold", threshold},
		{"ltv", ltv},
		{"loanId", loanID},
	}

	parsed := make([]*big.Int, len(raw))
	for i, r := range raw {
		s := strings.TrimSpace(r.value)
		if s == "" {
			return LoanParams{}, fmt.Errorf("%w: %s", ErrMissingParam, r.name)
		}
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || v.Sign() < 0 {
			return LoanParams{}, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, r.name, r.value)
		}
		parsed[i] = v
	}
	return LoanParams{Price: parsed[0], Threshold: parsed[1], LTV: parsed[2], LoanID: parsed[3]}, nil
}
