package reservoir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Action selects the execute endpoint.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// ParseAction accepts "buy" or "sell" in any case.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	default:
		return "", fmt.Errorf("unsupported action %q (want buy or sell)", s)
	}
}

//
// ────────────────────────────────────────────────
//   Execute Request
// ────────────────────────────────────────────────
//

// ExecuteRequest is the payload for POST /execute/{buy,sell}/v7.
type ExecuteRequest struct {
	Items                 []Item `json:"items"`
	OnlyPath              bool   `json:"onlyPath"`
	NormalizeRoyalties    bool   `json:"normalizeRoyalties"`
	AllowInactiveOrderIDs bool   `json:"allowInactiveOrderIds"`
	Partial               bool   `json:"partial"`
	SkipBalanceCheck      bool   `json:"skipBalanceCheck"`
	ExcludeEOA            bool   `json:"excludeEOA"`
	Taker                 string `json:"taker"`
	ForceRouter           bool   `json:"forceRouter"`
	Currency              string `json:"currency"`
	SwapProvider          string `json:"swapProvider"`
}

// Item is a token to trade, formatted "contract:tokenId".
type Item struct {
	Quantity int    `json:"quantity"`
	Token    string `json:"token"`
}

// NewExecuteRequest builds a single-token request routed through the
// marketplace router with Uniswap as swap provider.
func NewExecuteRequest(token, taker, currency string) *ExecuteRequest {
	return &ExecuteRequest{
		Items:                 []Item{{Quantity: 1, Token: token}},
		OnlyPath:              false,
		NormalizeRoyalties:    true,
		AllowInactiveOrderIDs: false,
		Partial:               false,
		SkipBalanceCheck:      true,
		ExcludeEOA:            true,
		Taker:                 taker,
		ForceRouter:           true,
		Currency:              currency,
		SwapProvider:          "uniswap",
	}
}

//
// ────────────────────────────────────────────────
//   Execute Response
// ────────────────────────────────────────────────
//

// ExecuteResponse is the response of the execute endpoints.
type ExecuteResponse struct {
	RequestID string     `json:"requestId,omitempty"`
	Path      []PathItem `json:"path"`
	Steps     []Step     `json:"steps"`
}

// PathItem describes one order on the fill path.
type PathItem struct {
	OrderID       string    `json:"orderId,omitempty"`
	Contract      string    `json:"contract,omitempty"`
	TokenID       string    `json:"tokenId,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	Source        string    `json:"source,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	QuoteCurrency string    `json:"buyInCurrency,omitempty"`
	TotalRawPrice RawAmount `json:"totalRawPrice,omitempty"`
	BuyInRawQuote RawAmount `json:"buyInRawQuote,omitempty"`
}

// RawPrice returns the quote in the requested currency when the marketplace
// swapped, otherwise the order's own raw price.
func (p PathItem) RawPrice() string {
	if p.BuyInRawQuote != "" {
		return string(p.BuyInRawQuote)
	}
	return string(p.TotalRawPrice)
}

// Step groups transactions of one kind (approval, sale, …).
type Step struct {
	ID          string     `json:"id"`
	Action      string     `json:"action,omitempty"`
	Description string     `json:"description,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Items       []StepItem `json:"items"`
}

// StepItem is one transaction to be signed and sent.
type StepItem struct {
	Status string  `json:"status,omitempty"`
	Data   *TxData `json:"data,omitempty"`
}

// TxData is the unsigned transaction of a step item.
type TxData struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Data  string    `json:"data"`
	Value RawAmount `json:"value,omitempty"`
}

// LastPath returns the last path entry.
func (r *ExecuteResponse) LastPath() (PathItem, bool) {
	if r == nil || len(r.Path) == 0 {
		return PathItem{}, false
	}
	return r.Path[len(r.Path)-1], true
}

// FirstStepItem returns the first item of the first step.
func (r *ExecuteResponse) FirstStepItem() (StepItem, bool) {
	if r == nil || len(r.Steps) == 0 || len(r.Steps[0].Items) == 0 {
		return StepItem{}, false
	}
	return r.Steps[0].Items[0], true
}

// LastStepItem returns the last item of the last step, which carries the
// trade transaction.
func (r *ExecuteResponse) LastStepItem() (StepItem, bool) {
	if r == nil || len(r.Steps) == 0 {
		return StepItem{}, false
	}
	items := r.Steps[len(r.Steps)-1].Items
	if len(items) == 0 {
		return StepItem{}, false
	}
	return items[len(items)-1], true
}

// RawAmount is an integer amount in smallest units. The API sends these both
// as JSON strings and as JSON numbers.
type RawAmount string

func (a *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("raw amount: %w", err)
	}
	*a = RawAmount(n.String())
	return nil
}

// IsZero reports whether the amount is absent or zero.
func (a RawAmount) IsZero() bool {
	s := strings.TrimSpace(string(a))
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return strings.Trim(s, "0") == ""
}

//
// ────────────────────────────────────────────────
//   Error Response
// ────────────────────────────────────────────────
//

// ErrorResponse is the body of a 4xx response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
}

// APIError is returned for 4xx responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reservoir returned %d: %s", e.Status, e.Message)
}
