package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Approval calldata ────────────────────────────────────────────────────────

func TestDecodeApproval_RoundTrip(t *testing.T) {
	spender := common.HexToAddress("0x1E0049783F008A0085193E00003D00cd54003c71")
	amount, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

	calldata, err := EncodeApproval(spender, amount)
	require.NoError(t, err)
	assert.Equal(t, "0x095ea7b3", calldata[:10])

	got, err := DecodeApproval(calldata)
	require.NoError(t, err)
	assert.Equal(t, spender, got.Spender)
	assert.Equal(t, 0, amount.Cmp(got.Amount))
}

func TestDecodeApproval_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		calldata string
	}{
		{"no prefix", "095ea7b3"},
		{"too short", "0x095e"},
		{"other selector", "0xa9059cbb" + "00"},
		{"truncated args", "0x095ea7b3" + "0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeApproval(tt.calldata)
			assert.Error(t, err)
		})
	}
}

// ─── RPC URL ──────────────────────────────────────────────────────────────────

func TestValidateRPCURL(t *testing.T) {
	assert.NoError(t, ValidateRPCURL("https://eth-mainnet.g.alchemy.com/v2/abc"))
	assert.NoError(t, ValidateRPCURL("wss://mainnet.infura.io/ws/v3/abc"))
	assert.Error(t, ValidateRPCURL(""))
	assert.Error(t, ValidateRPCURL("mainnet.infura.io"))
	assert.Error(t, ValidateRPCURL("https://eth-mainnet.g.alchemy.com/v2/YOUR_KEY"))
}

func TestDial_InvalidURL(t *testing.T) {
	_, err := Dial(context.Background(), "ftp://nope")
	assert.Error(t, err)
}
