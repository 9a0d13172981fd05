package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrNotApproval = errors.New("calldata is not an ERC20 approve call")

const erc20ApproveABI = `[{
  "inputs": [
    {"internalType": "address", "name": "spender", "type": "address"},
    {"internalType": "uint256", "name": "amount", "type": "uint256"}
  ],
  "name": "approve",
  "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
  "stateMutability": "nonpayable",
  "type": "function"
}]`

var erc20ABI = mustParseABI(erc20ApproveABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid ERC20 ABI: " + err.Error())
	}
	return parsed
}

// Approval is a decoded approve(spender, amount) call.
type Approval struct {
	Spender common.Address
	Amount  *big.Int
}

// DecodeApproval decodes 0x-prefixed calldata of an ERC20 approve call.
func DecodeApproval(calldata string) (Approval, error) {
	data, err := hexutil.Decode(calldata)
	if err != nil {
		return Approval{}, fmt.Errorf("decode calldata: %w", err)
	}
	if len(data) < 4 {
		return Approval{}, fmt.Errorf("%w: %d bytes", ErrNotApproval, len(data))
	}

	method, err := erc20ABI.MethodById(data[:4])
	if err != nil || method.Name != "approve" {
		return Approval{}, fmt.Errorf("%w: selector %x", ErrNotApproval, data[:4])
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return Approval{}, fmt.Errorf("unpack approve args: %w", err)
	}
	spender, ok1 := args[0].(common.Address)
	amount, ok2 := args[1].(*big.Int)
	if !ok1 || !ok2 {
		return Approval{}, fmt.Errorf("%w: unexpected argument types", ErrNotApproval)
	}
	return Approval{Spender: spender, Amount: amount}, nil
}

// EncodeApproval builds approve(spender, amount) calldata.
func EncodeApproval(spender common.Address, amount *big.Int) (string, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}
