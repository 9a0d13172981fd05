package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"
)

// ValidateRPCURL rejects URLs that cannot be a JSON-RPC endpoint.
func ValidateRPCURL(rpcURL string) error {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return fmt.Errorf("RPC URL missing (set RPC_MAINNET in .env)")
	}
	if !strings.HasPrefix(rpcURL, "http") && !strings.HasPrefix(rpcURL, "ws") {
		return fmt.Errorf("RPC URL must be http(s)://... or ws(s)://..., got %q", rpcURL)
	}
	if strings.Contains(rpcURL, "YOUR_KEY") {
		return fmt.Errorf("RPC URL still contains placeholder YOUR_KEY")
	}
	return nil
}

// Dial connects to a mainnet JSON-RPC provider. The returned client serves
// BlockNumber for fixture generation; callers must Close it.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	if err := ValidateRPCURL(rpcURL); err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, strings.TrimSpace(rpcURL))
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	return client, nil
}
