package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("PUSHGATEWAY_URL", "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "0.0.1\n", out)
}

func TestRun_NoCommand(t *testing.T) {
	code, _, errOut := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "lend")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown command "lend"`)
}

// ─── bitmap ───────────────────────────────────────────────────────────────────

func TestRun_Bitmap(t *testing.T) {
	code, out, _ := runCLI(t, "-v", "bitmap", "--price", "1", "--threshold", "2", "--ltv", "3", "--loanId", "4")
	require.Equal(t, 0, code)

	want := "Result: 0x" + strings.Repeat("0", 54) + "1" + "02" + "03" + "00004\n"
	assert.Equal(t, want, out)
}

func TestRun_BitmapMissingParam(t *testing.T) {
	code, out, errOut := runCLI(t, "bitmap", "--price", "1", "--threshold", "2", "--ltv", "3")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "loanId")
}

func TestRun_BitmapOverflow(t *testing.T) {
	code, out, errOut := runCLI(t, "bitmap", "--price", "1", "--threshold", "256", "--ltv", "3", "--loanId", "4")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "threshold")
}

func TestRun_BitmapDecodeRoundTrip(t *testing.T) {
	code, out, _ := runCLI(t, "bitmap", "--price", "1000000000000000000", "--threshold", "80", "--ltv", "60", "--loanId", "77")
	require.Equal(t, 0, code)
	encoded := strings.TrimSpace(strings.TrimPrefix(out, "Result: "))

	code, out, _ = runCLI(t, "bitmap-decode", "--data", encoded)
	require.Equal(t, 0, code)
	assert.Equal(t, "price: 1000000000000000000\nthreshold: 80\nltv: 60\nloanId: 77\n", out)
}

func TestRun_BitmapDecodeBadLength(t *testing.T) {
	code, _, errOut := runCLI(t, "bitmap-decode", "--data", "0x01")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "hex digits")
}

// ─── generate ─────────────────────────────────────────────────────────────────

func TestRun_GenerateMissingParams(t *testing.T) {
	code, _, errOut := runCLI(t, "generate", "--nft", "0xabc:1", "--address", "0xtaker", "--currency", "0x0")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "all params are required")
}

func TestRun_GenerateMissingRPC(t *testing.T) {
	t.Setenv("RPC_MAINNET", "")
	t.Setenv("RESERVOIR_API_KEY", "key")
	code, _, errOut := runCLI(t, "generate",
		"--action", "buy", "--nft", "0xabc:1", "--address", "0xtaker", "--currency", "0x0")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "RPC_MAINNET")
}
