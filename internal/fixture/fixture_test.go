package fixture

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFixture() *Fixture {
	return &Fixture{
		Currency:     "0x0000000000000000000000000000000000000000",
		Approval:     "0",
		ApprovalTo:   "0xrouter",
		ApprovalData: "0x",
		BlockNumber:  "19000000",
		NFTAsset:     "0xed5af388653567af2f388e6224dc7c4b3241c544",
		NFTTokenID:   "4753",
		From:         "0xtaker",
		To:           "0xrouter",
		Data:         "0xdeadbeef",
		Price:        "1100",
		Value:        "1100",
	}
}

func TestWriter_Path(t *testing.T) {
	w := NewWriter("exec")
	assert.Equal(t,
		filepath.Join("exec", "buy_test_data_0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2.json"),
		w.Path("buy", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"))
}

func TestWriter_WriteCreatesDirAndCompactJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exec")
	w := NewWriter(dir)

	path, err := w.Write("sell", "0x0", sampleFixture())
	require.NoError(t, err)
	assert.Equal(t, w.Path("sell", "0x0"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "\n"), "compact JSON")
	assert.True(t, strings.HasPrefix(string(raw), `{"currency":"0x0000000000000000000000000000000000000000","approval":"0"`))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm()&0o700, "owner rwx")
	}
}

func TestWriter_WriteReplacesPrevious(t *testing.T) {
	w := NewWriter(t.TempDir())

	first := sampleFixture()
	first.Data = strings.Repeat("ab", 200)
	_, err := w.Write("buy", "0x0", first)
	require.NoError(t, err)

	second := sampleFixture()
	_, err = w.Write("buy", "0x0", second)
	require.NoError(t, err)

	got, err := w.Read("buy", "0x0")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestWriter_NilFixture(t *testing.T) {
	_, err := NewWriter(t.TempDir()).Write("buy", "0x0", nil)
	assert.Error(t, err)
}
