package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileMode matches the permissions of fixtures produced by earlier tooling.
const FileMode fs.FileMode = 0o755

// Fixture is the test-data record consumed by the contract test suite.
// All amounts are decimal strings in the currency's smallest unit.
type Fixture struct {
	Currency     string `json:"currency"`
	Approval     string `json:"approval"`
	ApprovalTo   string `json:"approvalTo"`
	ApprovalData string `json:"approvalData"`
	BlockNumber  string `json:"blockNumber"`
	NFTAsset     string `json:"nftAsset"`
	NFTTokenID   string `json:"nftTokenId"`
	From         string `json:"from"`
	To           string `json:"to"`
	Data         string `json:"data"`
	Price        string `json:"price"`
	Value        string `json:"value"`
}

// Writer stores fixtures under a directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir}
}

// Path returns {dir}/{action}_test_data_{currency}.json.
func (w *Writer) Path(action, currency string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_test_data_%s.json", action, currency))
}

// Write replaces any previous fixture for action and currency and returns
// the path written.
func (w *Writer) Write(action, currency string, f *Fixture) (string, error) {
	if f == nil {
		return "", errors.New("fixture: nil record")
	}
	path := w.Path(action, currency)

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove previous fixture: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create fixture dir: %w", err)
	}

	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, FileMode); err != nil {
		return "", fmt.Errorf("write fixture: %w", err)
	}
	return path, nil
}

// Read loads a fixture previously written for action and currency.
func (w *Writer) Read(action, currency string) (*Fixture, error) {
	data, err := os.ReadFile(w.Path(action, currency))
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}
