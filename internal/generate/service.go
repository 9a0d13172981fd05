package generate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/UnlockdFinance/unlockd-v2/internal/chain"
	"github.com/UnlockdFinance/unlockd-v2/internal/fixture"
	"github.com/UnlockdFinance/unlockd-v2/internal/metrics"
	"github.com/UnlockdFinance/unlockd-v2/internal/reservoir"
)

var (
	ErrMissingParam = errors.New("all params are required")
	ErrInvalidNFT   = errors.New("nft must be formatted contract:tokenId")
	ErrEmptyQuote   = errors.New("marketplace returned no executable path")
)

// QuoteSource returns execute data for a trade.
type QuoteSource interface {
	Execute(ctx context.Context, action reservoir.Action, req *reservoir.ExecuteRequest) (*reservoir.ExecuteResponse, error)
}

// BlockNumberer reports the current chain head.
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// PriceAdjuster pads a raw quote with slippage.
type PriceAdjuster interface {
	AdjustPrice(rawPrice, currency string) (string, error)
}

// FixtureWriter persists a fixture and returns where it went.
type FixtureWriter interface {
	Write(action, currency string, f *fixture.Fixture) (string, error)
}

// Request holds the generate command's parameters.
type Request struct {
	Action   string
	NFT      string // contract:tokenId
	Taker    string
	Currency string
}

// Validate checks the parameters without contacting any service.
func (r Request) Validate() error {
	_, _, _, err := validate(r)
	return err
}

// Result is what a successful run produced.
type Result struct {
	Path    string
	Fixture *fixture.Fixture
}

// Service turns a marketplace quote into a contract-test fixture.
type Service struct {
	logger  *zap.Logger
	quotes  QuoteSource
	blocks  BlockNumberer
	pricing PriceAdjuster
	writer  FixtureWriter
}

func NewService(
	logger *zap.Logger,
	quotes QuoteSource,
	blocks BlockNumberer,
	pricing PriceAdjuster,
	writer FixtureWriter,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:  logger,
		quotes:  quotes,
		blocks:  blocks,
		pricing: pricing,
		writer:  writer,
	}
}

// Generate fetches execute data for req, prices it and writes the fixture.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	action, contract, tokenID, err := validate(req)
	if err != nil {
		metrics.IncGenerateFailure("validate")
		return nil, err
	}

	log := s.logger.With(
		zap.String("action", string(action)),
		zap.String("nft", req.NFT),
		zap.String("currency", req.Currency),
	)

	log.Info("generate.fetching_quote")
	resp, err := s.quotes.Execute(ctx, action, reservoir.NewExecuteRequest(req.NFT, req.Taker, req.Currency))
	if err != nil {
		metrics.IncGenerateFailure("quote")
		return nil, fmt.Errorf("fetch %s data: %w", action, err)
	}

	path, ok := resp.LastPath()
	if !ok {
		metrics.IncGenerateFailure("quote")
		return nil, fmt.Errorf("%w: empty path", ErrEmptyQuote)
	}
	trade, ok := resp.LastStepItem()
	if !ok || trade.Data == nil {
		metrics.IncGenerateFailure("quote")
		return nil, fmt.Errorf("%w: no trade step", ErrEmptyQuote)
	}

	log.Info("generate.storing", zap.String("raw_price", path.RawPrice()))

	block, err := s.blocks.BlockNumber(ctx)
	if err != nil {
		metrics.IncGenerateFailure("block_number")
		return nil, fmt.Errorf("get block number: %w", err)
	}

	price, err := s.pricing.AdjustPrice(path.RawPrice(), req.Currency)
	if err != nil {
		metrics.IncGenerateFailure("pricing")
		return nil, fmt.Errorf("adjust price: %w", err)
	}
	log.Debug("generate.price_adjusted",
		zap.String("raw_price", path.RawPrice()),
		zap.String("price", price))

	f := &fixture.Fixture{
		Currency:    req.Currency,
		BlockNumber: strconv.FormatUint(block, 10),
		NFTAsset:    contract,
		NFTTokenID:  tokenID,
		From:        trade.Data.From,
		To:          trade.Data.To,
		Data:        trade.Data.Data,
		Price:       price,
		Value:       "0",
	}
	if !trade.Data.Value.IsZero() {
		f.Value = price
	}

	switch action {
	case reservoir.ActionBuy:
		if err := fillBuyApproval(f, resp); err != nil {
			metrics.IncGenerateFailure("approval")
			return nil, err
		}
	case reservoir.ActionSell:
		f.Approval = "0"
		f.ApprovalTo = trade.Data.To
		f.ApprovalData = "0x"
	}

	out, err := s.writer.Write(string(action), req.Currency, f)
	if err != nil {
		metrics.IncGenerateFailure("write")
		return nil, err
	}

	metrics.IncFixtureGenerated(string(action))
	log.Info("generate.fixture_written",
		zap.String("path", out),
		zap.String("block", f.BlockNumber),
		zap.String("price", price))

	return &Result{Path: out, Fixture: f}, nil
}

// fillBuyApproval copies the first step's transaction as the approval. When
// the quote has more than one step that transaction is an ERC20 approve and
// its spender becomes the approval value.
func fillBuyApproval(f *fixture.Fixture, resp *reservoir.ExecuteResponse) error {
	first, ok := resp.FirstStepItem()
	if !ok || first.Data == nil {
		return fmt.Errorf("%w: no approval step", ErrEmptyQuote)
	}
	f.ApprovalTo = first.Data.To
	f.ApprovalData = first.Data.Data
	f.Approval = "0"

	if len(resp.Steps) > 1 {
		approval, err := chain.DecodeApproval(first.Data.Data)
		if err != nil {
			return fmt.Errorf("decode approval: %w", err)
		}
		f.Approval = approval.Spender.Hex()
	}
	return nil
}

func validate(req Request) (reservoir.Action, string, string, error) {
	if strings.TrimSpace(req.Action) == "" || strings.TrimSpace(req.NFT) == "" ||
		strings.TrimSpace(req.Taker) == "" || strings.TrimSpace(req.Currency) == "" {
		return "", "", "", ErrMissingParam
	}

	action, err := reservoir.ParseAction(req.Action)
	if err != nil {
		return "", "", "", err
	}

	contract, tokenID, ok := strings.Cut(req.NFT, ":")
	if !ok || contract == "" || tokenID == "" || strings.Contains(tokenID, ":") {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidNFT, req.NFT)
	}
	return action, contract, tokenID, nil
}
