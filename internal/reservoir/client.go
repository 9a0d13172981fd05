package reservoir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UnlockdFinance/unlockd-v2/internal/httpclient"
	"github.com/UnlockdFinance/unlockd-v2/internal/metrics"
	"github.com/UnlockdFinance/unlockd-v2/internal/rate"
	"github.com/UnlockdFinance/unlockd-v2/pkg/utils"
)

// Options configures the HTTP behaviour of a Client.
type Options struct {
	Timeout  time.Duration
	RetryMax int
}

// Client wraps HTTP communication with the Reservoir marketplace API.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
	rateKey string
}

// NewClient constructs a Reservoir client for baseURL authenticated with apiKey.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, baseURL, apiKey string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: opts.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, opts.RetryMax, "reservoir", func(status int, body []byte) error {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("reservoir.client_error",
			zap.Int("status", status),
			zap.String("error", errResp.Error),
			zap.String("message", errResp.Message))

		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = string(body)
		}
		return &APIError{Status: status, Message: msg}
	})

	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		rateKey: "reservoir:" + utils.MaskKey(apiKey),
	}
}

// Execute fetches the fill path and transaction steps for a buy or sell.
// POST /execute/{action}/v7
func (c *Client) Execute(ctx context.Context, action Action, req *ExecuteRequest) (*ExecuteResponse, error) {
	if action != ActionBuy && action != ActionSell {
		return nil, fmt.Errorf("unsupported action %q", action)
	}
	endpoint := "execute_" + string(action)

	start := time.Now()
	var resp ExecuteResponse
	err := c.postJSON(ctx, "/execute/"+string(action)+"/v7", req, &resp)
	metrics.ObserveDuration(metrics.ReservoirRequestDuration, start, endpoint)
	if err != nil {
		metrics.IncReservoirRequest(endpoint, "error")
		return nil, err
	}
	metrics.IncReservoirRequest(endpoint, "ok")

	c.logger.Debug("reservoir.execute_ok",
		zap.String("action", string(action)),
		zap.Int("path_len", len(resp.Path)),
		zap.Int("steps", len(resp.Steps)))
	return &resp, nil
}

// ExecuteBuy is Execute with ActionBuy.
func (c *Client) ExecuteBuy(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	return c.Execute(ctx, ActionBuy, req)
}

// ExecuteSell is Execute with ActionSell.
func (c *Client) ExecuteSell(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	return c.Execute(ctx, ActionSell, req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.exec.DoJSON(ctx, req, c.rateKey, out)
}
