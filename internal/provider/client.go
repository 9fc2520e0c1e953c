package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/logging"
	"github.com/crebit/ramp-service/internal/metrics"
)

// APIError is a non-2xx response from the provider. The raw body is kept
// for diagnostics and surfaced to callers verbatim.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: status %d: %s", e.Status, e.Body)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client wraps the provider's REST API. Every call is at-most-once: no
// retries, no backoff, no idempotency keys.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.Metrics
}

func NewClient(cfg Config, m *metrics.Metrics) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: m,
	}
}

func (c *Client) CreateQuote(ctx context.Context, req QuoteRequest) (*domain.Quote, error) {
	var quote domain.Quote
	if err := c.do(ctx, http.MethodPost, "/quote", req, &quote); err != nil {
		return nil, fmt.Errorf("CreateQuote: %w", err)
	}
	return &quote, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*domain.Customer, error) {
	var customer domain.Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, &customer); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}
	return &customer, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &customers); err != nil {
		return nil, fmt.Errorf("ListCustomers: %w", err)
	}
	return customers, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+id, nil, &customer); err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return &customer, nil
}

func (c *Client) CreateWallet(ctx context.Context, customerID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := c.do(ctx, http.MethodPost, "/customers/"+customerID+"/wallets", struct{}{}, &wallet); err != nil {
		return nil, fmt.Errorf("CreateWallet: %w", err)
	}
	return &wallet, nil
}

func (c *Client) ListWallets(ctx context.Context, customerID string) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID+"/wallets", nil, &wallets); err != nil {
		return nil, fmt.Errorf("ListWallets: %w", err)
	}
	return wallets, nil
}

func (c *Client) CreateExternalAccount(ctx context.Context, customerID string, req ExternalAccountRequest) (*domain.ExternalAccount, error) {
	var account domain.ExternalAccount
	if err := c.do(ctx, http.MethodPost, "/customers/"+customerID+"/external-accounts", req, &account); err != nil {
		return nil, fmt.Errorf("CreateExternalAccount: %w", err)
	}
	return &account, nil
}

func (c *Client) ListCustomerExternalAccounts(ctx context.Context, customerID string) ([]domain.ExternalAccount, error) {
	var accounts []domain.ExternalAccount
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID+"/external-accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("ListCustomerExternalAccounts: %w", err)
	}
	return accounts, nil
}

func (c *Client) ListExternalAccounts(ctx context.Context) ([]domain.ExternalAccount, error) {
	var accounts []domain.ExternalAccount
	if err := c.do(ctx, http.MethodGet, "/external-accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("ListExternalAccounts: %w", err)
	}
	return accounts, nil
}

func (c *Client) CreatePayin(ctx context.Context, req PayinRequest) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.do(ctx, http.MethodPost, "/payin", req, &tx); err != nil {
		return nil, fmt.Errorf("CreatePayin: %w", err)
	}
	return &tx, nil
}

func (c *Client) CreatePayout(ctx context.Context, req PayoutRequest) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.do(ctx, http.MethodPost, "/payout", req, &tx); err != nil {
		return nil, fmt.Errorf("CreatePayout: %w", err)
	}
	return &tx, nil
}

func (c *Client) WalletTransfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.do(ctx, http.MethodPost, "/wallet-transfer", req, &tx); err != nil {
		return nil, fmt.Errorf("WalletTransfer: %w", err)
	}
	return &tx, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/"+id, nil, &tx); err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return &tx, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	// The provider expects the raw API key, not a Bearer prefix.
	req.Header.Set("Authorization", c.cfg.APIKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveProviderRequest(method+" "+path, time.Since(start))
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	log := logging.FromContext(ctx)
	log.Debug("provider response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}
	return nil
}
