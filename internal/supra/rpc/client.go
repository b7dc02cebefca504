package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// SupraCoin is the native gas coin, used for balance checks before faucet
// funding on test networks.
const SupraCoin = "0x1::supra_coin::SupraCoin"

// Transaction statuses reported by the chain.
const (
	StatusSuccess = "Success"
	StatusPending = "Pending"
	StatusFailed  = "Fail"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type accountInfo struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// SequenceNumber returns the on-chain sequence number for an account. A
// 404 means the account has never transacted; that maps to sequence 0.
func (c *Client) SequenceNumber(ctx context.Context, address string) (uint64, error) {
	var info accountInfo
	found, err := c.get(ctx, "/rpc/v1/accounts/"+url.PathEscape(address), &info)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	seq, err := strconv.ParseUint(info.SequenceNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sequence number %q: %w", info.SequenceNumber, err)
	}
	return seq, nil
}

// CoinBalance returns the balance of a coin type in its smallest units.
// Missing accounts and missing coin stores both read as zero.
func (c *Client) CoinBalance(ctx context.Context, address, coinType string) (uint64, error) {
	var resp struct {
		Balance string `json:"balance"`
	}
	path := "/rpc/v1/accounts/" + url.PathEscape(address) + "/coin_balance?coin_type=" + url.QueryEscape(coinType)
	found, err := c.get(ctx, path, &resp)
	if err != nil {
		return 0, err
	}
	if !found || resp.Balance == "" {
		return 0, nil
	}
	balance, err := strconv.ParseUint(resp.Balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", resp.Balance, err)
	}
	return balance, nil
}

// Faucet requests test funds for an address. Only meaningful on networks
// with the faucet flag set.
func (c *Client) Faucet(ctx context.Context, address string) (string, error) {
	var resp struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if _, err := c.get(ctx, "/rpc/v1/wallet/faucet/"+url.PathEscape(address), &resp); err != nil {
		return "", err
	}
	return resp.TransactionHash, nil
}

// SubmitTransaction posts a BCS-encoded signed transaction and returns
// the transaction hash.
func (c *Client) SubmitTransaction(ctx context.Context, signed []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/v1/transactions/submit", bytes.NewReader(signed))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x.supra.signed_transaction+bcs")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	// The node answers with either a bare hash string or an object
	// wrapping it, depending on version.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	var hash string
	if err := json.Unmarshal(body, &hash); err == nil && hash != "" {
		return hash, nil
	}
	var wrapped struct {
		Hash string `json:"txn_hash"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if wrapped.Hash == "" {
		return "", fmt.Errorf("submit response missing hash: %s", string(body))
	}
	return wrapped.Hash, nil
}

// TransactionStatus returns the chain status for a transaction hash, or
// StatusPending if the node has not seen it yet.
func (c *Client) TransactionStatus(ctx context.Context, hash string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	found, err := c.get(ctx, "/rpc/v1/transactions/"+url.PathEscape(hash), &resp)
	if err != nil {
		return "", err
	}
	if !found || resp.Status == "" {
		return StatusPending, nil
	}
	return resp.Status, nil
}

// get decodes a JSON GET response into out. It reports found=false for
// 404 without error so callers can treat absence as a value.
func (c *Client) get(ctx context.Context, path string, out any) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return false, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
