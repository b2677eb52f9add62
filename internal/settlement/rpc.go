package settlement

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/internal/infra"
)

// ChainRPC settles trades on a real chain node: submissions go out over
// HTTP, confirmations come back over the node's websocket stream. A circuit
// breaker isolates a failing node and a rate limiter keeps us under its
// per-IP cap.
type ChainRPC struct {
	rpcURL        string
	chainID       string
	admin         string
	signingKey    []byte
	submitTimeout time.Duration

	client   *http.Client
	breaker  *infra.CircuitBreaker
	limiter  *infra.RateLimiter
	listener *confirmListener
	worker   *infra.BaseWSWorker
}

// ChainConfig carries the connection settings for a chain node.
type ChainConfig struct {
	RPCURL           string
	WSURL            string
	ChainID          string
	AdminAccount     string
	SigningKey       string
	SubmitTimeoutSec int
}

// NewChainRPC connects the confirmation stream and returns a ready backend.
func NewChainRPC(ctx context.Context, cfg ChainConfig) (*ChainRPC, error) {
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("chain settlement requires a signing key")
	}
	timeout := time.Duration(cfg.SubmitTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	listener := newConfirmListener(cfg.WSURL, cfg.ChainID)
	worker := infra.NewBaseWSWorker(listener)
	worker.Start(ctx)

	return &ChainRPC{
		rpcURL:        cfg.RPCURL,
		chainID:       cfg.ChainID,
		admin:         cfg.AdminAccount,
		signingKey:    []byte(cfg.SigningKey),
		submitTimeout: timeout,
		client:        &http.Client{Timeout: 10 * time.Second},
		breaker:       infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("settlement-rpc")),
		limiter:       infra.GetSettlementSubmitLimiter(),
		listener:      listener,
		worker:        worker,
	}, nil
}

// submitRequest is the broadcast payload. The signature covers the JSON body
// so the node can verify the submitting operator.
type submitRequest struct {
	ChainID    string            `json:"chain_id"`
	Admin      string            `json:"admin"`
	Submission domain.Submission `json:"submission"`
	Signature  string            `json:"signature"`
}

// Submit broadcasts the trade and blocks until the node confirms it or the
// submit timeout elapses.
func (c *ChainRPC) Submit(ctx context.Context, sub domain.Submission) (domain.SettlementResult, error) {
	if !c.breaker.Allow() {
		return domain.SettlementResult{}, fmt.Errorf("%w: settlement node circuit open",
			domain.ErrSettlementRejected)
	}
	c.limiter.Wait()

	// Register before broadcasting so a fast confirmation cannot race past us.
	confirmCh, cancel := c.listener.await(sub.IdempotencyKey)
	defer cancel()

	if err := c.broadcast(ctx, sub); err != nil {
		c.breaker.RecordFailure()
		return domain.SettlementResult{}, err
	}

	timer := time.NewTimer(c.submitTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return domain.SettlementResult{}, fmt.Errorf("%w: %v", domain.ErrSettlementTimeout, ctx.Err())
	case <-timer.C:
		c.breaker.RecordFailure()
		return domain.SettlementResult{}, fmt.Errorf("%w: no confirmation within %s",
			domain.ErrSettlementTimeout, c.submitTimeout)
	case conf := <-confirmCh:
		c.breaker.RecordSuccess()
		if conf.Status != "CONFIRMED" {
			return domain.SettlementResult{}, fmt.Errorf("%w: %s",
				domain.ErrSettlementRejected, conf.Reason)
		}
		return domain.SettlementResult{Ref: conf.Ref}, nil
	}
}

func (c *ChainRPC) broadcast(ctx context.Context, sub domain.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("%w: marshal submission: %v", domain.ErrSettlementRejected, err)
	}

	req := submitRequest{
		ChainID:    c.chainID,
		Admin:      c.admin,
		Submission: sub,
		Signature:  c.sign(body),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", domain.ErrSettlementRejected, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.rpcURL+"/v1/settlements", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSettlementRejected, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: broadcast: %v", domain.ErrSettlementRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: node returned %d: %s",
			domain.ErrSettlementRejected, resp.StatusCode, msg)
	}
	return nil
}

// sign returns the hex HMAC-SHA256 of the body under the operator key.
func (c *ChainRPC) sign(body []byte) string {
	mac := hmac.New(sha256.New, c.signingKey)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Close stops the confirmation stream and wipes the signing key.
func (c *ChainRPC) Close() error {
	c.worker.Stop()
	for i := range c.signingKey {
		c.signingKey[i] = 0
	}
	return nil
}
