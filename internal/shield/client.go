// Package shield talks to the Ruster Shield honeypot-check API and reduces
// its verdicts to a trade / no-trade decision.
package shield

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

// The upstream runs a buy/sell simulation per check, so the timeout is
// deliberately generous.
const checkTimeout = 60 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: checkTimeout},
	}
}

type checkRequest struct {
	TokenAddress  string `json:"token_address"`
	ChainID       int64  `json:"chain_id"`
	TestAmountETH string `json:"test_amount_eth"`
}

type checkResponse struct {
	Success bool                  `json:"success"`
	Data    *models.SafetyVerdict `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Check submits a token for simulation-backed risk analysis. Any transport
// failure, timeout or error envelope yields an error; the caller treats a
// missing verdict as unsafe and skips the token.
func (c *Client) Check(ctx context.Context, tokenAddress string, chainID int64) (*models.SafetyVerdict, error) {
	body, err := json.Marshal(checkRequest{
		TokenAddress:  tokenAddress,
		ChainID:       chainID,
		TestAmountETH: "0.1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/honeypot/check", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("honeypot check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("honeypot check returned status %d", resp.StatusCode)
	}

	var envelope checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode check response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		if envelope.Error != nil {
			return nil, fmt.Errorf("honeypot check rejected: %s", envelope.Error.Message)
		}
		return nil, fmt.Errorf("honeypot check returned no verdict")
	}

	return envelope.Data, nil
}
