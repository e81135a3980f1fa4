// Package dexscreener fetches latest-pair listings from the DexScreener
// REST API. The payload is treated as untrusted: every field may be absent
// or null and is mapped defensively.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sial-ari/evm-token-sniper/internal/config"
	"github.com/sial-ari/evm-token-sniper/internal/models"
)

const fetchTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: fetchTimeout},
		now:     time.Now,
	}
}

type pairsResponse struct {
	Pairs []rawPair `json:"pairs"`
}

type rawPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd  string `json:"priceUsd"`
	Liquidity *struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PairCreatedAt int64 `json:"pairCreatedAt"`
}

// LatestPairs returns the current latest-pairs listing for a chain, mapped
// to candidates with the pair age precomputed. Pairs with no creation
// timestamp are dropped here, before the scanner ever sees them; the drop
// never touches the seen-set, so such a pair still surfaces on a later poll
// once the listing carries a timestamp. All other filtering is the
// scanner's job.
func (c *Client) LatestPairs(ctx context.Context, chain config.Chain) ([]models.CandidatePair, error) {
	url := fmt.Sprintf("%s/pairs/%s", c.baseURL, chain.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pairs request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pairs fetch failed for %s: %w", chain.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pairs fetch for %s returned status %d", chain.Name, resp.StatusCode)
	}

	var payload pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode pairs response for %s: %w", chain.Name, err)
	}

	now := c.now()
	candidates := make([]models.CandidatePair, 0, len(payload.Pairs))
	for _, p := range payload.Pairs {
		if p.PairCreatedAt <= 0 {
			continue
		}
		created := time.UnixMilli(p.PairCreatedAt)
		age := now.Sub(created).Minutes()

		var liquidity float64
		if p.Liquidity != nil {
			liquidity = p.Liquidity.USD
		}

		price, _ := strconv.ParseFloat(p.PriceUsd, 64)

		candidates = append(candidates, models.CandidatePair{
			Chain:          chain.Name,
			ChainID:        chain.ChainID,
			PairAddress:    p.PairAddress,
			TokenAddress:   p.BaseToken.Address,
			TokenName:      defaultIfEmpty(p.BaseToken.Name, "Unknown"),
			TokenSymbol:    defaultIfEmpty(p.BaseToken.Symbol, "???"),
			PriceUSD:       price,
			LiquidityUSD:   liquidity,
			Volume24hUSD:   p.Volume.H24,
			PairAgeMinutes: age,
			DexID:          defaultIfEmpty(p.DexID, "unknown"),
		})
	}
	return candidates, nil
}

func defaultIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
