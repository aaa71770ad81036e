// Package enrichment resolves off-chain market data for a staged token:
// pool liquidity from the Raydium pools API and token metadata from the
// DEX metadata provider.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"raydium-sniper/internal/discovery"
)

// DefaultRaydiumBaseURL is the public Raydium V3 API.
const DefaultRaydiumBaseURL = "https://api-v3.raydium.io"

// PoolMatch is the liquidity data of a token/WSOL pool.
type PoolMatch struct {
	PoolID      string
	TVL         float64 // pool liquidity in USD
	BurnPercent float64 // share of LP tokens burned (locked)
}

// RaydiumClient queries the Raydium pools API.
type RaydiumClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRaydiumClient creates a Raydium pools API client.
func NewRaydiumClient(baseURL string) *RaydiumClient {
	if baseURL == "" {
		baseURL = DefaultRaydiumBaseURL
	}
	return &RaydiumClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// raydiumPoolsResponse mirrors the pools/info/mint payload. Only the
// fields the pipeline reads are declared.
type raydiumPoolsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Count int `json:"count"`
		Data  []struct {
			ID          string  `json:"id"`
			TVL         float64 `json:"tvl"`
			BurnPercent float64 `json:"burnPercent"`
		} `json:"data"`
	} `json:"data"`
}

// PoolInfo looks up the mint/WSOL pool. Returns (nil, nil) when no pool
// exists yet; the caller polls until a match appears.
func (c *RaydiumClient) PoolInfo(ctx context.Context, mint string) (*PoolMatch, error) {
	q := url.Values{}
	q.Set("mint1", mint)
	q.Set("mint2", discovery.WSOLMint)
	q.Set("poolType", "all")
	q.Set("poolSortField", "default")
	q.Set("sortType", "desc")
	q.Set("pageSize", "10")
	q.Set("page", "1")

	endpoint := fmt.Sprintf("%s/pools/info/mint?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pools request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("pools request: unexpected status %d", resp.StatusCode)
	}

	var parsed raydiumPoolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode pools response: %w", err)
	}

	if !parsed.Success || len(parsed.Data.Data) == 0 {
		return nil, nil
	}

	pool := parsed.Data.Data[0]
	return &PoolMatch{
		PoolID:      pool.ID,
		TVL:         pool.TVL,
		BurnPercent: pool.BurnPercent,
	}, nil
}
