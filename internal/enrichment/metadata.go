package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"raydium-sniper/internal/domain"
)

// DefaultMetadataBaseURL is the public GeckoTerminal API.
const DefaultMetadataBaseURL = "https://api.geckoterminal.com/api/v2"

// TokenAttributes is the market-data slice of the metadata provider
// response. Numeric fields arrive as decimal strings; missing or
// unparseable values are zero.
type TokenAttributes struct {
	Name            string
	Symbol          string
	ImageURL        string
	Decimals        int
	TotalSupply     float64
	PriceUSD        float64
	FDVUSD          float64
	MarketCapUSD    float64
	TotalReserveUSD float64
}

// TokenInfo is the community slice: social channels and holder
// distribution.
type TokenInfo struct {
	Socials        domain.SocialLinks
	Top10HolderPct float64
	DevHoldingPct  float64
	// UpdatedAt is the provider's holder-distribution timestamp in
	// unix milliseconds, zero when the provider omits it.
	UpdatedAt int64
}

// MetadataClient queries the DEX metadata provider.
type MetadataClient struct {
	baseURL    string
	network    string
	httpClient *http.Client
}

// NewMetadataClient creates a metadata provider client for the Solana
// network.
func NewMetadataClient(baseURL string) *MetadataClient {
	if baseURL == "" {
		baseURL = DefaultMetadataBaseURL
	}
	return &MetadataClient{
		baseURL: baseURL,
		network: "solana",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type tokenAttributesResponse struct {
	Data struct {
		Attributes struct {
			Name              string  `json:"name"`
			Symbol            string  `json:"symbol"`
			ImageURL          string  `json:"image_url"`
			Decimals          int     `json:"decimals"`
			TotalSupply       string  `json:"total_supply"`
			PriceUSD          string  `json:"price_usd"`
			FDVUSD            string  `json:"fdv_usd"`
			MarketCapUSD      *string `json:"market_cap_usd"`
			TotalReserveInUSD string  `json:"total_reserve_in_usd"`
		} `json:"attributes"`
	} `json:"data"`
}

type tokenInfoResponse struct {
	Data struct {
		Attributes struct {
			Websites       []string `json:"websites"`
			DiscordURL     string   `json:"discord_url"`
			TelegramHandle string   `json:"telegram_handle"`
			TwitterHandle  string   `json:"twitter_handle"`
			Holders        struct {
				DistributionPercentage struct {
					Top10 string `json:"top_10"`
					Rest  string `json:"rest"`
				} `json:"distribution_percentage"`
				LastUpdated string `json:"last_updated"`
			} `json:"holders"`
		} `json:"attributes"`
	} `json:"data"`
}

// GetAttributes fetches the token market attributes.
func (c *MetadataClient) GetAttributes(ctx context.Context, mint string) (*TokenAttributes, error) {
	endpoint := fmt.Sprintf("%s/networks/%s/tokens/%s", c.baseURL, c.network, mint)

	var parsed tokenAttributesResponse
	if err := c.get(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	attrs := parsed.Data.Attributes
	out := &TokenAttributes{
		Name:            attrs.Name,
		Symbol:          attrs.Symbol,
		ImageURL:        attrs.ImageURL,
		Decimals:        attrs.Decimals,
		TotalSupply:     parseDecimalString(attrs.TotalSupply),
		PriceUSD:        parseDecimalString(attrs.PriceUSD),
		FDVUSD:          parseDecimalString(attrs.FDVUSD),
		TotalReserveUSD: parseDecimalString(attrs.TotalReserveInUSD),
	}
	if attrs.MarketCapUSD != nil {
		out.MarketCapUSD = parseDecimalString(*attrs.MarketCapUSD)
	}
	return out, nil
}

// GetInfo fetches the token socials and holder distribution.
func (c *MetadataClient) GetInfo(ctx context.Context, mint string) (*TokenInfo, error) {
	endpoint := fmt.Sprintf("%s/networks/%s/tokens/%s/info", c.baseURL, c.network, mint)

	var parsed tokenInfoResponse
	if err := c.get(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	attrs := parsed.Data.Attributes
	return &TokenInfo{
		Socials: domain.SocialLinks{
			Websites: attrs.Websites,
			Discord:  attrs.DiscordURL,
			Telegram: attrs.TelegramHandle,
			Twitter:  attrs.TwitterHandle,
		},
		Top10HolderPct: parseDecimalString(attrs.Holders.DistributionPercentage.Top10),
		DevHoldingPct:  parseDecimalString(attrs.Holders.DistributionPercentage.Rest),
		UpdatedAt:      parseTimestamp(attrs.Holders.LastUpdated),
	}, nil
}

func (c *MetadataClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("metadata request: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode metadata response: %w", err)
	}
	return nil
}

// parseTimestamp parses the provider's RFC 3339 timestamp into unix
// milliseconds; empty or malformed input yields zero.
func parseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return ts.UnixMilli()
}

// parseDecimalString parses a provider decimal string; empty or
// malformed input yields zero.
func parseDecimalString(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
