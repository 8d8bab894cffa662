package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"driftbot/internal/market"
)

const (
	exchangeInfoPath = "/api/v3/exchangeInfo"
	systemStatusPath = "/sapi/v1/system/status"
	accountPath      = "/api/v3/account"
	orderPath        = "/api/v3/order"

	apiKeyHeader = "X-MBX-APIKEY"
)

// Order is a LIMIT, good-til-cancelled order to be signed and placed.
type Order struct {
	Symbol        string
	Side          string
	Quantity      float64
	Price         float64
	ClientOrderID string
}

// AssetBalance is one raw account row before reconciliation filters it.
type AssetBalance struct {
	Asset string
	Free  float64
}

// Client talks to the venue's REST API. Signed endpoints authenticate with
// an API-key header plus an HMAC-SHA256 signature over the query string.
// All outbound calls share a rate limiter so bursts don't trip the venue's
// request caps.
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	quoteAsset string
	hc         *http.Client
	limiter    *rate.Limiter
}

func New(apiKey, secretKey, baseURL, quoteAsset string, timeout time.Duration, requestsPerSecond float64) *Client {
	return &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		quoteAsset: strings.ToUpper(quoteAsset),
		hc:         &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *Client) QuoteAsset() string { return c.quoteAsset }

// sign produces the hex HMAC-SHA256 digest of the payload under the
// account's secret key.
func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	_, _ = io.WriteString(mac, payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// do issues one request. Signed requests get a timestamp appended to the
// query string and the signature of the resulting payload as the final
// parameter.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, signed bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if query == nil {
		query = url.Values{}
	}
	if signed {
		query.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	}
	payload := query.Encode()
	if signed {
		payload += "&signature=" + c.sign(payload)
	}

	endpoint := c.baseURL + path
	if payload != "" {
		endpoint += "?" + payload
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if cause, mapped := statusCauses[res.StatusCode]; mapped {
		slog.Error("gateway request rejected", "method", method, "path", path, "status", res.StatusCode, "cause", cause)
		return nil, &StatusCodeError{Code: res.StatusCode, Cause: cause}
	}
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("gateway %s %s: status %d: %s", method, path, res.StatusCode, string(body))
	}
	return body, nil
}

// Maintenance reports whether the venue is in maintenance mode.
func (c *Client) Maintenance(ctx context.Context) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, systemStatusPath, nil, false)
	if err != nil {
		return false, err
	}
	var payload struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, fmt.Errorf("decode system status: %w", err)
	}
	return payload.Status != 0, nil
}

// ListInstruments returns the tradable pairs: spot-allowed, actively
// trading, quoted in the configured quote asset and not leveraged tokens.
// Lot bounds come from the LOT_SIZE filter.
func (c *Client) ListInstruments(ctx context.Context) ([]market.Instrument, error) {
	body, err := c.do(ctx, http.MethodGet, exchangeInfoPath, nil, false)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Symbols []struct {
			Symbol             string `json:"symbol"`
			Status             string `json:"status"`
			BaseAsset          string `json:"baseAsset"`
			QuoteAsset         string `json:"quoteAsset"`
			IsSpotTradingAllow bool   `json:"isSpotTradingAllowed"`
			Filters            []struct {
				FilterType string `json:"filterType"`
				MinQty     string `json:"minQty"`
				MaxQty     string `json:"maxQty"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode exchange info: %w", err)
	}

	instruments := make([]market.Instrument, 0, len(payload.Symbols))
	for _, symbol := range payload.Symbols {
		if symbol.Status != "TRADING" || !symbol.IsSpotTradingAllow {
			continue
		}
		if symbol.QuoteAsset != c.quoteAsset {
			continue
		}
		if strings.Contains(symbol.BaseAsset, "UP") || strings.Contains(symbol.BaseAsset, "DOWN") {
			continue
		}
		instrument := market.Instrument{
			Symbol:     strings.ToUpper(symbol.Symbol),
			BaseAsset:  symbol.BaseAsset,
			QuoteAsset: symbol.QuoteAsset,
		}
		for _, filter := range symbol.Filters {
			if filter.FilterType == "LOT_SIZE" {
				instrument.MinQuantity, _ = strconv.ParseFloat(filter.MinQty, 64)
				instrument.MaxQuantity, _ = strconv.ParseFloat(filter.MaxQty, 64)
			}
		}
		instruments = append(instruments, instrument)
	}
	return instruments, nil
}

// Balances returns the raw account balances with a positive free amount.
func (c *Client) Balances(ctx context.Context) ([]AssetBalance, error) {
	body, err := c.do(ctx, http.MethodGet, accountPath, nil, true)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}

	balances := make([]AssetBalance, 0, len(payload.Balances))
	for _, row := range payload.Balances {
		free, err := strconv.ParseFloat(row.Free, 64)
		if err != nil || free <= 0 {
			continue
		}
		balances = append(balances, AssetBalance{Asset: row.Asset, Free: free})
	}
	return balances, nil
}

// PlaceOrder signs and submits a LIMIT GTC order. The response body is
// returned for logging; the engine does not act on venue-side rejection
// codes beyond the generic status mapping.
func (c *Client) PlaceOrder(ctx context.Context, order Order) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("symbol", order.Symbol)
	query.Set("side", order.Side)
	query.Set("type", "LIMIT")
	query.Set("timeInForce", "GTC")
	query.Set("quantity", FormatQuantity(order.Quantity))
	query.Set("price", FormatPrice(order.Price))
	query.Set("newOrderRespType", "RESULT")
	if order.ClientOrderID != "" {
		query.Set("newClientOrderId", order.ClientOrderID)
	}

	body, err := c.do(ctx, http.MethodPost, orderPath, query, true)
	if err != nil {
		return nil, err
	}
	slog.Info("order placed", "symbol", order.Symbol, "side", order.Side, "quantity", order.Quantity, "price", order.Price)
	return json.RawMessage(body), nil
}

// FormatPrice renders a price to 8 significant digits, the venue's price
// precision for quote-asset pairs.
func FormatPrice(price float64) string {
	if price == 0 {
		return "0"
	}
	exponent := int(math.Floor(math.Log10(math.Abs(price))))
	places := int32(7 - exponent)
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(price).Round(places).String()
}

// FormatQuantity renders an order quantity without float artifacts.
func FormatQuantity(quantity float64) string {
	return decimal.NewFromFloat(quantity).String()
}
