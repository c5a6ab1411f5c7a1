package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultMarketplace  = "EBAY_US"
	tradingCompatLevel  = "1227"
	tradingSiteID       = "0"
	identityPath        = "/commerce/identity/v1/user/"
	inventoryItemsPath  = "/sell/inventory/v1/inventory_item"
	defaultResourceWait = 30 * time.Second
)

// ResourceClient implements ResourceAPI on top of resty.
type ResourceClient struct {
	http        *resty.Client
	endpoints   Endpoints
	marketplace string
	limiters    map[string]*RateLimiter
}

// ResourceOption configures the ResourceClient.
type ResourceOption func(*ResourceClient)

// WithResourceHTTPClient overrides the underlying HTTP client.
func WithResourceHTTPClient(hc *http.Client) ResourceOption {
	return func(c *ResourceClient) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithMarketplace overrides the default marketplace header.
func WithMarketplace(m string) ResourceOption {
	return func(c *ResourceClient) {
		c.marketplace = m
	}
}

// WithRateLimiter paces the calls of one API family ("identity", "inventory",
// "trading") through r.
func WithRateLimiter(api string, r *RateLimiter) ResourceOption {
	return func(c *ResourceClient) {
		c.limiters[api] = r
	}
}

// NewResourceClient creates a ResourceClient for the given endpoint set.
func NewResourceClient(endpoints Endpoints, opts ...ResourceOption) *ResourceClient {
	c := &ResourceClient{
		http:        resty.New(),
		endpoints:   endpoints,
		marketplace: defaultMarketplace,
		limiters:    make(map[string]*RateLimiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetTimeout(defaultResourceWait)
	return c
}

// Identity fetches the user behind accessToken.
func (c *ResourceClient) Identity(ctx context.Context, accessToken string) (*Identity, error) {
	body, err := c.get(ctx, "identity", accessToken, c.endpoints.IdentityURL+identityPath, nil)
	if err != nil {
		return nil, err
	}

	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return nil, fmt.Errorf("parsing identity response: %w", err)
	}
	return &id, nil
}

// ListInventoryItems returns one page of inventory items as raw JSON.
func (c *ResourceClient) ListInventoryItems(
	ctx context.Context,
	accessToken string,
	limit, offset int,
) (json.RawMessage, error) {
	if limit <= 0 {
		limit = 25
	}
	params := map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(max(offset, 0)),
	}
	body, err := c.get(ctx, "inventory", accessToken, c.endpoints.APIURL+inventoryItemsPath, params)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetInventoryItem returns one inventory item as raw JSON.
func (c *ResourceClient) GetInventoryItem(
	ctx context.Context,
	accessToken, sku string,
) (json.RawMessage, error) {
	u := c.endpoints.APIURL + inventoryItemsPath + "/" + url.PathEscape(sku)
	body, err := c.get(ctx, "inventory", accessToken, u, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Trading posts an XML request to the legacy Trading API and returns the raw
// XML response. A response whose Ack is Failure is returned as an error even
// when the HTTP status is 200.
func (c *ResourceClient) Trading(
	ctx context.Context,
	accessToken, callName string,
	body []byte,
) ([]byte, error) {
	op := "calling Trading API " + callName
	if err := c.wait(ctx, "trading"); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/xml").
		SetHeader("X-EBAY-API-CALL-NAME", callName).
		SetHeader("X-EBAY-API-SITEID", tradingSiteID).
		SetHeader("X-EBAY-API-COMPATIBILITY-LEVEL", tradingCompatLevel).
		SetHeader("X-EBAY-API-IAF-TOKEN", accessToken).
		SetBody(body).
		Post(c.endpoints.TradingURL)
	if err != nil {
		return nil, Classify(op, err)
	}

	if resp.IsError() {
		return nil, ClassifyResponse(op, resp.StatusCode(), resp.Body())
	}

	tr, err := decodeTrading(resp.Body())
	if err != nil {
		return nil, Classify(op, err)
	}
	if tr.failed() && len(tr.errorDetails()) > 0 {
		return nil, ClassifyResponse(op, resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}

func (c *ResourceClient) get(
	ctx context.Context,
	api, accessToken, u string,
	params map[string]string,
) ([]byte, error) {
	op := "calling " + api + " API"
	if err := c.wait(ctx, api); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json").
		SetHeader("X-EBAY-C-MARKETPLACE-ID", c.marketplace).
		SetQueryParams(params).
		Get(u)
	if err != nil {
		return nil, Classify(op, err)
	}
	if resp.IsError() {
		return nil, ClassifyResponse(op, resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}

func (c *ResourceClient) wait(ctx context.Context, api string) error {
	if r, ok := c.limiters[api]; ok {
		return r.Wait(ctx)
	}
	return nil
}
