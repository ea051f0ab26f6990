package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nmaisuradze/storefront/internal/catalog"
	pkgerrors "github.com/nmaisuradze/storefront/pkg/errors"
	"github.com/nmaisuradze/storefront/pkg/logger"
	"github.com/nmaisuradze/storefront/pkg/metrics"
)

const errorBodyReadLimit int64 = 4096

var errBaseURLRequired = errors.New("cart api base url is required")

// Client is the typed binding to the remote cart API. It holds no cart
// state; every call maps one request to one decoded response.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logg       *logger.Logger
	metrics    *metrics.GatewayMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBearerToken attaches an Authorization header to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger enables per-request debug logging.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithMetrics records call durations and outcomes.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the cart API client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return client, nil
}

// AddInput is the payload for adding a product variant to the cart.
type AddInput struct {
	Quantity int    `json:"quantity"`
	Color    string `json:"color"`
	Size     string `json:"size"`
}

type updateInput struct {
	Quantity int    `json:"quantity"`
	Color    string `json:"color"`
	Size     string `json:"size"`
}

type removeInput struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// CheckoutInput mirrors the checkout form accepted by the remote API.
type CheckoutInput struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	ZipCode string `json:"zip_code"`
	Address string `json:"address"`
}

// Receipt is the order confirmation returned on successful checkout.
type Receipt struct {
	OrderID     int             `json:"order_id"`
	Message     string          `json:"message"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type apiErrorPayload struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// GetCart fetches the current cart. A failure means the cart state is
// unknown, never that the cart is empty.
func (c *Client) GetCart(ctx context.Context) (catalog.Cart, error) {
	var cart catalog.Cart
	if err := c.do(ctx, "get_cart", http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart adds a product variant; the server returns the resulting cart
// and is the sole authority on line totals.
func (c *Client) AddToCart(ctx context.Context, productID int, in AddInput) (catalog.Cart, error) {
	var cart catalog.Cart
	path := fmt.Sprintf("/cart/products/%d", productID)
	if err := c.do(ctx, "add_to_cart", http.MethodPost, path, in, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateLine changes the quantity of the line identified by the full
// variant key. Color and size ride in the body to disambiguate variants
// of the same product.
func (c *Client) UpdateLine(ctx context.Context, key catalog.LineKey, quantity int) (catalog.Cart, error) {
	var cart catalog.Cart
	path := fmt.Sprintf("/cart/products/%d", key.ProductID)
	body := updateInput{Quantity: quantity, Color: key.Color, Size: key.Size}
	if err := c.do(ctx, "update_line", http.MethodPatch, path, body, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveLine deletes the line identified by the full variant key.
func (c *Client) RemoveLine(ctx context.Context, key catalog.LineKey) (catalog.Cart, error) {
	var cart catalog.Cart
	path := fmt.Sprintf("/cart/products/%d", key.ProductID)
	body := removeInput{Color: key.Color, Size: key.Size}
	if err := c.do(ctx, "remove_line", http.MethodDelete, path, body, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Checkout submits the order. A 422 response is returned as a
// CodeValidation error carrying per-field messages; any other failure is
// generic.
func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (*Receipt, error) {
	var receipt Receipt
	if err := c.do(ctx, "checkout", http.MethodPost, "/cart/checkout", in, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ClearCart empties the cart server-side.
func (c *Client) ClearCart(ctx context.Context) (catalog.Cart, error) {
	var cart catalog.Cart
	if err := c.do(ctx, "clear_cart", http.MethodDelete, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "cart api client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+op+" request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+op+" request")
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.logg != nil {
		ctx = c.logg.WithRequestID(ctx, requestID)
		c.logg.Debug(ctx, op+" request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(op)
		return pkgerrors.Wrap(pkgerrors.CodeFetch, err, op+" request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncFailure(op)
		apiErr := c.mapError(op, resp)
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), op+" rejected")
		}
		return apiErr
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			c.metrics.IncFailure(op)
			return pkgerrors.Wrap(pkgerrors.CodeFetch, err, "decode "+op+" response")
		}
	}

	c.metrics.IncSuccess(op)
	return nil
}

func (c *Client) mapError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var payload apiErrorPayload
	parsed := json.Unmarshal(raw, &payload) == nil

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, messageOr(payload, parsed, "authentication required"))
	case resp.StatusCode == http.StatusUnprocessableEntity && parsed && len(payload.Errors) > 0:
		fields := pkgerrors.FieldErrors{}
		for field, messages := range payload.Errors {
			if len(messages) > 0 {
				fields[field] = messages[0]
			}
		}
		return pkgerrors.New(pkgerrors.CodeValidation, messageOr(payload, parsed, "validation failed")).WithFields(fields)
	case resp.StatusCode >= 500:
		return pkgerrors.New(pkgerrors.CodeFetch, fmt.Sprintf("%s failed with status %d", op, resp.StatusCode))
	default:
		return pkgerrors.New(pkgerrors.CodeAPI, messageOr(payload, parsed, fmt.Sprintf("%s failed with status %d", op, resp.StatusCode)))
	}
}

func messageOr(payload apiErrorPayload, parsed bool, fallback string) string {
	if parsed && strings.TrimSpace(payload.Message) != "" {
		return payload.Message
	}
	return fallback
}
