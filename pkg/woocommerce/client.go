package woocommerce

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

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
)

const (
	apiPrefix                  = "/wp-json/wc/v3"
	errorBodyReadLimit   int64 = 2048
	defaultClientTimeout       = 15 * time.Second
)

var (
	errBaseURLRequired     = errors.New("woocommerce base url is required")
	errCredentialsRequired = errors.New("woocommerce consumer key and secret are required")

	decodeValidator = validator.New(validator.WithRequiredStructEnabled())
)

// Client talks to the WooCommerce REST API v3 with consumer key basic auth.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	relayMethodIDs map[string]struct{}
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRelayMethodIDs lists the WooCommerce method ids that ship to a pickup point.
func WithRelayMethodIDs(ids []string) Option {
	return func(c *Client) {
		for _, id := range ids {
			id = strings.ToLower(strings.TrimSpace(id))
			if id != "" {
				c.relayMethodIDs[id] = struct{}{}
			}
		}
	}
}

func NewClient(baseURL, consumerKey, consumerSecret string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	key := strings.TrimSpace(consumerKey)
	secret := strings.TrimSpace(consumerSecret)
	if key == "" || secret == "" {
		return nil, errCredentialsRequired
	}

	client := &Client{
		httpClient:     &http.Client{Timeout: defaultClientTimeout},
		baseURL:        base,
		consumerKey:    key,
		consumerSecret: secret,
		relayMethodIDs: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// APIError is the error body WooCommerce returns on failure.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("woocommerce status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("woocommerce status %d (%s): %s", e.Status, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, op string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "woocommerce client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+op+" request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, op+" request failed").
			WithDetails(pkgerrors.Details{"upstream": "woocommerce", "status": resp.StatusCode, "upstream_code": apiErr.Code})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(op, err)
	}
	return nil
}

// validateDecoded turns missing required fields into an explicit decode error.
func validateDecoded(op string, value any) error {
	if err := decodeValidator.Struct(value); err != nil {
		return decodeError(op, err)
	}
	return nil
}

func decodeError(op string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response").
		WithDetails(pkgerrors.Details{"upstream": "woocommerce", "reason": "invalid_payload"})
}
