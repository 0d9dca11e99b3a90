package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/boutique-backend/pkg/config"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client holds the configured Stripe key plus env metadata.
type Client struct {
	api         *stripe.Client
	environment string
	currency    string
}

// Option tunes the underlying Stripe client.
type Option func(*options)

type options struct {
	baseURL string
}

// WithAPIBaseURL points the API backend at a different host, used by tests.
func WithAPIBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// NewClient builds a Stripe client for the configured key and env. The package
// level stripe.Key is never touched.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var clientOpts []stripe.ClientOption
	if o.baseURL != "" {
		clientOpts = append(clientOpts, stripe.WithBackends(stripe.NewBackendsWithConfig(&stripe.BackendConfig{
			URL: stripe.String(o.baseURL),
		})))
	}
	api := stripe.NewClient(apiKey, clientOpts...)

	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "eur"
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "stripeEnv", env), "stripe client initialized")
	}
	return &Client{api: api, environment: env, currency: currency}, nil
}

func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Currency is the ISO currency used for payment intents.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	var prefixes []string
	switch env {
	case testEnv:
		prefixes = []string{"sk_test", "rk_test"}
	case liveEnv:
		prefixes = []string{"sk_live", "rk_live"}
	default:
		return errInvalidStripeEnv
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			return nil
		}
	}
	return fmt.Errorf("stripe environment %q requires a %s secret key (%s)", env, env, strings.Join(prefixes, "/"))
}
