package checkoutoptions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/redis"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

const (
	cacheName = "checkout_options"

	// DefaultMinRefreshInterval bounds how often a miss on a shipping method or
	// gateway id can force a WooCommerce round trip.
	DefaultMinRefreshInterval = 30 * time.Second
)

// Options is everything the checkout page selects from.
type Options struct {
	ShippingMethods []woocommerce.ShippingMethod `json:"shipping_methods"`
	PaymentGateways []woocommerce.PaymentGateway `json:"payment_gateways"`
	TaxRates        []woocommerce.TaxRate        `json:"tax_rates"`
	FetchedAt       time.Time                    `json:"fetched_at"`
}

func (o *Options) Method(id string) (woocommerce.ShippingMethod, bool) {
	for _, m := range o.ShippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return woocommerce.ShippingMethod{}, false
}

func (o *Options) Gateway(id string) (woocommerce.PaymentGateway, bool) {
	for _, g := range o.PaymentGateways {
		if g.ID == id {
			return g, true
		}
	}
	return woocommerce.PaymentGateway{}, false
}

type source interface {
	ListShippingMethods(ctx context.Context) ([]woocommerce.ShippingMethod, error)
	ListPaymentGateways(ctx context.Context) ([]woocommerce.PaymentGateway, error)
	ListTaxRates(ctx context.Context) ([]woocommerce.TaxRate, error)
}

type Service interface {
	Get(ctx context.Context) (*Options, error)
	Refresh(ctx context.Context) (*Options, error)
}

type service struct {
	source     source
	cache      redis.JSONCache
	ttl        time.Duration
	logg       *logger.Logger
	now        func() time.Time
	minRefresh time.Duration

	flight singleflight.Group
	mu     sync.Mutex
	last   *Options
}

type Option func(*service)

// WithMinRefreshInterval sets how long a fetched document is reused before
// Refresh goes back to WooCommerce. Zero disables the floor.
func WithMinRefreshInterval(d time.Duration) Option {
	return func(s *service) {
		if d >= 0 {
			s.minRefresh = d
		}
	}
}

// WithClock overrides the clock used for FetchedAt and the refresh floor.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(src source, cache redis.JSONCache, ttl time.Duration, logg *logger.Logger, opts ...Option) (Service, error) {
	if src == nil {
		return nil, fmt.Errorf("woocommerce source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{source: src, cache: cache, ttl: ttl, logg: logg, now: time.Now, minRefresh: DefaultMinRefreshInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get serves the cached document and falls back to WooCommerce on a miss.
// Cache failures are logged and never fail the request.
func (s *service) Get(ctx context.Context) (*Options, error) {
	if s.cache != nil {
		var cached Options
		err := s.cache.GetJSON(ctx, s.cache.CacheKey(cacheName), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache": cacheName, "error": err.Error()}), "checkout options cache read failed")
		}
	}
	return s.Refresh(ctx)
}

// Refresh fetches from WooCommerce and rewrites the cache. Concurrent callers
// share one fetch, and a document fetched less than minRefresh ago is returned
// as is, so repeated unknown ids cannot hammer WooCommerce.
func (s *service) Refresh(ctx context.Context) (*Options, error) {
	if recent := s.recent(); recent != nil {
		return recent, nil
	}
	ch := s.flight.DoChan(cacheName, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Options), nil
	}
}

func (s *service) recent() *Options {
	if s.minRefresh <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || s.now().Sub(s.last.FetchedAt) >= s.minRefresh {
		return nil
	}
	return s.last
}

func (s *service) fetch(ctx context.Context) (*Options, error) {
	opts := &Options{FetchedAt: s.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		methods, err := s.source.ListShippingMethods(gctx)
		opts.ShippingMethods = methods
		return err
	})
	g.Go(func() error {
		gateways, err := s.source.ListPaymentGateways(gctx)
		opts.PaymentGateways = gateways
		return err
	})
	g.Go(func() error {
		rates, err := s.source.ListTaxRates(gctx)
		opts.TaxRates = rates
		return err
	})
	if err := g.Wait(); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout options")
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, s.cache.CacheKey(cacheName), opts, s.ttl); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cache": cacheName, "error": err.Error()}), "checkout options cache write failed")
		}
	}

	s.mu.Lock()
	s.last = opts
	s.mu.Unlock()
	return opts, nil
}
