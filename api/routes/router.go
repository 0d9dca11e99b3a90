package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/boutique-backend/api/controllers"
	"github.com/angelmondragon/boutique-backend/api/middleware"
	"github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/boutique-backend/internal/checkout"
	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/orders"
	"github.com/angelmondragon/boutique-backend/internal/wheel"
	"github.com/angelmondragon/boutique-backend/pkg/config"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/mondialrelay"
	"github.com/angelmondragon/boutique-backend/pkg/redis"
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Checkout    checkoutsvc.Service
	Cart        cart.Service
	Batches     batches.Service
	Coupons     coupons.Service
	Orders      orders.Service
	Wheel       wheel.Service
	RelayPoints mondialrelay.Finder
}

// Infra holds the shared clients the router needs besides the services.
// Nil stores disable idempotency replay and rate limiting.
type Infra struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	RateLimiter redis.RateLimiter
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    infra.DB,
			"redis": infra.Redis,
		}))
	})

	gatherer := infra.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	idempotent := middleware.Idempotency(infra.Idempotency, logg)
	spinPolicy := middleware.NewRateLimitPolicy("wheel-spin", cfg.Wheel.SpinWindow, cfg.Wheel.SpinLimit)

	r.Route("/api/v1", func(r chi.Router) {
		// The wheel accepts anonymous players identified by X-Session-Id.
		r.Route("/wheel", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Get("/eligibility", controllers.WheelEligibility(svc.Wheel, logg))
			r.With(middleware.RateLimit(spinPolicy, infra.RateLimiter, logg)).Post("/spin", controllers.WheelSpin(svc.Wheel, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/checkout/context", controllers.CheckoutContext(svc.Checkout, logg))
			r.Post("/checkout/quote", controllers.CheckoutQuote(svc.Checkout, logg))
			r.With(idempotent).Post("/checkout", controllers.CheckoutSubmit(svc.Checkout, logg))

			r.Get("/cart", controllers.CartGet(svc.Cart, logg))
			r.Put("/cart", controllers.CartSync(svc.Cart, logg))
			r.Delete("/cart", controllers.CartClear(svc.Cart, logg))
			r.With(idempotent).Post("/cart/merge", controllers.CartMerge(svc.Cart, logg))

			r.Get("/delivery-batches/active", controllers.ActiveDeliveryBatch(svc.Batches, logg))
			r.Get("/coupons", controllers.ListCoupons(svc.Coupons, logg))
			r.Get("/orders/{orderNumber}", controllers.OrderByNumber(svc.Orders, logg))
			r.Get("/relay-points", controllers.RelayPoints(svc.RelayPoints, logg))
		})
	})

	return r
}
