package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taxisafar/sitekit/billing"
	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/coupon"
	"github.com/taxisafar/sitekit/enquiry"
	"github.com/taxisafar/sitekit/website"
)

// Handler bundles the services the HTTP layer exposes.
type Handler struct {
	themes    *catalog.Service
	coupons   *coupon.Service
	billing   *billing.Service
	sites     *website.Service
	enquiries *enquiry.Service
	log       *slog.Logger
	checks    []func(context.Context) error
}

// Option configures the handler.
type Option func(*Handler)

// WithHealthchecks registers dependency probes served on /readyz.
func WithHealthchecks(checks ...func(context.Context) error) Option {
	return func(h *Handler) { h.checks = append(h.checks, checks...) }
}

// NewHandler creates the API handler.
func NewHandler(
	themes *catalog.Service,
	coupons *coupon.Service,
	billingSvc *billing.Service,
	sites *website.Service,
	enquiries *enquiry.Service,
	log *slog.Logger,
	opts ...Option,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		themes:    themes,
		coupons:   coupons,
		billing:   billingSvc,
		sites:     sites,
		enquiries: enquiries,
		log:       log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the HTTP routing table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", h.readyz)

	r.Route("/api", func(r chi.Router) {
		// public catalog and sites
		r.Get("/themes", h.listThemes)
		r.Get("/themes/{themeID}", h.getTheme)
		r.Get("/sites/{slug}", h.getPublicSite)

		r.Route("/drivers/{driverID}", func(r chi.Router) {
			// site builder
			r.Post("/website", h.getOrCreateWebsite)
			r.Get("/website", h.getWebsite)
			r.Delete("/website", h.deleteWebsite)
			r.Get("/website/onboarding", h.getOnboarding)
			r.Put("/website/basic-info", h.updateBasicInfo)
			r.Put("/website/packages", h.replacePackages)
			r.Post("/website/packages", h.addPackage)
			r.Delete("/website/packages/{index}", h.deletePackage)
			r.Put("/website/popular-prices", h.replacePopularPrices)
			r.Post("/website/popular-prices", h.addPopularPrice)
			r.Delete("/website/popular-prices/{index}", h.deletePopularPrice)
			r.Put("/website/reviews", h.replaceReviews)
			r.Post("/website/reviews", h.addReview)
			r.Delete("/website/reviews/{index}", h.deleteReview)
			r.Put("/website/sections", h.updateSections)
			r.Put("/website/social-links", h.updateSocialLinks)
			r.Put("/website/live", h.setLive)
			r.Post("/website/qr", h.generateQR)

			// billing
			r.Post("/orders/quote", h.quoteOrder)
			r.Post("/orders", h.createOrder)
			r.Post("/payments/verify", h.verifyPayment)
			r.Post("/payments/failed", h.paymentFailed)
			r.Get("/subscription", h.subscriptionStatus)
			r.Post("/coupons/validate", h.validateCoupon)

			// enquiries
			r.Post("/enquiries/contacts", h.createContactEnquiry)
			r.Get("/enquiries/contacts", h.listContactEnquiries)
			r.Delete("/enquiries/contacts/{enquiryID}", h.deleteContactEnquiry)
			r.Post("/enquiries/trips", h.createTripEnquiry)
			r.Get("/enquiries/trips", h.listTripEnquiries)
			r.Patch("/enquiries/trips/{enquiryID}/status", h.updateTripStatus)
			r.Delete("/enquiries/trips/{enquiryID}", h.deleteTripEnquiry)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/themes", h.adminListThemes)
			r.Post("/themes", h.adminCreateTheme)
			r.Put("/themes/{themeID}", h.adminUpdateTheme)
			r.Patch("/themes/{themeID}/toggle", h.adminToggleTheme)
			r.Delete("/themes/{themeID}", h.adminDeleteTheme)

			r.Get("/coupons", h.adminListCoupons)
			r.Post("/coupons", h.adminCreateCoupon)
			r.Get("/coupons/{couponID}", h.adminGetCoupon)
			r.Put("/coupons/{couponID}", h.adminUpdateCoupon)
			r.Patch("/coupons/{couponID}/toggle", h.adminToggleCoupon)
			r.Delete("/coupons/{couponID}", h.adminDeleteCoupon)

			r.Post("/drivers/{driverID}/subscription/extend", h.adminExtendSubscription)
		})
	})

	return r
}

// readyz runs the registered dependency probes and reports 503 when any
// fails, so load balancers stop routing before the service falls over.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.checks {
		if err := check(r.Context()); err != nil {
			h.log.ErrorContext(r.Context(), "readiness check failed", "error", err)
			respondError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	respond(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger logs one line per request through the service logger.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.log.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
