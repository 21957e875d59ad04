package handler

import (
	"net/http"
	"time"

	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the service layer for router wiring.
type Services struct {
	Auth       *service.AuthService
	Cashback   *service.CashbackService
	Coupons    *service.CouponService
	Merchant   *service.MerchantService
	Offers     *service.OfferService
	Rules      *service.RuleService
	Admin      *service.AdminService
	Categories *service.CategoryService
	Address    *service.AddressService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the Pixinxa frontends (consumer
// app, loja dashboard, admin panel).
func NewRouter(svcs Services, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Categories, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 🔐 Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// 🗺 Dados de referência (públicos)
		// =============================================
		r.Get("/enderecos/cep/{cep}", cepLookupHandler(svcs.Address, logger))
		r.Get("/enderecos/estados", listEstadosHandler(svcs.Address, logger))
		r.Get("/enderecos/estados/{uf}/cidades", listCidadesHandler(svcs.Address, logger))
		r.Get("/categorias", listCategoriesHandler(svcs.Categories, logger))
		r.Get("/categorias/{categoryId}/subcategorias", listSubcategoriesHandler(svcs.Categories, logger))

		// =============================================
		// Rotas autenticadas
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// --- Vitrine (qualquer conta logada) ---
			r.Get("/lojas", listLojasHandler(svcs.Merchant, logger))
			r.Get("/lojas/{lojaId}", getLojaHandler(svcs.Merchant, logger))
			r.Get("/lojas/{lojaId}/ofertas", listOffersHandler(svcs.Offers, logger))
			r.Get("/lojas/{lojaId}/regras", listRulesHandler(svcs.Rules, logger))
			r.Get("/lojas/{lojaId}/cupons", listCouponsHandler(svcs.Coupons, logger))

			// --- Consumidor ---
			r.Get("/me/caixinhas", listBalancesHandler(svcs.Cashback, logger))
			r.Post("/lojas/{lojaId}/cashback/codes", issueCodeHandler(svcs.Cashback, logger))
			r.Post("/cupons/{codigo}/redeem", redeemCouponHandler(svcs.Coupons, logger))

			// --- Loja (dona da rota) ---
			r.Group(func(r chi.Router) {
				r.Use(LojaOwnerOnly(logger))

				r.Patch("/lojas/{lojaId}", updateLojaHandler(svcs.Merchant, logger))
				r.Post("/lojas/{lojaId}/logo", uploadLogoHandler(svcs.Merchant, logger))
				r.Get("/lojas/{lojaId}/stats", merchantStatsHandler(svcs.Merchant, logger))

				r.Post("/lojas/{lojaId}/cashback/verify", verifyCodeHandler(svcs.Cashback, logger))
				r.Post("/lojas/{lojaId}/cashback/confirm", confirmCashbackHandler(svcs.Cashback, logger))
				r.Get("/lojas/{lojaId}/movimentacoes", listMovimentacoesHandler(svcs.Cashback, logger))

				r.Post("/lojas/{lojaId}/ofertas", createOfferHandler(svcs.Offers, logger))
				r.Post("/lojas/{lojaId}/ofertas/imagens", uploadOfferImageHandler(svcs.Offers, logger))
				r.Delete("/lojas/{lojaId}/ofertas/{offerId}", deleteOfferHandler(svcs.Offers, logger))

				r.Post("/lojas/{lojaId}/regras", createRuleHandler(svcs.Rules, logger))
				r.Patch("/lojas/{lojaId}/regras/{ruleId}", updateRuleHandler(svcs.Rules, logger))
				r.Delete("/lojas/{lojaId}/regras/{ruleId}", deleteRuleHandler(svcs.Rules, logger))

				r.Get("/lojas/{lojaId}/cpfs", listAllowedCPFsHandler(svcs.Merchant, logger))
				r.Post("/lojas/{lojaId}/cpfs", addAllowedCPFHandler(svcs.Merchant, logger))
				r.Delete("/lojas/{lojaId}/cpfs/{cpf}", removeAllowedCPFHandler(svcs.Merchant, logger))

				r.Post("/lojas/{lojaId}/cupons", createCouponHandler(svcs.Coupons, logger))

				// Balcão: cadastro rápido de consumidor
				r.Post("/lojas/{lojaId}/clientes", adminCreateConsumerHandler(svcs.Admin, logger))
			})

			// --- Admin ---
			r.Route("/admin", func(r chi.Router) {
				r.Use(AdminOnly(logger))

				r.Get("/usuarios", adminListConsumersHandler(svcs.Admin, logger))
				r.Post("/usuarios", adminCreateConsumerHandler(svcs.Admin, logger))
				r.Get("/lojas", adminListMerchantsHandler(svcs.Admin, logger))
				r.Post("/lojas", adminCreateMerchantHandler(svcs.Admin, logger))
				r.Delete("/contas/{accountId}", adminDeleteAccountHandler(svcs.Admin, logger))
				r.Get("/stats", adminStatsHandler(svcs.Admin, logger))
				r.Get("/geo", adminGeoHandler(svcs.Admin, logger))
				r.Delete("/cupons/{couponId}", deleteCouponHandler(svcs.Coupons, logger))
			})
		})
	})

	return r
}

// ============================================================
// Probes
// ============================================================

// healthzHandler pings the data backend through the (cached) category
// listing so the probe stays cheap.
func healthzHandler(categories *service.CategoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := "healthy"
		if _, err := categories.List(r.Context()); err != nil {
			status = "degraded"
			logger.Warn("healthz: data backend check failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"checked_at": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
