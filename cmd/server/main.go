package main

import (
	"net/http"
	"os"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/config"
	"clover-print-diag/internal/diagnosis"
	"clover-print-diag/internal/handler"
	"clover-print-diag/internal/logger"
	"clover-print-diag/internal/metrics"
	"clover-print-diag/internal/middleware"
	"clover-print-diag/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var startServerFunc = func(addr string, h http.Handler) error {
	return http.ListenAndServe(addr, h)
}

func main() {
	if err := run(); err != nil {
		logger.L().Error("Server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if !cfg.HasCloverConfig() {
		logger.L().Warn("CLOVER_MERCHANT_ID or CLOVER_ACCESS_TOKEN missing, print routes will answer 400")
	}

	router := newServer(cfg)

	logger.L().Info("Clover print diagnostics running",
		zap.String("port", cfg.AppPort),
		zap.String("base_url", clover.NormalizeBaseURL(cfg.BaseURL)),
		zap.String("merchant_id", cfg.MerchantID),
		zap.Duration("settle", cfg.SettleInterval),
		zap.Bool("parallel_fan_out", cfg.ParallelFanOut),
	)
	return startServerFunc(":"+cfg.AppPort, router)
}

func newServer(cfg *config.Config) http.Handler {
	baseURL := clover.NormalizeBaseURL(cfg.BaseURL)
	gw := clover.NewClient(clover.Options{
		BaseURL:           baseURL,
		MerchantID:        cfg.MerchantID,
		AccessToken:       cfg.AccessToken,
		RequestsPerSecond: cfg.GatewayRate,
	})
	svc := diagnosis.NewService(gw, diagnosis.Options{
		BaseURL:        baseURL,
		MerchantID:     cfg.MerchantID,
		Settle:         cfg.SettleInterval,
		ParallelFanOut: cfg.ParallelFanOut,
	})
	return setupRouter(cfg, handler.NewPrintHandler(svc, cfg.HasCloverConfig()))
}

func setupRouter(cfg *config.Config, prints *handler.PrintHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status": "OK",
			"prints": metrics.Prints.Snapshot(),
		})
	})

	r.Route("/test-print", func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware)
		prints.RegisterRoutes(r)
	})
	return r
}
