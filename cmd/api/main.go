package main

// @title BrainBuddy API
// @version 1.0
// @description Study helper API: a daily free quota of explained answers, unlimited with premium.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/brainbuddy/config"
	_ "github.com/jordanlanch/brainbuddy/docs" // Swagger docs
	"github.com/jordanlanch/brainbuddy/pkg/answer"
	"github.com/jordanlanch/brainbuddy/pkg/api/handlers"
	custommw "github.com/jordanlanch/brainbuddy/pkg/api/middleware"
	"github.com/jordanlanch/brainbuddy/pkg/billing"
	"github.com/jordanlanch/brainbuddy/pkg/cache"
	"github.com/jordanlanch/brainbuddy/pkg/entitlement"
	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/jordanlanch/brainbuddy/pkg/metrics"
	custommiddleware "github.com/jordanlanch/brainbuddy/pkg/middleware"
	"github.com/jordanlanch/brainbuddy/pkg/quota"
	"github.com/jordanlanch/brainbuddy/pkg/storage"
	"github.com/jordanlanch/brainbuddy/pkg/usage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize storage
	factory := storage.Factory{
		Type:      cfg.StorageType,
		Dir:       cfg.StorageDir,
		KeyPrefix: "brainbuddy:",
	}

	var redisClient *cache.Client
	switch cfg.StorageType {
	case storage.TypeRedis:
		client, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		redisClient = client
		factory.Redis = client
	case storage.TypeS3:
		client, err := storage.NewS3Client(context.Background(), storage.S3Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		})
		if err != nil {
			log.Fatalf("❌ Failed to create S3 client: %v", err)
		}
		factory.S3 = client
		factory.Bucket = cfg.S3Bucket
		factory.KeyPrefix = "brainbuddy/"
	}

	usageBackend, err := factory.Backend("usage")
	if err != nil {
		log.Fatalf("❌ Failed to open usage storage: %v", err)
	}
	proBackend, err := factory.Backend("pro")
	if err != nil {
		log.Fatalf("❌ Failed to open entitlement storage: %v", err)
	}

	storeOpts := storage.Options{FailOpen: !cfg.StorageFailClosed, Logger: appLogger}
	ledger := usage.NewLedger(usageBackend, storeOpts)
	entitlements := entitlement.NewStore(proBackend, storeOpts)
	log.Printf("✅ Storage initialized (%s, %s)", usageBackend, proBackend)

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Quota and answers
	gate := quota.NewGate(ledger, entitlements, cfg.FreeDailyLimit)

	selector := answer.NewSelectorFromConfig(cfg, appLogger)
	selector.SetObserver(prometheusMetrics)

	// Billing
	billingService := billing.NewService(&billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
		PublicBaseURL: cfg.PublicBaseURL,
	}, appLogger)
	verifier := entitlement.NewVerifier(entitlements, billingService, appLogger)
	billingService.SetVerifier(verifier)
	billingService.SetGrantRecorder(prometheusMetrics)
	if !cfg.StripeConfigured() {
		log.Printf("ℹ️  Upgrade unavailable: missing Stripe config")
	}

	// Handlers
	sessionHandler := handlers.NewSessionHandler(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	sessionHandler.SetMetrics(prometheusMetrics)

	usageHandler := handlers.NewUsageHandler(gate, ledger)

	askHandler := handlers.NewAskHandler(gate, selector)
	askHandler.SetMetrics(prometheusMetrics)

	billingHandler := handlers.NewBillingHandler(billingService, verifier, entitlements)
	billingHandler.SetMetrics(prometheusMetrics)

	healthHandler := handlers.NewHealthHandler(cfg.StorageType, selector.Providers(), billingService.Configured())
	if redisClient != nil {
		healthHandler.AddCheck("redis", redisClient.Ping)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	defer globalRateLimiter.Stop()
	askRateLimiter := custommiddleware.NewRateLimiter(20, 5) // per user, answers are slow
	defer askRateLimiter.Stop()
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20)
	defer webhookRateLimiter.Stop()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(middleware.RequestID())
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	securityHeaders := custommiddleware.DefaultSecurityHeadersConfig()
	securityHeaders.Skipper = custommiddleware.SkipPathPrefix("/swagger/")
	e.Use(custommiddleware.SecurityHeaders(securityHeaders))
	e.Use(middleware.Gzip())
	e.Use(globalRateLimiter.Middleware())

	// Public endpoints
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "BrainBuddy API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Stripe calls back without a session token; the signature authenticates it
	e.POST("/webhook/stripe", billingHandler.HandleWebhook, webhookRateLimiter.Middleware())

	v1 := e.Group("/api/v1")
	v1.POST("/session", sessionHandler.CreateSession)

	protected := v1.Group("", custommw.SessionMiddleware(cfg.SessionSecret))
	{
		protected.GET("/usage", usageHandler.GetUsage)
		protected.POST("/ask", askHandler.Ask, askRateLimiter.Middleware())

		billingGroup := protected.Group("/billing")
		billingGroup.GET("/status", billingHandler.GetStatus)
		billingGroup.POST("/checkout", billingHandler.CreateCheckout)
		billingGroup.GET("/return", billingHandler.Return)
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 BrainBuddy API starting on %s", address)
	log.Printf("📝 Log level: %s", cfg.LogLevel)
	log.Printf("📚 API docs: http://%s/swagger/index.html", address)
	log.Printf("🎓 Free daily limit: %d questions", gate.DailyLimit())
	log.Printf("🤖 Answer providers: %v (template always available)", selector.Providers())
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
