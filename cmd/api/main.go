package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"shop/internal/auth"
	"shop/internal/db"
	"shop/internal/domain/orders"
	"shop/internal/domain/pricing"
	"shop/internal/domain/storage"
	"shop/internal/mailer"
	"shop/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 200
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// LoadPricingConfig reads the checkout pricing knobs, falling back to the
// storefront defaults (10% tax, $10 flat shipping, free above $100).
func LoadPricingConfig() pricingConfig {
	cfg := pricingConfig{
		taxRate:                    0.10,
		freeShippingThresholdCents: 100_00,
		flatShippingFeeCents:       10_00,
		orderNumberSecret:          os.Getenv("ORDER_NUMBER_SECRET"),
		publicRefSalt:              os.Getenv("ORDER_PUBLIC_REF_SALT"),
	}

	if val, exists := os.LookupEnv("PRICING_TAX_RATE"); exists {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 {
			cfg.taxRate = parsed
		}
	}
	if val, exists := os.LookupEnv("PRICING_FREE_SHIPPING_THRESHOLD_CENTS"); exists {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil && parsed >= 0 {
			cfg.freeShippingThresholdCents = parsed
		}
	}
	if val, exists := os.LookupEnv("PRICING_FLAT_SHIPPING_FEE_CENTS"); exists {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil && parsed >= 0 {
			cfg.flatShippingFeeCents = parsed
		}
	}

	return cfg
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "1.0.0"

//	@title			Shop API
//	@description	Storefront API: catalog, carts, checkout and order management.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	maxConnsStr := os.Getenv("DB_MAX_CONNS")
	maxConns, err := strconv.Atoi(maxConnsStr)
	if err != nil {
		log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
	}

	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		log.Fatalf("Invalid value for SMTP_PORT: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    maxConns,
			maxIdleTime: os.Getenv("DB_MAX_IDLE_TIME"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     smtpPort,
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				accessTokenExp:  time.Hour * 24,     // 1 day
				refreshTokenExp: time.Hour * 24 * 9, // 9 days
				iss:             "Shop",
			},
		},
		pricing:     LoadPricingConfig(),
		rateLimiter: LoadRateLimiterConfig(),
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	database, err := db.New(
		cfg.db.addr,
		int32(cfg.db.maxConns),
		cfg.db.maxIdleTime,
	)
	if err != nil {
		logger.Fatal(err)
	}

	defer database.Close()
	logger.Info("database connection pool established")

	// Order identity helpers
	orderNumbers := orders.NewOrderNumberGenerator(cfg.pricing.orderNumberSecret)
	publicRefs, err := orders.NewPublicRefEncoder(cfg.pricing.publicRefSalt)
	if err != nil {
		logger.Fatal(err)
	}

	priceCfg := pricing.Config{
		TaxRate:                    cfg.pricing.taxRate,
		FreeShippingThresholdCents: cfg.pricing.freeShippingThresholdCents,
		FlatShippingFeeCents:       cfg.pricing.flatShippingFeeCents,
	}

	// Storage
	store := storage.NewContainer(database, orderNumbers, publicRefs, priceCfg)

	// Mail
	smtpMailer := mailer.NewSMTP(
		cfg.mail.smtp.host,
		cfg.mail.smtp.port,
		cfg.mail.smtp.username,
		cfg.mail.smtp.password,
		cfg.mail.fromEmail,
	)

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		salesTx:       store.WithSalesTx,
		mailer:        smtpMailer,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := database.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"acquired_conns": s.AcquiredConns(),
			"idle_conns":     s.IdleConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
