package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jansevak/jansevak-be/internal/api"
	"github.com/jansevak/jansevak-be/internal/api/middleware"
	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/circuitbreaker"
	"github.com/jansevak/jansevak-be/internal/classifier"
	"github.com/jansevak/jansevak-be/internal/db"
	"github.com/jansevak/jansevak-be/internal/fallback"
	"github.com/jansevak/jansevak-be/internal/language"
	"github.com/jansevak/jansevak-be/internal/metrics"
	"github.com/jansevak/jansevak-be/internal/prompt"
	"github.com/jansevak/jansevak-be/internal/ws"
	"github.com/jansevak/jansevak-be/pkg/twilio"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Get configuration from environment
	port := getEnv("PORT", "8080")
	provider := getEnv("LLM_PROVIDER", assistant.ProviderGemini)
	model := getEnv("GEMINI_MODEL", "")
	databaseURL := getEnv("DATABASE_URL", "")
	jwtSecret := getEnv("JWT_SECRET", "")
	allowedOrigins := getEnv("CORS_ALLOWED_ORIGINS", "")
	publicBaseURL := getEnv("PUBLIC_BASE_URL", "")
	fallbackDelay := getDuration("FALLBACK_DELAY", fallback.DefaultDelay)
	twilioCfg := twilio.Config{
		AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
	}
	if strings.EqualFold(provider, assistant.ProviderDeepSeek) {
		model = getEnv("DEEPSEEK_MODEL", "")
	}

	// Interaction log is optional
	var database *db.DB
	recorders := []assistant.Recorder{metrics.Recorder{}}
	if databaseURL != "" {
		var err error
		database, err = db.NewFromURL(databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = database.Migrate(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		recorders = append(recorders, db.NewInteractionAdapter(database))
		log.Println("✅ Database connected")
	} else {
		log.Println("Warning: DATABASE_URL not set, interaction history disabled")
	}

	// Initialize components
	langMgr := language.NewManager()
	breaker := circuitbreaker.New(circuitbreaker.Config{
		OnStateChange: func(from, to circuitbreaker.State) {
			log.Printf("Completion circuit breaker: %s -> %s", from, to)
			metrics.ObserveBreaker(from, to)
		},
	})

	// The credential is read on the first prompt, not here
	svc := assistant.New(assistant.Config{
		Credential: assistant.EnvCredential(assistant.CredentialKey(provider)),
		NewClient: assistant.NewClientFactory(assistant.ProviderConfig{
			Provider: provider,
			Model:    model,
		}),
		Prompts:   prompt.NewBuilder(),
		Fallback:  fallback.NewResponder(classifier.NewClassifier(), fallbackDelay),
		Breaker:   breaker,
		Recorders: recorders,
		// Off by default: the patterns also match years and application numbers
		RedactOutbound: getEnv("REDACT_OUTBOUND_PII", "") == "true",
	})
	log.Printf("✅ Assistant ready (provider=%s, fallback delay=%s)", provider, fallbackDelay)

	// Initialize handlers
	var history api.HistoryStore
	if database != nil {
		history = database
	}
	assistantHandler := api.NewAssistantHandler(svc, history, langMgr)
	chatHandler := ws.NewChatHandler(svc, jwtSecret, 20)

	var voiceHandler *api.VoiceHandler
	if twilioCfg.Enabled() {
		if publicBaseURL == "" {
			log.Println("Warning: PUBLIC_BASE_URL not set, Twilio signatures are checked against the request host")
		}
		validator := twilio.NewValidator(twilioCfg.AuthToken)
		voiceHandler = api.NewVoiceHandler(svc, langMgr, validator, publicBaseURL)
		log.Printf("✅ Voice assistant initialized (%s)", twilioCfg.PhoneNumber)
	}

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(splitList(allowedOrigins)...))

	stopSweep := make(chan struct{})
	defer close(stopSweep)
	ipLimiter := middleware.NewRateLimiter(rate.Limit(100.0/60.0), 200) // ~100/min per IP
	userLimiter := middleware.NewRateLimiter(rate.Limit(30.0/60.0), 10) // 30/min per user
	go ipLimiter.Run(stopSweep)
	go userLimiter.Run(stopSweep)
	if voiceHandler != nil {
		go voiceHandler.Run(stopSweep)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"time":            time.Now().Unix(),
			"assistant_mode":  svc.Mode().String(),
			"breaker":         breaker.State().String(),
			"history_enabled": database != nil,
			"voice_enabled":   voiceHandler != nil,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.PerIP(ipLimiter))
	apiGroup.GET("/languages", assistantHandler.Languages)

	assistantGroup := apiGroup.Group("/assistant")
	assistantGroup.Use(middleware.JWTAuth(jwtSecret))
	assistantGroup.Use(middleware.PerUser(userLimiter))
	{
		assistantGroup.POST("/ask", assistantHandler.Ask)
		if database != nil {
			assistantGroup.GET("/history", assistantHandler.History)
		}
	}

	// WebSocket chat route (token via query param/header when JWT_SECRET is set)
	router.GET("/ws/chat", middleware.PerIP(ipLimiter), chatHandler.HandleChat)

	// Twilio Voice routes (public webhooks, signed by Twilio)
	if voiceHandler != nil {
		voice := router.Group("/api/voice")
		voice.Use(voiceHandler.VerifySignature())
		{
			voice.POST("/incoming", voiceHandler.HandleIncoming)
			voice.POST("/gather", voiceHandler.HandleGather)
			voice.POST("/status", voiceHandler.HandleStatus)
		}
		log.Println("✅ Voice routes registered")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%s", port)
		log.Printf("📝 API endpoints:")
		log.Printf("   POST   /api/assistant/ask")
		if database != nil {
			log.Printf("   GET    /api/assistant/history")
		}
		log.Printf("   GET    /api/languages")
		log.Printf("   WS     /ws/chat")
		if voiceHandler != nil {
			log.Printf("   POST   /api/voice/incoming (Twilio webhook)")
			log.Printf("   POST   /api/voice/gather (Twilio webhook)")
			log.Printf("   POST   /api/voice/status (Twilio webhook)")
		}
		log.Printf("   GET    /health")
		log.Printf("   GET    /metrics")
		log.Printf("")
		log.Printf("Press Ctrl+C to stop")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("1.5s") or plain milliseconds ("1500")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := time.ParseDuration(raw + "ms"); err == nil {
		return ms
	}
	log.Printf("Warning: invalid %s=%q, using %s", key, raw, defaultValue)
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
