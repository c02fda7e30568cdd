package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"obra_tracker/pkg/api/config"
	"obra_tracker/pkg/api/dashboard"
	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/notifications"
	"obra_tracker/pkg/api/projects"
	"obra_tracker/pkg/api/reports"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/api/voice"
	"obra_tracker/pkg/core/agent"
	"obra_tracker/pkg/core/cache"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/notify"
	"obra_tracker/pkg/core/prompt"
	"obra_tracker/pkg/core/settings"
	"obra_tracker/pkg/core/store"
	"obra_tracker/pkg/core/utils"
	corevoice "obra_tracker/pkg/core/voice"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()
	utils.InitLogger("obra_tracker")

	s, err := settings.Load()
	if err != nil {
		utils.Logger.Fatalf("Failed to load settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stores store.Stores
	if s.DatabaseURL != "" {
		pool, err := store.Open(ctx, s.DatabaseURL)
		if err != nil {
			utils.Logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		stores = store.NewPostgresStores(pool)
	} else {
		utils.Logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		stores = store.NewMemoryStores(store.NewMemory())
	}

	var c cache.Cache = cache.NewMemoryCache()
	if s.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, s.RedisAddr, s.RedisPassword, 0)
		if err != nil {
			utils.Logger.WithError(err).Warn("Redis unavailable, using in-memory cache")
		} else {
			defer rdb.Close()
			c = cache.NewRedisCache(rdb)
		}
	}
	rates := inflation.NewClient(s.InflationBaseURL, c)

	// Prompt library; the built-in voice prompt covers a missing directory
	if err := prompt.Get().LoadDirectory(s.ResourcesDir); err != nil {
		utils.Logger.WithError(err).Warn("Failed to load prompt library, falling back to built-in prompts")
	} else {
		utils.Logger.Infof("Loaded %d prompts from %s", prompt.Get().Count(), s.ResourcesDir)
	}

	agentCfg, err := agent.LoadConfig(s.ModelsConfig)
	if err != nil {
		utils.Logger.WithError(err).Warn("Using default LLM routing")
	}
	agentMgr := agent.NewManager(agentCfg)

	parser := corevoice.NewParser(agentMgr, prompt.Get())
	executor := corevoice.NewExecutor(stores.Expenses, stores.Projects, stores.Units, stores.Records, stores.Records)

	projectHandler := projects.NewHandler(stores, rates, s.DefaultMonthlyInflation, s.DaysPerMonth)
	dashboardHandler := dashboard.NewHandler(stores.Projects, rates, s.DefaultMonthlyInflation, s.DaysPerMonth)
	voiceHandler := voice.NewHandler(stores.Projects, parser, executor)
	reportHandler := reports.NewHandler(stores.Projects, stores.Expenses, rates, s.DefaultMonthlyInflation, s.DaysPerMonth)
	configHandler := config.NewHandler(agentMgr)
	notificationHandler := notifications.NewHandler(stores.Records)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	secured := api.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware([]byte(s.JWTSecret)))

	projectHandler.Register(secured)
	secured.HandleFunc("/dashboard", dashboardHandler.HandleDashboard).Methods(http.MethodGet)
	secured.HandleFunc("/projects/{id}/voice", voiceHandler.HandleVoiceCommand).Methods(http.MethodPost)
	secured.HandleFunc("/projects/{id}/report", reportHandler.HandleProjectReport).Methods(http.MethodGet)
	secured.HandleFunc("/reports/portfolio.xlsx", reportHandler.HandlePortfolioXLSX).Methods(http.MethodGet)
	secured.HandleFunc("/config/llm", configHandler.HandleConfig).Methods(http.MethodGet)
	secured.HandleFunc("/config/llm", configHandler.HandleSwitch).Methods(http.MethodPost)
	secured.HandleFunc("/notifications", notificationHandler.HandleList).Methods(http.MethodGet)
	secured.HandleFunc("/notifications/{id}/read", notificationHandler.HandleMarkRead).Methods(http.MethodPost)

	scheduler, err := notify.NewScheduler(s.ReminderCron, notify.NewPlanner(s.DeliveryWarningDays), stores.Projects, stores.Records)
	if err != nil {
		utils.Logger.Fatalf("Failed to create reminder scheduler: %v", err)
	}
	scheduler.Start()
	utils.Logger.Infof("Reminder job scheduled (%s)", s.ReminderCron)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + s.AppPort,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.Infof("API server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("Server shutdown failed")
	}
	<-scheduler.Stop().Done()
}
