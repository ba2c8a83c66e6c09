package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seventyFiveAPI/handlers"
	"seventyFiveAPI/internal/notification"
	"seventyFiveAPI/internal/strava"
	"seventyFiveAPI/internal/workers"
	"seventyFiveAPI/middleware"
	"seventyFiveAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool           *pgxpool.Pool
	profileService   *services.ProfileService
	challengeService *services.ChallengeService
	entryService     *services.EntryService
	progressService  *services.ProgressService
	fitnessService   *services.FitnessService
	uploadService    *services.UploadService
	fcmService       *notification.FCMService
	appBaseURL       string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	appBaseURL = os.Getenv("APP_BASE_URL")
	if appBaseURL == "" {
		appBaseURL = "http://localhost:3000"
	}

	stravaClient := strava.NewClient(
		os.Getenv("STRAVA_CLIENT_ID"),
		os.Getenv("STRAVA_CLIENT_SECRET"),
		os.Getenv("STRAVA_REDIRECT_URL"),
	)

	profileService = services.NewProfileService(dbPool)
	challengeService = services.NewChallengeService(dbPool)
	entryService = services.NewEntryService(dbPool)
	progressService = services.NewProgressService(challengeService, entryService, profileService)
	fitnessService = services.NewFitnessService(dbPool, stravaClient)

	uploadService, err = services.NewUploadService(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
	if err != nil {
		log.Printf("Warning: Could not initialize Cloudinary: %v", err)
	}

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(profileService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, profileService, appBaseURL)
	entryHandler := handlers.NewEntryHandler(entryService)
	progressHandler := handlers.NewProgressHandler(progressService)
	fitnessHandler := handlers.NewFitnessHandler(fitnessService, appBaseURL)
	webhookHandler := handlers.NewWebhookHandler(profileService)

	var uploadHandler *handlers.UploadHandler
	if uploadService != nil {
		uploadHandler = handlers.NewUploadHandler(uploadService)
	}

	// Background workers
	if fcmService != nil {
		reminderWorker := workers.NewReminderWorker(dbPool, fcmService)
		reminderWorker.Start()
		defer reminderWorker.Stop()
	}

	syncWorker := workers.NewStravaSyncWorker(fitnessService, syncInterval())
	syncWorker.Start()
	defer syncWorker.Stop()

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "seventyFive-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// Strava redirects the browser here; auth travels in the state param.
	api.HandleFunc("/fitness/strava/callback", fitnessHandler.Callback).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/profile", profileHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/profile/register-device", profileHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.GetChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.UpdateChallenge).Methods("PUT")
	protected.HandleFunc("/challenges/{id}", challengeHandler.DeleteChallenge).Methods("DELETE")

	protected.HandleFunc("/challenges/{id}/tasks", challengeHandler.AddTask).Methods("POST")
	protected.HandleFunc("/tasks/{taskId}", challengeHandler.UpdateTask).Methods("PUT")
	protected.HandleFunc("/tasks/{taskId}", challengeHandler.DeleteTask).Methods("DELETE")

	protected.HandleFunc("/challenges/{id}/invite", challengeHandler.GetInvite).Methods("GET")
	protected.HandleFunc("/challenges/{id}/invite/regenerate", challengeHandler.RegenerateInvite).Methods("POST")
	protected.HandleFunc("/join/{token}", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/members", challengeHandler.GetMemberProgress).Methods("GET")

	protected.HandleFunc("/challenges/{id}/entries", entryHandler.ListEntries).Methods("GET")
	protected.HandleFunc("/challenges/{id}/entries/{date}", entryHandler.GetEntry).Methods("GET")
	protected.HandleFunc("/challenges/{id}/entries/{date}", entryHandler.SaveEntry).Methods("PUT")

	protected.HandleFunc("/challenges/{id}/stats", progressHandler.GetStats).Methods("GET")
	protected.HandleFunc("/challenges/{id}/calendar", progressHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/fitness/strava/connect", fitnessHandler.Connect).Methods("GET")
	protected.HandleFunc("/fitness/status", fitnessHandler.Status).Methods("GET")
	protected.HandleFunc("/fitness/connection", fitnessHandler.Disconnect).Methods("DELETE")
	protected.HandleFunc("/fitness/sync", fitnessHandler.Sync).Methods("POST")
	protected.HandleFunc("/fitness/activities", fitnessHandler.GetActivities).Methods("GET")
	protected.HandleFunc("/fitness/day-metrics", fitnessHandler.GetDayMetrics).Methods("GET")
	protected.HandleFunc("/fitness/mappings", fitnessHandler.CreateMapping).Methods("POST")
	protected.HandleFunc("/fitness/mappings/{mappingId}", fitnessHandler.DeleteMapping).Methods("DELETE")
	protected.HandleFunc("/challenges/{id}/mappings", fitnessHandler.GetMappings).Methods("GET")
	protected.HandleFunc("/challenges/{id}/suggestions", fitnessHandler.GetSuggestions).Methods("GET")

	if uploadHandler != nil {
		protected.HandleFunc("/uploads/checkin-photo", uploadHandler.UploadCheckInPhoto).Methods("POST")
	}

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func syncInterval() time.Duration {
	if raw := os.Getenv("STRAVA_SYNC_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
		log.Printf("Invalid STRAVA_SYNC_INTERVAL %q, using default", raw)
	}
	return time.Hour
}
