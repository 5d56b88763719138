package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/abzsd/CareAgents/internal/agents"
	"github.com/abzsd/CareAgents/internal/handlers"
	"github.com/abzsd/CareAgents/internal/jwt"
	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/middlewares"
	"github.com/abzsd/CareAgents/internal/postgres"
	"github.com/abzsd/CareAgents/internal/repositories"
	"github.com/abzsd/CareAgents/internal/services"
	"github.com/abzsd/CareAgents/internal/storage"
	"github.com/abzsd/CareAgents/internal/streaming"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title CareAgents API
// @version 1.0.0
// @description Healthcare management service: patients, doctors, appointments, medical history and LLM assistants
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// config holds all application settings resolved from the environment.
type config struct {
	appHost  string
	appPort  string
	logLevel string

	pg postgres.Config

	redisAddr     string
	redisPassword string
	redisDB       int
	cacheTTL      time.Duration

	kafkaBrokers []string
	kafkaTopic   string

	jwtSecretKey string
	jwtExp       time.Duration

	llmBaseURL string
	llmAPIKey  string
	llmTimeout time.Duration

	blobDir string
}

// parseConfig loads environment variables from a file and resolves all
// application, database, Redis, Kafka, LLM, storage, and JWT settings.
func parseConfig(path string) (config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getEnvInt := func(key string, defaultValue int) (int, error) {
		return strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	}

	var cfg config
	var err error

	// Application config
	cfg.appHost = getEnv("APP_HOST", "localhost")
	cfg.appPort = getEnv("APP_PORT", "8080")
	cfg.logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.pg.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.pg.User = getEnv("POSTGRES_USER", "user")
	cfg.pg.Password = getEnv("POSTGRES_PASSWORD", "password")
	cfg.pg.Database = getEnv("POSTGRES_DB", "careagents")
	if cfg.pg.Port, err = getEnvInt("POSTGRES_PORT", 5432); err != nil {
		return cfg, err
	}
	if cfg.pg.MaxOpenConns, err = getEnvInt("POSTGRES_MAX_OPEN_CONNS", 16); err != nil {
		return cfg, err
	}
	if cfg.pg.MaxIdleConns, err = getEnvInt("POSTGRES_MAX_IDLE_CONNS", 8); err != nil {
		return cfg, err
	}
	commandTimeoutSecond, err := getEnvInt("POSTGRES_COMMAND_TIMEOUT_SECOND", 60)
	if err != nil {
		return cfg, err
	}
	cfg.pg.CommandTimeout = time.Duration(commandTimeoutSecond) * time.Second

	// Redis config
	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort, err := getEnvInt("REDIS_PORT", 6379)
	if err != nil {
		return cfg, err
	}
	cfg.redisAddr = fmt.Sprintf("%s:%d", redisHost, redisPort)
	cfg.redisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.redisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	cacheTTLSecond, err := getEnvInt("NAME_CACHE_TTL_SECOND", 3600)
	if err != nil {
		return cfg, err
	}
	cfg.cacheTTL = time.Duration(cacheTTLSecond) * time.Second

	// Kafka config; an empty broker list disables event publishing
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.kafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.kafkaTopic = getEnv("KAFKA_TOPIC", "appointment-events")

	// JWT config
	cfg.jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	jwtExpSecond, err := getEnvInt("JWT_EXP_SECOND", 86400)
	if err != nil {
		return cfg, err
	}
	cfg.jwtExp = time.Duration(jwtExpSecond) * time.Second

	// LLM config
	cfg.llmBaseURL = getEnv("LLM_BASE_URL", "http://localhost:11434")
	cfg.llmAPIKey = getEnv("LLM_API_KEY", "")
	llmTimeoutSecond, err := getEnvInt("LLM_TIMEOUT_SECOND", 60)
	if err != nil {
		return cfg, err
	}
	cfg.llmTimeout = time.Duration(llmTimeoutSecond) * time.Second

	// File storage config
	cfg.blobDir = getEnv("BLOB_DIR", "./data/files")

	return cfg, nil
}

// run initializes the logger, database, Redis, Kafka, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.logLevel)

	// Connect to PostgreSQL
	pool := postgres.New(cfg.pg)
	db, err := pool.Open(ctx)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer pool.Close()
	logger.Log.Infof("Connected to PostgreSQL at %s:%d/%s", cfg.pg.Host, cfg.pg.Port, cfg.pg.Database)

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer for appointment events
	var kafkaWriter services.KafkaWriter
	if len(cfg.kafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:     kafka.TCP(cfg.kafkaBrokers...),
			Topic:    cfg.kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infof("Kafka events enabled on topic %s", cfg.kafkaTopic)
	}

	// Initialize JWT service
	tokener := jwt.New(cfg.jwtSecretKey, cfg.jwtExp)

	// Initialize repositories
	patientRepo, err := repositories.NewRecordRepository(db, "patients", middlewares.GetTxFromContext)
	if err != nil {
		return err
	}
	doctorRepo, err := repositories.NewRecordRepository(db, "doctors", middlewares.GetTxFromContext)
	if err != nil {
		return err
	}
	appointmentRepo, err := repositories.NewRecordRepository(db, "appointments", middlewares.GetTxFromContext)
	if err != nil {
		return err
	}
	historyRepo, err := repositories.NewRecordRepository(db, "medical_history", middlewares.GetTxFromContext)
	if err != nil {
		return err
	}
	userRepo, err := repositories.NewRecordRepository(db, "users", middlewares.GetTxFromContext)
	if err != nil {
		return err
	}
	vitalsRepo, err := repositories.NewRecordRepository(db, "health_vitals", middlewares.GetTxFromContext)
	if err != nil {
		return err
	}
	for _, repo := range []*repositories.RecordRepository{patientRepo, doctorRepo, appointmentRepo, historyRepo, userRepo, vitalsRepo} {
		repo.WithCommandTimeout(cfg.pg.CommandTimeout)
	}
	nameCache := repositories.NewNameCacheRepository(rdb, cfg.cacheTTL)

	// Initialize services
	patientService := services.NewPatientService(patientRepo)
	doctorService := services.NewDoctorService(doctorRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, patientRepo, doctorRepo, nameCache, kafkaWriter)
	historyService := services.NewHistoryService(historyRepo)
	vitalsService := services.NewVitalsService(vitalsRepo)
	userService := services.NewUserService(userRepo, tokener)
	onboardingService := services.NewOnboardingService(userService, patientService, doctorService)

	// Initialize LLM agents
	generator := agents.NewHTTPGenerator(cfg.llmBaseURL, cfg.llmAPIKey, cfg.llmTimeout)
	summarizer := agents.NewRecordSummarizer(generator, historyService)
	matcher := agents.NewDoctorMatcher(generator, doctorService)
	prescriptionParser := agents.NewPrescriptionParser(generator)
	chatAgent := agents.NewChatOrchestrator(generator, summarizer, matcher)

	// Websocket hub and file storage
	hub := streaming.NewHub()
	blobStore, err := storage.NewDiskStore(cfg.blobDir)
	if err != nil {
		return fmt.Errorf("blob storage init error: %w", err)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	authRequired := middlewares.AuthMiddleware(tokener)
	txRequired := middlewares.TxMiddleware(db)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", handlers.NewRegisterHandler(userService))
		r.Post("/auth/login", handlers.NewLoginHandler(userService))
		r.Get("/health", handlers.NewHealthHandler(pool))

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(authRequired)

			r.Get("/auth/me", handlers.NewMeHandler(userService))
			r.Put("/auth/me", handlers.NewUpdateProfileHandler(userService))

			// Onboarding creates the profile and flips the account flag atomically
			r.With(txRequired).Post("/onboarding/patient", handlers.NewOnboardPatientHandler(onboardingService))
			r.With(txRequired).Post("/onboarding/doctor", handlers.NewOnboardDoctorHandler(onboardingService))
			r.Get("/onboarding/status", handlers.NewOnboardingStatusHandler(onboardingService))

			r.With(txRequired).Post("/patients", handlers.NewCreatePatientHandler(patientService))
			r.Get("/patients", handlers.NewListPatientsHandler(patientService))
			r.Get("/patients/search", handlers.NewSearchPatientsHandler(patientService))
			r.Get("/patients/{patient_id}", handlers.NewGetPatientHandler(patientService))
			r.With(txRequired).Put("/patients/{patient_id}", handlers.NewUpdatePatientHandler(patientService))
			r.With(txRequired).Delete("/patients/{patient_id}", handlers.NewDeletePatientHandler(patientService))

			r.With(txRequired).Post("/doctors", handlers.NewCreateDoctorHandler(doctorService))
			r.Get("/doctors", handlers.NewListDoctorsHandler(doctorService))
			r.Get("/doctors/search", handlers.NewSearchDoctorsHandler(doctorService))
			r.Get("/doctors/{doctor_id}", handlers.NewGetDoctorHandler(doctorService))
			r.With(txRequired).Put("/doctors/{doctor_id}", handlers.NewUpdateDoctorHandler(doctorService))
			r.With(txRequired).Delete("/doctors/{doctor_id}", handlers.NewDeleteDoctorHandler(doctorService))

			r.With(txRequired).Post("/appointments", handlers.NewCreateAppointmentHandler(appointmentService))
			r.Get("/appointments/{appointment_id}", handlers.NewGetAppointmentHandler(appointmentService))
			r.With(txRequired).Put("/appointments/{appointment_id}", handlers.NewUpdateAppointmentHandler(appointmentService))
			r.With(txRequired).Post("/appointments/{appointment_id}/cancel", handlers.NewCancelAppointmentHandler(appointmentService))
			r.With(txRequired).Delete("/appointments/{appointment_id}", handlers.NewDeleteAppointmentHandler(appointmentService))
			r.Get("/patients/{patient_id}/appointments", handlers.NewListPatientAppointmentsHandler(appointmentService))
			r.Get("/patients/{patient_id}/appointments/upcoming-count", handlers.NewUpcomingCountHandler(appointmentService))
			r.Get("/doctors/{doctor_id}/appointments", handlers.NewListDoctorAppointmentsHandler(appointmentService))
			r.Get("/doctors/{doctor_id}/appointments/today-count", handlers.NewTodayCountHandler(appointmentService))

			r.With(txRequired).Post("/patients/{patient_id}/medical-history", handlers.NewCreateMedicalRecordHandler(historyService))
			r.Get("/patients/{patient_id}/medical-history", handlers.NewListMedicalHistoryHandler(historyService))
			r.With(txRequired).Post("/patients/{patient_id}/vitals", handlers.NewRecordVitalsHandler(vitalsService))
			r.Get("/patients/{patient_id}/vitals", handlers.NewListVitalsHandler(vitalsService))
			r.Get("/patients/{patient_id}/vitals/latest", handlers.NewLatestVitalsHandler(vitalsService))
			r.Get("/vitals/{vital_id}", handlers.NewGetVitalsHandler(vitalsService))
			r.With(txRequired).Put("/vitals/{vital_id}", handlers.NewUpdateVitalsHandler(vitalsService))
			r.With(txRequired).Delete("/vitals/{vital_id}", handlers.NewDeleteVitalsHandler(vitalsService))
			r.Get("/medical-history/search", handlers.NewSearchMedicalHistoryHandler(historyService))
			r.Get("/medical-history/{history_id}", handlers.NewGetMedicalRecordHandler(historyService))
			r.With(txRequired).Put("/medical-history/{history_id}", handlers.NewUpdateMedicalRecordHandler(historyService))
			r.With(txRequired).Delete("/medical-history/{history_id}", handlers.NewDeleteMedicalRecordHandler(historyService))

			r.Get("/patients/{patient_id}/summary", handlers.NewSummarizeHistoryHandler(summarizer))
			r.Post("/agents/prescriptions/parse", handlers.NewParsePrescriptionHandler(prescriptionParser))
			r.Post("/agents/doctors/match", handlers.NewMatchDoctorHandler(matcher))

			r.Post("/files/{folder}", handlers.NewUploadFileHandler(blobStore))
			r.Get("/files/{folder}", handlers.NewListFilesHandler(blobStore))
			r.Get("/files/{folder}/{name}", handlers.NewDownloadFileHandler(blobStore))
			r.Delete("/files/{folder}/{name}", handlers.NewDeleteFileHandler(blobStore))

			r.Get("/ws/chat", handlers.NewChatWSHandler(hub, chatAgent))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.appHost, cfg.appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.appHost, cfg.appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
