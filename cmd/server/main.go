package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/assessment"
	"rural-health-assistant/internal/config"
	"rural-health-assistant/internal/consultation"
	"rural-health-assistant/internal/language"
	"rural-health-assistant/internal/metrics"
	"rural-health-assistant/internal/patient"
	"rural-health-assistant/internal/platform/telegram"
	"rural-health-assistant/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("no .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	setupLogging(cfg.Log)
	metrics.Register()

	// 1. Infrastructure
	db, err := connectDB(cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("invalid database configuration")
	}
	defer db.Close()
	go migrateWhenReady(ctx, db, cfg.Database, migrationRetryInterval)

	// 2. Gateways
	timeout := cfg.Upstream.Timeout
	if !cfg.Gemini.Enabled() {
		log.Warn("GEMINI_API_KEY is not set, generation will use fallback answers")
	}
	if !cfg.Google.Enabled() {
		log.Warn("Google credentials are not set, translation and speech will be unavailable")
	}

	var tg report.TelegramClient
	if cfg.Telegram.Enabled() {
		tg = telegram.NewClient(cfg.Telegram.BotToken)
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set, high-urgency escalation disabled")
	}

	// 3. Services
	patientSvc := patient.NewService(patient.NewRepository(db))
	reportSvc := report.NewService(tg, cfg.Telegram.DoctorChatID, cfg.Report.FontPath)

	defaults := assessment.StandardDefaults()
	defaults.Backfill.Urgency = assessment.Urgency(cfg.Assessment.DefaultUrgency)
	defaults.Backfill.Confidence = cfg.Assessment.DefaultConfidence

	consultationSvc := consultation.NewService(consultation.Deps{
		Symptoms:    agent.NewSymptomClassifier(cfg.Backends.SymptomURL, timeout),
		Images:      agent.NewImageClassifier(cfg.Backends.SkinURL, cfg.Backends.MouthURL, timeout),
		Generator:   agent.NewGemini(cfg.Gemini, timeout),
		Translator:  language.NewTranslator(agent.NewGoogleTranslate(cfg.Google, timeout)),
		Transcriber: agent.NewGoogleSpeech(cfg.Google, timeout),
		Synthesizer: agent.NewGoogleVoice(cfg.Google, timeout),
		Patients:    patientSvc,
		Notifier:    reportSvc,
	}, defaults)

	// 4. Router
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(consultationSvc, patientSvc, reportSvc),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.WithField("addr", srv.Addr).Info("server starting")
	if err := runServer(ctx, srv); err != nil {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}

// newRouter mounts every API group. Patient routes are always present; while
// the database is down their lookups fail per request.
func newRouter(consultationSvc consultation.Service, patientSvc patient.Service, reportSvc *report.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		consultation.RegisterRoutes(r, consultation.NewHandler(consultationSvc))
		patient.RegisterRoutes(r, patient.NewHandler(patientSvc))
		report.RegisterRoutes(r, report.NewHandler(reportSvc))
	})
	return r
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

const migrationRetryInterval = 5 * time.Second

// connectDB opens the pool without waiting for the server. database/sql
// reconnects on demand, so a database that comes up later is picked up by
// the next query.
func connectDB(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// migrateWhenReady pings until the database answers, then applies the
// migrations once. It gives up when ctx ends.
func migrateWhenReady(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig, interval time.Duration) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			log.Info("connected to database")
			return runMigrations(cfg)
		}
		if attempt == 1 {
			log.WithError(err).Warn("database unreachable, patient lookups will fail until it is up")
		} else {
			log.WithField("attempt", attempt).Debug("waiting for database")
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func runMigrations(cfg config.DatabaseConfig) bool {
	if cfg.MigrationsPath == "" {
		return true
	}
	m, err := migrate.New(cfg.MigrationsPath, cfg.URL)
	if err != nil {
		log.WithError(err).Error("migration init failed")
		return false
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.WithError(err).Error("migration up failed")
		return false
	}
	log.Info("migrations applied")
	return true
}

// cors allows the browser frontend to call the API from another origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
