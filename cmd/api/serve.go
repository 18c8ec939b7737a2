package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	adminhandler "github.com/jwalitptl/hms-api/internal/handler/admin"
	appointmenthandler "github.com/jwalitptl/hms-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/hms-api/internal/handler/auth"
	billinghandler "github.com/jwalitptl/hms-api/internal/handler/billing"
	doctorhandler "github.com/jwalitptl/hms-api/internal/handler/doctor"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	labreporthandler "github.com/jwalitptl/hms-api/internal/handler/labreport"
	patienthandler "github.com/jwalitptl/hms-api/internal/handler/patient"
	prescriptionhandler "github.com/jwalitptl/hms-api/internal/handler/prescription"
	promhandler "github.com/jwalitptl/hms-api/internal/handler/prometheus"
	userhandler "github.com/jwalitptl/hms-api/internal/handler/user"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/router"
	"github.com/jwalitptl/hms-api/internal/service/admin"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	"github.com/jwalitptl/hms-api/internal/service/billing"
	"github.com/jwalitptl/hms-api/internal/service/doctor"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/service/labreport"
	"github.com/jwalitptl/hms-api/internal/service/patient"
	"github.com/jwalitptl/hms-api/internal/service/prescription"
	"github.com/jwalitptl/hms-api/internal/service/user"
	"github.com/jwalitptl/hms-api/internal/storage"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/validator"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)
	validator.Setup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(a.db.DB, "hms"),
	)
	m := metrics.NewMetrics("hms", reg)

	rdb, err := a.redisClient(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	store, err := newStore(ctx, a, m)
	if err != nil {
		return err
	}

	auditLog, err := audit.NewLogger(cfg.Audit)
	if err != nil {
		return err
	}
	defer auditLog.Sync()

	// Repositories
	base := postgres.NewBaseRepository(a.db)
	tx := postgres.NewTransactor(base)
	userRepo := postgres.NewUserRepository(base)
	profileRepo := postgres.NewProfileRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	medicalRepo := postgres.NewMedicalRecordRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	treatmentRepo := postgres.NewTreatmentRepository(base)
	labReportRepo := postgres.NewLabReportRepository(base)
	billingRepo := postgres.NewBillingRepository(base)
	statsRepo := postgres.NewStatsRepository(base)
	events := event.NewEventService(postgres.NewOutboxRepository(base))

	// Services
	authSvc := a.authService(base, rdb)
	userSvc := user.NewService(userRepo, profileRepo)
	adminSvc := admin.NewService(statsRepo)
	patientSvc := patient.NewService(patientRepo, profileRepo, medicalRepo, appointmentRepo, labReportRepo)
	appointmentSvc := appointment.NewService(tx, appointmentRepo, patientRepo, profileRepo, prescriptionRepo, events)
	prescriptionSvc := prescription.NewService(tx, prescriptionRepo, appointmentRepo, profileRepo, events)
	doctorSvc := doctor.NewService(profileRepo, patientRepo, appointmentRepo, treatmentRepo, labReportRepo, statsRepo)
	labReportSvc := labreport.NewService(tx, labReportRepo, patientRepo, profileRepo, store, events, a.log)
	billingSvc := billing.NewService(tx, billingRepo, patientRepo, events)

	r := router.NewRouter(
		router.RouterConfig{
			ExposeInternal: cfg.IsDevelopment(),
			CORSOrigins:    cfg.Server.CORSOrigins,
			RateLimit:      rateLimit(cfg.RateLimit.Enabled, cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		},
		middleware.NewAuthMiddleware(authSvc),
		auditLog,
		m,
		authhandler.NewHandler(authSvc),
		health.NewHandler(a.db),
		promhandler.New(reg),
		userhandler.NewHandler(userSvc),
		adminhandler.NewHandler(adminSvc),
		patienthandler.NewHandler(patientSvc),
		appointmenthandler.NewHandler(appointmentSvc),
		prescriptionhandler.NewHandler(prescriptionSvc),
		doctorhandler.NewHandler(doctorSvc),
		labreporthandler.NewHandler(labReportSvc),
		billinghandler.NewHandler(billingSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("Server exited")
	return nil
}

// newStore selects the lab report file backend and wraps it with the
// circuit breaker.
func newStore(ctx context.Context, a *app, m *metrics.Metrics) (storage.Store, error) {
	var backend storage.Store
	switch a.cfg.Storage.Driver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		backend = s3Store
	default:
		a.log.Warn("Using in-memory file storage; uploads are lost on restart")
		backend = storage.NewMemoryStore(a.cfg.Storage.Bucket)
	}
	return storage.NewResilientStore(backend, m), nil
}

func rateLimit(enabled bool, rps float64) rate.Limit {
	if !enabled {
		return 0
	}
	return rate.Limit(rps)
}
