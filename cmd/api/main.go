package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaharz/negishscan/internal/application"
	appadvice "github.com/shaharz/negishscan/internal/application/advice"
	apppayments "github.com/shaharz/negishscan/internal/application/payments"
	appscans "github.com/shaharz/negishscan/internal/application/scans"
	"github.com/shaharz/negishscan/internal/config"
	advicedomain "github.com/shaharz/negishscan/internal/domain/advice"
	paydomain "github.com/shaharz/negishscan/internal/domain/payments"
	scandomain "github.com/shaharz/negishscan/internal/domain/scans"
	"github.com/shaharz/negishscan/internal/domain/scanerrors"
	openaiclient "github.com/shaharz/negishscan/internal/infra/ai/openai"
	"github.com/shaharz/negishscan/internal/infra/db/memory"
	mysqlp "github.com/shaharz/negishscan/internal/infra/db/mysql"
	postgresp "github.com/shaharz/negishscan/internal/infra/db/postgres"
	"github.com/shaharz/negishscan/internal/infra/gateway/grow"
	"github.com/shaharz/negishscan/internal/infra/httpserver"
	"github.com/shaharz/negishscan/internal/infra/mailer"
	"github.com/shaharz/negishscan/internal/infra/prober"
	"github.com/shaharz/negishscan/internal/infra/render"
	minioStore "github.com/shaharz/negishscan/internal/infra/storage"
	"github.com/shaharz/negishscan/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	checkers := map[string]middleware.HealthChecker{}

	// repositories: mysql, postgres, or in-memory for local runs
	var (
		scanRepo    scandomain.Repository
		sessionRepo paydomain.Repository
		adviceRepo  advicedomain.Repository
		failureRepo scanerrors.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		scanRepo = mysqlp.NewScanRepository(db)
		sessionRepo = mysqlp.NewSessionRepository(db)
		adviceRepo = mysqlp.NewAdviceRepository(db)
		failureRepo = mysqlp.NewScanErrorRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		scanRepo = postgresp.NewScanRepository(db)
		sessionRepo = postgresp.NewSessionRepository(db)
		adviceRepo = memory.NewAdviceRepository()
		failureRepo = memory.NewScanErrorRepository()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	default:
		log.Println("no database configured, using in-memory stores")
		scanRepo = memory.NewScanRepository()
		sessionRepo = memory.NewSessionRepository()
		adviceRepo = memory.NewAdviceRepository()
		failureRepo = memory.NewScanErrorRepository()
	}

	// document cache: minio when configured, in-memory otherwise
	var documents paydomain.DocumentStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		documents = store
	} else {
		documents = memory.NewDocumentStore()
	}

	renderer := render.New()

	analyzer := prober.New(cfg.Prober.Endpoint)
	checkers["analyzer"] = middleware.CheckerFunc(analyzer.Health)

	scansSvc := &appscans.Service{
		Repo:     scanRepo,
		Prober:   analyzer,
		Renderer: renderer,
		Mailer:   mailer.LogMailer{},
		Failures: failureRepo,
		Clock:    application.SystemClock{},
	}

	gateway := grow.New(
		cfg.Payment.APIKey,
		cfg.Payment.UserID,
		cfg.Payment.PageCode,
		cfg.Payment.Sandbox,
		cfg.Server.FrontendURL,
		cfg.Server.BackendURL,
	)
	if gateway.DemoMode() {
		log.Println("WARNING: payment gateway running in DEMO MODE, no real payments")
	}

	paymentsSvc := &apppayments.Service{
		Repo:      sessionRepo,
		Gateway:   gateway,
		Scans:     scanRepo,
		Renderer:  renderer,
		Documents: documents,
		Clock:     application.SystemClock{},
		Amount:    cfg.Payment.Amount,
	}

	var adviceSvc *appadvice.Service
	if cfg.OpenAI.APIKey != "" {
		adviceSvc = appadvice.NewService(
			openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
			adviceRepo,
		)
	}

	mux := httpserver.NewRouter(scansSvc, paymentsSvc, adviceSvc, os.Getenv("ADMIN_API_KEY"), checkers)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // document generation is the slow path
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
