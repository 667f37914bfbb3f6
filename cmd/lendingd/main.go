package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/credentials"

	"github.com/nikhilpunky/manaja2/internal/application/usecase"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/adapter"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/cache"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/config"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/kafka"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/metrics"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/persistence/memory"
	pgRepo "github.com/nikhilpunky/manaja2/internal/infrastructure/persistence/postgres"
	"github.com/nikhilpunky/manaja2/internal/infrastructure/resilience"
	grpcPresentation "github.com/nikhilpunky/manaja2/internal/presentation/grpc"
	"github.com/nikhilpunky/manaja2/internal/presentation/rest"
	"github.com/nikhilpunky/manaja2/pkg/auth"
	pkgkafka "github.com/nikhilpunky/manaja2/pkg/kafka"
	"github.com/nikhilpunky/manaja2/pkg/observability"
	pkgpostgres "github.com/nikhilpunky/manaja2/pkg/postgres"
	"github.com/nikhilpunky/manaja2/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("lendingd exited with error", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	apps        port.LoanApplicationRepository
	loans       port.LoanRepository
	kyc         port.KYCRepository
	origination port.OriginationStore
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})
	logger.Info("starting lending service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"storage", cfg.StorageDriver,
	)

	if cfg.Tracing.Endpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	policy, err := config.LoadPolicy(cfg.RiskPolicyFile)
	if err != nil {
		return err
	}
	engine, err := service.NewUnderwritingEngine(policy)
	if err != nil {
		return fmt.Errorf("underwriting engine: %w", err)
	}

	registry := observability.NewRegistry()
	m := metrics.New(registry)
	checks := map[string]rest.ReadinessCheck{}

	// Storage.
	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		apps, loans := memory.NewLoanApplicationRepo(), memory.NewLoanRepo()
		repos = repositories{
			apps:        apps,
			loans:       loans,
			kyc:         memory.NewKYCRepo(),
			origination: memory.NewOriginationStore(apps, loans),
		}
	default:
		pgCfg := pkgpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
			MaxConns: int32(cfg.DB.MaxConns),

			ApplicationName:  cfg.ServiceName,
			StatementTimeout: cfg.DB.StatementTimeout,
		}
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
		dbCancel()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to database")

		if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
			return err
		}
		checks["postgres"] = func(ctx context.Context) error {
			return pkgpostgres.HealthCheck(ctx, pool, "loan_applications", "loans")
		}
		repos = repositories{
			apps:        pgRepo.NewLoanApplicationRepo(pool),
			loans:       pgRepo.NewLoanRepo(pool),
			kyc:         pgRepo.NewKYCRepo(pool),
			origination: pgRepo.NewOriginationStore(pool),
		}
	}

	// Holdings registry, optionally behind the Redis read-through cache.
	var holdings port.HoldingsRegistry = adapter.NewSimulatedFundRegistry(nil)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, holdings lookups will bypass the cache until it recovers", "error", err)
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		holdings = cache.NewHoldingsCache(holdings, rdb, cfg.Redis.HoldingsTTL, m, logger)
	}

	// Identity verification.
	verifier, err := newVerifier(cfg.EKYC, m, logger)
	if err != nil {
		return err
	}

	// Events.
	var publisher port.EventPublisher = kafka.NewLogEventPublisher(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := pkgkafka.NewProducer(pkgkafka.Config{
			Brokers:       cfg.Kafka.Brokers,
			SASLEnabled:   cfg.Kafka.SASLEnabled,
			SASLMechanism: cfg.Kafka.SASLMechanism,
			SASLUsername:  cfg.Kafka.SASLUsername,
			SASLPassword:  cfg.Kafka.SASLPassword,
			TLS:           cfg.Kafka.TLS,
		})
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }()
		publisher = kafka.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, logger)
	}

	payout := adapter.NewSimulatedPayout(logger)
	handler := grpcPresentation.NewLendingHandler(grpcPresentation.UseCases{
		VerifyKYC:            usecase.NewVerifyKYCUseCase(repos.kyc, verifier, publisher, logger),
		SubmitApplication:    usecase.NewSubmitLoanApplicationUseCase(repos.origination, repos.loans, repos.kyc, holdings, payout, publisher, engine, m, logger),
		CheckEligibility:     usecase.NewCheckEligibilityUseCase(repos.kyc, holdings, engine),
		MakeRepayment:        usecase.NewMakeRepaymentUseCase(repos.loans, adapter.NewSimulatedPaymentGateway(logger), publisher, m, logger),
		GetLoanApplication:   usecase.NewGetLoanApplicationUseCase(repos.apps),
		ListLoanApplications: usecase.NewListLoanApplicationsUseCase(repos.apps),
		GetLoan:              usecase.NewGetLoanUseCase(repos.loans),
		ListLoans:            usecase.NewListLoansUseCase(repos.loans),
		DisburseLoan:         usecase.NewDisburseLoanUseCase(repos.loans, repos.kyc, payout, publisher, m, logger),
		ListRepayments:       usecase.NewListRepaymentsUseCase(repos.loans),
		ListLoanProducts:     usecase.NewListLoanProductsUseCase(),
	}, logger)

	jwtSvc, err := newJWTService(cfg.JWT)
	if err != nil {
		return err
	}

	var creds credentials.TransportCredentials
	if cfg.TLS.Enabled {
		if creds, err = tlsutil.ServerCredentials(tlsutil.ServerOptions{
			CertFile:     cfg.TLS.CertFile,
			KeyFile:      cfg.TLS.KeyFile,
			ClientCAFile: cfg.TLS.ClientCAFile,
		}); err != nil {
			return err
		}
	}

	grpcServer := grpcPresentation.NewServer(handler, grpcPresentation.ServerOptions{
		JWT:         jwtSvc,
		Credentials: creds,
		Reflection:  cfg.GRPCReflection,
		Metrics:     m,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           rest.NewRouter(rest.NewHealthHandler(cfg.ServiceName, checks, logger), observability.MetricsHandler(registry)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		grpcServer.GracefulStop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("lending service stopped")
	return err
}

func newVerifier(cfg config.EKYCConfig, m *metrics.Metrics, logger *slog.Logger) (port.IdentityVerifier, error) {
	if cfg.BaseURL == "" {
		logger.Warn("EKYC_BASE_URL not set, using the simulated eKYC verifier")
		return adapter.NewSimulatedVerifier(), nil
	}

	tlsCfg, err := tlsutil.ClientConfig(tlsutil.ClientOptions{CAFile: cfg.CAFile, PinnedSPKI: cfg.PinnedSPKI})
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &http.Transport{TLSClientConfig: tlsCfg},
	}

	isSuccessful := adapter.IsBreakerSuccess
	if !cfg.BreakerOn {
		isSuccessful = func(error) bool { return true }
	}
	cb := resilience.NewCircuitBreaker("ekyc", logger, isSuccessful)

	return adapter.NewEKYCClient(httpClient, cfg.BaseURL, cfg.APIKey, cb, resilience.Config{
		MaxRetries:     cfg.Retries,
		InitialBackoff: cfg.Backoff,
		MaxConcurrency: 16,
	}, m), nil
}

func newJWTService(cfg config.JWTConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer, Secret: cfg.Secret}
	if cfg.PublicKeyFile != "" {
		keyData, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return svc, nil
}
