package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ground-truth/land-portal/land-portal-backend/internal/config"
	"ground-truth/land-portal/land-portal-backend/internal/listings"
	"ground-truth/land-portal/land-portal-backend/internal/sales"
)

// The worker process runs the recurring maintenance jobs: the nightly
// overdue-installment scan and the listing index rebuild.
func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to open gorm connection", zap.Error(err))
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Search.Addresses,
	})
	if err != nil {
		logger.Fatal("failed to create elasticsearch client", zap.Error(err))
	}

	var notifier sales.PaymentNotifier
	if cfg.AWS.PaymentsTopic != "" {
		awsOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWS.Region)}
		if cfg.AWS.AccessKey != "" {
			awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, "")))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			logger.Fatal("failed to load aws config", zap.Error(err))
		}
		notifier = sales.NewSNSNotifier(sns.NewFromConfig(awsCfg), cfg.AWS.PaymentsTopic)
	} else {
		logger.Warn("PAYMENTS_TOPIC_ARN not set, overdue notifications disabled")
	}

	saleService := sales.NewService(sales.NewRepository(gormDB), notifier, logger)
	listingService := listings.NewService(
		listings.NewRepository(db),
		listings.NewSearchIndex(esClient, cfg.Search.Index),
		logger,
	)

	c := cron.New()

	// Nightly overdue scan at 02:00.
	if _, err := c.AddFunc("0 2 * * *", func() {
		jobCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		overdue, err := saleService.OverdueSales(jobCtx, time.Now())
		if err != nil {
			logger.Error("overdue scan failed", zap.Error(err))
			return
		}
		logger.Info("overdue scan complete", zap.Int("overdue_sales", len(overdue)))
	}); err != nil {
		logger.Fatal("failed to schedule overdue scan", zap.Error(err))
	}

	// Weekly full reindex, Sunday 03:00. Day-to-day index patches happen
	// inline on listing mutations.
	if _, err := c.AddFunc("0 3 * * 0", func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()

		indexed, err := listingService.ReindexAll(jobCtx)
		if err != nil {
			logger.Error("listing reindex failed", zap.Error(err))
			return
		}
		logger.Info("listing reindex complete", zap.Int("indexed", indexed))
	}); err != nil {
		logger.Fatal("failed to schedule reindex", zap.Error(err))
	}

	c.Start()
	logger.Info("workers started", zap.Int("jobs", len(c.Entries())))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("stopping workers")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("workers stopped")
}
