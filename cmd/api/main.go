package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ground-truth/land-portal/land-portal-backend/internal/auth"
	"ground-truth/land-portal/land-portal-backend/internal/capture"
	"ground-truth/land-portal/land-portal-backend/internal/config"
	"ground-truth/land-portal/land-portal-backend/internal/inquiries"
	"ground-truth/land-portal/land-portal-backend/internal/listings"
	"ground-truth/land-portal/land-portal-backend/internal/notifications"
	"ground-truth/land-portal/land-portal-backend/internal/parcels"
	"ground-truth/land-portal/land-portal-backend/internal/photos"
	"ground-truth/land-portal/land-portal-backend/internal/sales"
	"ground-truth/land-portal/land-portal-backend/pkg/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Postgres: listings, inquiries (sqlx) and the sales ledger (gorm
	// over the same database).
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	gormDB, err := gorm.Open(gormpostgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to open gorm connection", zap.Error(err))
	}
	if err := sales.Migrate(gormDB); err != nil {
		logger.Fatal("failed to migrate sales tables", zap.Error(err))
	}

	// MongoDB: parcel documents and photo-node metadata.
	mongoCtx, cancelMongo := context.WithTimeout(ctx, 10*time.Second)
	defer cancelMongo()
	mongoClient, err := mongo.Connect(mongoCtx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database(cfg.Mongo.Database)

	// Elasticsearch: listing search index.
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Search.Addresses,
	})
	if err != nil {
		logger.Fatal("failed to create elasticsearch client", zap.Error(err))
	}

	// AWS integrations. When credentials are absent we fall back to
	// local no-op/in-memory stand-ins so the API runs without AWS.
	var (
		photoStore storage.S3Client
		telemetry  capture.TelemetryRecorder
		mailer     inquiries.Mailer
		notifier   sales.PaymentNotifier
	)
	if cfg.AWS.AccessKey != "" || os.Getenv("AWS_PROFILE") != "" {
		awsOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWS.Region)}
		if cfg.AWS.AccessKey != "" {
			awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, "")))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			logger.Fatal("failed to load aws config", zap.Error(err))
		}

		photoStore, err = storage.NewS3Client(ctx, cfg.AWS.Region, cfg.AWS.AccessKey, cfg.AWS.SecretKey, cfg.AWS.S3Endpoint)
		if err != nil {
			logger.Fatal("failed to create s3 client", zap.Error(err))
		}
		telemetry = capture.NewDynamoTelemetry(dynamodb.NewFromConfig(awsCfg), cfg.AWS.TelemetryTable)
		if cfg.AWS.SenderEmail != "" {
			mailer = inquiries.NewSESMailer(sesv2.NewFromConfig(awsCfg), cfg.AWS.SenderEmail)
		}
		if cfg.AWS.PaymentsTopic != "" {
			notifier = sales.NewSNSNotifier(sns.NewFromConfig(awsCfg), cfg.AWS.PaymentsTopic)
		}
	} else {
		logger.Warn("no aws credentials configured, using local stand-ins")
		photoStore = storage.NewMemoryClient()
		telemetry = capture.NewNopTelemetry()
	}

	// Live status hub.
	hub := notifications.NewHub(logger)
	defer hub.Close()

	// Domain wiring.
	parcelRepo := parcels.NewRepository(mongoDB)
	parcelService := parcels.NewService(parcelRepo, logger)
	parcelHandler := parcels.NewHandler(parcelService)

	listingRepo := listings.NewRepository(db)
	searchIndex := listings.NewSearchIndex(esClient, cfg.Search.Index)
	listingService := listings.NewService(listingRepo, searchIndex, logger)
	listingHandler := listings.NewHandler(listingService)

	inquiryRepo := inquiries.NewRepository(db)
	inquiryService := inquiries.NewService(inquiryRepo, &listingDirectory{repo: listingRepo}, mailer, hub, logger)
	inquiryHandler := inquiries.NewHandler(inquiryService)

	saleRepo := sales.NewRepository(gormDB)
	saleService := sales.NewService(saleRepo, notifier, logger)
	saleHandler := sales.NewHandler(saleService)

	photoRepo := photos.NewRepository(mongoDB)
	photoService := photos.NewService(photoRepo, photoStore, cfg.AWS.PhotoBucket, logger)
	photoHandler := photos.NewHandler(photoService)

	gateway := capture.NewDeviceGateway()
	captureService := capture.NewService(gateway, parcelService, telemetry, hub, logger)
	captureHandler := capture.NewHandler(captureService, gateway)

	// Router.
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	api := router.Group("/api/v1")
	if cfg.Security.JWTSecret != "" {
		api.Use(auth.NewValidator(cfg.Security.JWTSecret).Middleware())
	} else {
		logger.Warn("JWT_SECRET not set, api is unauthenticated")
	}
	{
		parcelHandler.RegisterRoutes(api)
		listingHandler.RegisterRoutes(api)
		inquiryHandler.RegisterRoutes(api)
		saleHandler.RegisterRoutes(api)
		photoHandler.RegisterRoutes(api)
		captureHandler.RegisterRoutes(api)
	}

	router.GET("/ws", func(c *gin.Context) {
		if err := hub.HandleConnection(c.Writer, c.Request); err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
		}
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now(),
			"connections": hub.ConnectionCount(),
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.Int("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// listingDirectory resolves the listing title and vendor contact for
// inquiry notifications.
type listingDirectory struct {
	repo listings.Repository
}

func (d *listingDirectory) ListingContact(ctx context.Context, listingID uuid.UUID) (string, string, error) {
	listing, err := d.repo.GetByID(ctx, listingID)
	if err != nil {
		return "", "", err
	}
	return listing.Title, listing.VendorEmail, nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
