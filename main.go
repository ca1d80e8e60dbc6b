package main

import (
	"context"
	"time"

	"github.com/sefailyasoz95/test-mate/config"
	"github.com/sefailyasoz95/test-mate/database"
	adminapi "github.com/sefailyasoz95/test-mate/internal/api/admin"
	appsapi "github.com/sefailyasoz95/test-mate/internal/api/apps"
	authapi "github.com/sefailyasoz95/test-mate/internal/api/auth"
	billingapi "github.com/sefailyasoz95/test-mate/internal/api/billing"
	stripewebhooks "github.com/sefailyasoz95/test-mate/internal/api/stripewebhook"
	usersapi "github.com/sefailyasoz95/test-mate/internal/api/users"
	routes "github.com/sefailyasoz95/test-mate/internal/app/http"
	"github.com/sefailyasoz95/test-mate/internal/infra/logging"
	"github.com/sefailyasoz95/test-mate/internal/infra/storage"
	"github.com/sefailyasoz95/test-mate/internal/infra/stripeclient"
	"github.com/sefailyasoz95/test-mate/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	log := logging.New()

	db, err := database.Init(config.DB_URL)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}

	stripeCli := stripeclient.New(config.STRIPE_SECRET_KEY)

	minioCli, err := minio.New(config.S3_ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(config.S3_ACCESS_KEY, config.S3_SECRET_KEY, ""),
		Secure: config.S3_USE_SSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("s3 client init failed")
	}
	screenshots := storage.NewScreenshotStore(minioCli, config.S3_BUCKET, config.S3_PUBLIC_URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := screenshots.EnsureBucket(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("screenshot bucket init failed")
	}
	cancel()

	appStore := repo.NewApps(db)
	purchaseStore := repo.NewPurchases(db)

	h := routes.Handlers{
		Auth:  authapi.NewHandler(db, log),
		Users: usersapi.NewHandler(db),
		Apps:  appsapi.NewHandler(appStore, log),
		Billing: billingapi.NewHandler(
			stripeCli, stripeCli, purchaseStore,
			config.SINGLE_TESTER_PRICE, config.APP_URL, log),
		Webhook: stripewebhooks.NewHandler(
			config.STRIPE_WEBHOOK_SECRET, purchaseStore, appStore,
			config.SINGLE_TESTER_PRICE, log),
		Admin: adminapi.NewHandler(db, appStore, screenshots, log),
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, h)

	log.Info().Str("port", config.PORT).Msg("starting server")
	if err := r.Run(":" + config.PORT); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
