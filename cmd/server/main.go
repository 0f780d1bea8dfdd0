package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netbill/netbill/internal/api"
	v1 "github.com/netbill/netbill/internal/api/v1"
	"github.com/netbill/netbill/internal/cache"
	"github.com/netbill/netbill/internal/config"
	"github.com/netbill/netbill/internal/domain/connection"
	"github.com/netbill/netbill/internal/domain/discount"
	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/domain/subscription"
	"github.com/netbill/netbill/internal/integration/razorpay"
	"github.com/netbill/netbill/internal/logger"
	"github.com/netbill/netbill/internal/mongo"
	"github.com/netbill/netbill/internal/repository"
	"github.com/netbill/netbill/internal/service"
	"github.com/netbill/netbill/internal/types"
	"github.com/netbill/netbill/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	fx.New(
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			newLogger,
			cache.NewInMemoryCache,
			mongo.NewClient,

			repository.NewPlanRepository,
			repository.NewConnectionRepository,
			repository.NewSubscriptionRepository,
			repository.NewDiscountRepository,

			razorpay.NewClient,

			newServiceParams,
			service.NewPlanService,
			service.NewPricingService,
			service.NewConnectionService,
			service.NewSubscriptionService,
			service.NewDiscountService,

			v1.NewPlanHandler,
			v1.NewConnectionHandler,
			v1.NewSubscriptionHandler,
			v1.NewDiscountHandler,
			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	).Run()
}

func newLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(logger.Config{Level: cfg.Logging.Level})
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	c cache.Cache,
	planRepo plan.Repository,
	connRepo connection.Repository,
	subRepo subscription.Repository,
	discountRepo discount.Repository,
	gateway razorpay.Gateway,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:       log,
		Config:       cfg,
		Cache:        c,
		PlanRepo:     planRepo,
		ConnRepo:     connRepo,
		SubRepo:      subRepo,
		DiscountRepo: discountRepo,
		Gateway:      gateway,
	}
}

func newHandlers(
	planHandler *v1.PlanHandler,
	connectionHandler *v1.ConnectionHandler,
	subscriptionHandler *v1.SubscriptionHandler,
	discountHandler *v1.DiscountHandler,
) api.Handlers {
	return api.Handlers{
		Plan:         planHandler,
		Connection:   connectionHandler,
		Subscription: subscriptionHandler,
		Discount:     discountHandler,
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	db *mongo.Client,
	log *logger.Logger,
) {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			return db.Disconnect(ctx)
		},
	})
}
