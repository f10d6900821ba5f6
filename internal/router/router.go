package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"givepoint/internal/callback"
	"givepoint/internal/config"
	"givepoint/internal/donation"
	"givepoint/internal/gateway"
	"givepoint/internal/handler"
	"givepoint/internal/handler/api"
	"givepoint/internal/middleware"
	"givepoint/internal/repository"
	"givepoint/internal/reward"
)

// Setup configures all routes for the Echo server and returns the donation
// service so the cron reconciler can share it.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	cfg *config.Config,
	cache callback.VerifiedCache,
	notifier donation.Notifier,
	logger *zap.Logger,
) *donation.Service {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger(logger))

	// Repositories
	repos := &api.Repos{
		User:     repository.NewUserRepository(db),
		Campaign: repository.NewCampaignRepository(db),
		Donation: repository.NewDonationRepository(db),
		Reward:   repository.NewRewardRepository(db),
	}
	events := repository.NewPaymentEventRepository(db)

	// Services
	rewardSvc := reward.NewService(repos.User, repos.Reward, repos.Donation, cfg.Reward.PointsPerUnit, logger)
	donationSvc := donation.NewService(repos.Donation, repos.Campaign, rewardSvc, notifier, logger)
	audit := donation.NewAudit(events)

	// Verification clients
	verifiers := map[gateway.Gateway]gateway.Verifier{
		gateway.GatewayA: gateway.NewAlphaVerifier(cfg.Gateway.A.BaseURL, cfg.Gateway.A.SecretKey),
		gateway.GatewayB: gateway.NewBetaVerifier(cfg.Gateway.B.BaseURL, cfg.Gateway.B.ProductCode, cfg.Gateway.B.SecretKey),
	}

	// Handlers
	callbackHandler := handler.NewCallbackHandler(verifiers, donationSvc, rewardSvc, audit, cache, cfg.Server.BaseURL, logger)
	donationHandler := api.NewDonationHandler(repos, logger)
	rewardHandler := api.NewRewardHandler(rewardSvc, logger)
	campaignHandler := api.NewCampaignHandler(repos, logger)

	// Gateway redirect callback. The donor's session token survives the
	// round-trip as a query parameter, so auth is optional here.
	paymentGroup := e.Group("/payment")
	paymentGroup.Use(middleware.OptionalAuth(cfg.JWT.Secret))
	paymentGroup.GET("/callback", callbackHandler.PaymentCallback)

	// Public API
	e.GET("/api/campaigns", campaignHandler.List)
	e.GET("/api/campaigns/:id", campaignHandler.Get)
	e.GET("/api/rewards/tiers", rewardHandler.Tiers)

	// Authenticated API
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.Auth(cfg.JWT.Secret))
	apiGroup.GET("/donations", donationHandler.List)
	apiGroup.GET("/rewards/summary", rewardHandler.Summary)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return donationSvc
}
