package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"givepoint/internal/models"
	"givepoint/internal/repository"
)

// Repos bundles repositories for API handlers.
type Repos struct {
	User     *repository.UserRepository
	Campaign *repository.CampaignRepository
	Donation *repository.DonationRepository
	Reward   *repository.RewardRepository
}

func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    nil,
	})
}
