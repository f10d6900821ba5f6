package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"givepoint/internal/middleware"
)

// DonationHandler serves the donor's donation history.
type DonationHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewDonationHandler(repos *Repos, logger *zap.Logger) *DonationHandler {
	return &DonationHandler{repos: repos, logger: logger}
}

// List returns the authenticated donor's donations, newest first.
func (h *DonationHandler) List(c echo.Context) error {
	userID := middleware.UserID(c)

	donations, err := h.repos.Donation.FindByUserID(userID, 50)
	if err != nil {
		h.logger.Error("donation list failed", zap.String("user_id", userID), zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Could not load donations")
	}
	return successResponse(c, "OK", donations)
}
