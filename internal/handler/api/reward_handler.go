package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"givepoint/internal/middleware"
	"givepoint/internal/reward"
)

// RewardSummarizer is the read side of the reward service.
type RewardSummarizer interface {
	Summary(ctx context.Context, userID string) (*reward.Summary, error)
}

// RewardHandler serves the donor's reward summary and the tier table.
type RewardHandler struct {
	rewards RewardSummarizer
	logger  *zap.Logger
}

func NewRewardHandler(rewards RewardSummarizer, logger *zap.Logger) *RewardHandler {
	return &RewardHandler{rewards: rewards, logger: logger}
}

// Summary returns points, tier, progress and recent transactions for the
// authenticated donor.
func (h *RewardHandler) Summary(c echo.Context) error {
	userID := middleware.UserID(c)

	summary, err := h.rewards.Summary(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("reward summary failed", zap.String("user_id", userID), zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Could not load reward summary")
	}
	return successResponse(c, "OK", summary)
}

// Tiers returns the static tier table for display.
func (h *RewardHandler) Tiers(c echo.Context) error {
	return successResponse(c, "OK", reward.Tiers())
}
