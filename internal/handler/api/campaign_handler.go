package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CampaignHandler serves campaign reads for the donation flow.
type CampaignHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewCampaignHandler(repos *Repos, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{repos: repos, logger: logger}
}

// Get returns a single campaign.
func (h *CampaignHandler) Get(c echo.Context) error {
	id := c.Param("id")
	campaign, err := h.repos.Campaign.FindByID(id)
	if err != nil {
		return errorResponse(c, http.StatusNotFound, "Campaign not found")
	}
	return successResponse(c, "OK", campaign)
}

// List returns active campaigns with pagination.
func (h *CampaignHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, _ := strconv.Atoi(c.QueryParam("page"))

	campaigns, total, err := h.repos.Campaign.FindAll(limit, page)
	if err != nil {
		h.logger.Error("campaign list failed", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Could not load campaigns")
	}
	return successResponse(c, "OK", map[string]interface{}{
		"campaigns": campaigns,
		"total":     total,
	})
}
