package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/givebridge-backend/internal/http/response"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/services"
)

type CampaignHandler struct {
	log             *logger.Logger
	campaignService services.CampaignService
}

func NewCampaignHandler(log *logger.Logger, campaignService services.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		log:             log.With("handler", "CampaignHandler"),
		campaignService: campaignService,
	}
}

// POST /api/campaigns
func (ch *CampaignHandler) Create(c *gin.Context) {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		GoalAmount  float64 `json:"goalAmount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := ch.campaignService.Create(c.Request.Context(), services.CreateCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		GoalAmount:  req.GoalAmount,
	})
	if err != nil {
		response.RespondDomainError(c, ch.log, err)
		return
	}
	response.Respond(c, http.StatusCreated, gin.H{"campaign": campaign})
}

// GET /api/campaigns (public)
func (ch *CampaignHandler) List(c *gin.Context) {
	campaigns, err := ch.campaignService.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, ch.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{
		"count":     len(campaigns),
		"campaigns": campaigns,
	})
}

// GET /api/campaigns/:id (public)
func (ch *CampaignHandler) Get(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	campaign, err := ch.campaignService.Get(c.Request.Context(), campaignID)
	if err != nil {
		response.RespondDomainError(c, ch.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{"campaign": campaign})
}

// PATCH /api/campaigns/:id/status
func (ch *CampaignHandler) UpdateStatus(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := ch.campaignService.UpdateStatus(c.Request.Context(), campaignID, req.Status)
	if err != nil {
		response.RespondDomainError(c, ch.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{"campaign": campaign})
}
