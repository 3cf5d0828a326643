package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/givebridge-backend/internal/http/response"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/services"
)

type DonationHandler struct {
	log             *logger.Logger
	donationService services.DonationService
}

func NewDonationHandler(log *logger.Logger, donationService services.DonationService) *DonationHandler {
	return &DonationHandler{
		log:             log.With("handler", "DonationHandler"),
		donationService: donationService,
	}
}

// POST /api/donations
func (dh *DonationHandler) Create(c *gin.Context) {
	var req struct {
		Amount      float64 `json:"amount"`
		Campaign    string  `json:"campaign"`
		Message     string  `json:"message"`
		IsAnonymous *bool   `json:"isAnonymous"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	campaignID, err := uuid.Parse(req.Campaign)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	isAnonymous := false
	if req.IsAnonymous != nil {
		isAnonymous = *req.IsAnonymous
	}

	donation, err := dh.donationService.Create(c.Request.Context(), services.CreateDonationInput{
		Amount:      req.Amount,
		CampaignID:  campaignID,
		Message:     req.Message,
		IsAnonymous: isAnonymous,
	})
	if err != nil {
		response.RespondDomainError(c, dh.log, err)
		return
	}

	response.Respond(c, http.StatusCreated, gin.H{
		"message":  "Donation created successfully",
		"donation": donation,
	})
}

// GET /api/donations
func (dh *DonationHandler) ListMine(c *gin.Context) {
	donations, err := dh.donationService.ListMine(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, dh.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{
		"count":     len(donations),
		"donations": donations,
	})
}

// GET /api/donations/:id
func (dh *DonationHandler) Get(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid donation id")
		return
	}

	donation, err := dh.donationService.Get(c.Request.Context(), donationID)
	if err != nil {
		response.RespondDomainError(c, dh.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{"donation": donation})
}

// GET /api/donations/campaign/:campaignId (public)
func (dh *DonationHandler) ListForCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	donations, err := dh.donationService.ListForCampaign(c.Request.Context(), campaignID)
	if err != nil {
		response.RespondDomainError(c, dh.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{
		"count":     len(donations),
		"donations": donations,
	})
}

// DELETE /api/donations/:id (admin)
func (dh *DonationHandler) Delete(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid donation id")
		return
	}

	if err := dh.donationService.Delete(c.Request.Context(), donationID); err != nil {
		response.RespondDomainError(c, dh.log, err)
		return
	}
	response.Respond(c, http.StatusOK, gin.H{"message": "Donation deleted successfully"})
}
