package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/givebridge-backend/internal/http/response"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/realtime"
)

type EventsHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewEventsHandler(log *logger.Logger, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{
		log: log.With("handler", "EventsHandler"),
		hub: hub,
	}
}

// GET /api/events/campaigns/:campaignId (public SSE stream)
func (eh *EventsHandler) CampaignFeed(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid campaign id")
		return
	}

	client := eh.hub.NewClient()
	eh.hub.Subscribe(client, realtime.CampaignChannel(campaignID))
	defer eh.hub.CloseClient(client)

	eh.hub.ServeHTTP(c.Writer, c.Request, client)
}
