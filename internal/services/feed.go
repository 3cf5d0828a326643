package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/platform/redisbus"
	"github.com/yungbote/givebridge-backend/internal/realtime"
	"github.com/yungbote/givebridge-backend/internal/types"
)

// DonationFeed pushes campaign-page events to live listeners. Every method is
// nil-safe and fire-and-forget; feed delivery never affects the write path.
type DonationFeed interface {
	DonationCreated(campaignID uuid.UUID, view *types.DonationView)
	CampaignStatusChanged(campaignID uuid.UUID, status string)
}

type donationFeed struct {
	log *logger.Logger
	hub *realtime.Hub
	bus redisbus.Bus
}

func NewDonationFeed(log *logger.Logger, hub *realtime.Hub, bus redisbus.Bus) DonationFeed {
	return &donationFeed{
		log: log.With("service", "DonationFeed"),
		hub: hub,
		bus: bus,
	}
}

func (f *donationFeed) DonationCreated(campaignID uuid.UUID, view *types.DonationView) {
	if f == nil || campaignID == uuid.Nil || view == nil {
		return
	}
	f.emit(realtime.Message{
		Channel: realtime.CampaignChannel(campaignID),
		Event:   realtime.EventDonationCreated,
		Data:    map[string]any{"donation": view},
	})
}

func (f *donationFeed) CampaignStatusChanged(campaignID uuid.UUID, status string) {
	if f == nil || campaignID == uuid.Nil {
		return
	}
	f.emit(realtime.Message{
		Channel: realtime.CampaignChannel(campaignID),
		Event:   realtime.EventCampaignStatusChanged,
		Data:    map[string]any{"status": status},
	})
}

func (f *donationFeed) emit(msg realtime.Message) {
	// With a bus wired, the forwarder echoes published messages back into
	// the local hub; broadcasting here as well would double-deliver to
	// in-process clients. The hub is only written directly when there is
	// no bus, or as a local fallback when the publish fails.
	if f.bus != nil {
		if err := f.bus.Publish(context.Background(), msg); err != nil {
			f.log.Warn("Failed to publish feed message to redis", "error", err)
			if f.hub != nil {
				f.hub.Broadcast(msg)
			}
		}
		return
	}
	if f.hub != nil {
		f.hub.Broadcast(msg)
	}
}
