package tasks

import (
	"time"

	"github.com/robfig/cron/v3"

	"boliche-os/internal/logger"
	"boliche-os/internal/services"
)

// InitScheduler wires the periodic floor upkeep:
//   - wait estimates recomputed every minute so the panel counts down
//     even when nothing changes on the floor;
//   - overdue reservations swept to delayed/no-show every minute;
//   - stale manual blocks released every five minutes.
func InitScheduler(svc *services.VenueService, log *logger.Logger) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("* * * * *", func() {
		if err := svc.RefreshWaitEstimates(); err != nil {
			log.Error("CRON", "Wait estimate refresh failed: "+err.Error())
		}
	}); err != nil {
		log.Error("CRON", "Failed to schedule wait estimate refresh: "+err.Error())
	}

	if _, err := c.AddFunc("* * * * *", func() {
		if err := svc.SweepOverdueReservations(time.Now()); err != nil {
			log.Error("CRON", "Reservation sweep failed: "+err.Error())
		}
	}); err != nil {
		log.Error("CRON", "Failed to schedule reservation sweep: "+err.Error())
	}

	if _, err := c.AddFunc("*/5 * * * *", func() {
		if err := svc.SweepStaleBlocks(time.Now()); err != nil {
			log.Error("CRON", "Stale block sweep failed: "+err.Error())
		}
	}); err != nil {
		log.Error("CRON", "Failed to schedule stale block sweep: "+err.Error())
	}

	c.Start()
	log.LogProcess("CRON", "Floor upkeep scheduler started")
	return c
}
