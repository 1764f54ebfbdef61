// Package scheduler periodically refreshes the weather history of every stored location.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/models"
)

const perLocationTimeout = 30 * time.Second

// LocationLister lists the locations to refresh.
type LocationLister interface {
	FindAll(ctx context.Context) (*models.LocationsResponse, error)
}

// Ingester fetches and stores a range of weather history for one location.
type Ingester interface {
	FetchAndStoreHistoricalWeatherData(ctx context.Context, locationID, fromDate, toDate string) (*models.WeatherResponse, error)
}

// Scheduler runs the refresh job on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	locations LocationLister
	ingester  Ingester
	interval  time.Duration
}

// New creates a Scheduler. A zero interval makes Start a no-op.
func New(locations LocationLister, ingester Ingester, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		locations: locations,
		ingester:  ingester,
		interval:  interval,
	}
}

// Start schedules the job and starts the scheduler in the background. The
// first run happens one interval after start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Info("Refresh scheduler disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.WithField("interval", s.interval.String()).Info("Refresh scheduler started")
	return nil
}

// RunOnce refreshes every location sequentially over the default window and
// reports how many refreshes failed. One failing location does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	started := time.Now()
	listCtx, cancel := context.WithTimeout(ctx, perLocationTimeout)
	resp, err := s.locations.FindAll(listCtx)
	cancel()
	if err != nil {
		log.WithError(err).Error("Refresh job could not list locations")
		return 1
	}

	failed := 0
	for _, loc := range resp.Locations {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Refresh job interrupted")
			return failed
		}

		locCtx, cancel := context.WithTimeout(ctx, perLocationTimeout)
		_, err := s.ingester.FetchAndStoreHistoricalWeatherData(locCtx, loc.ID, "", "")
		cancel()
		if err != nil {
			failed++
			log.WithError(err).WithFields(log.Fields{
				"location_id": loc.ID,
				"name":        loc.Name,
			}).Warn("Refresh failed for location")
		}
	}

	log.WithFields(log.Fields{
		"locations":   len(resp.Locations),
		"failed":      failed,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Refresh job completed")
	return failed
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
