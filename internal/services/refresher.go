package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LeaderboardRefresher is the slice of the upstream client the refresh
// job needs.
type LeaderboardRefresher interface {
	TrackedSlugs() []string
	RefreshLeaderboard(ctx context.Context, seasonSlug string) error
}

// RefreshService re-warms cached leaderboards on a schedule so a
// request landing just after the freshness window rarely pays the
// upstream round trip.
type RefreshService struct {
	refresher LeaderboardRefresher
	cron      *cron.Cron
	logger    *logrus.Logger
}

func NewRefreshService(refresher LeaderboardRefresher, logger *logrus.Logger) *RefreshService {
	return &RefreshService{
		refresher: refresher,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the refresh job with the given cron spec and starts
// the scheduler.
func (s *RefreshService) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.refreshAll)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *RefreshService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *RefreshService) refreshAll() {
	slugs := s.refresher.TrackedSlugs()
	if len(slugs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, slug := range slugs {
		if err := s.refresher.RefreshLeaderboard(ctx, slug); err != nil {
			s.logger.WithFields(logrus.Fields{
				"component": "refresh_service",
				"season":    slug,
			}).WithError(err).Warn("Background leaderboard refresh failed")
			continue
		}
	}

	s.logger.WithFields(logrus.Fields{
		"component": "refresh_service",
		"seasons":   len(slugs),
	}).Debug("Background leaderboard refresh complete")
}
