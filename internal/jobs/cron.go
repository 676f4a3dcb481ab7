package jobs

import (
	"context"
	"time"

	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	"github.com/divyarao54/Issue-Tracking-System/internal/repo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Cron runs the daily assignment digest: a log line with how many issues got
// today's date and how many assignees are still free. An advisory lock keeps
// multiple replicas from reporting in parallel.
type Cron struct {
	cfg  config.Config
	log  zerolog.Logger
	repo *repo.Repository
	c    *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, r *repo.Repository) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, repo: r, c: c}
	_, _ = c.AddFunc(cfg.DigestCron, cr.daily)
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) daily() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	const lockKey int64 = 871001
	ok, err := cr.repo.TryAdvisoryLock(ctx, lockKey)
	if err != nil {
		cr.log.Error().Err(err).Msg("cron: lock error")
		return
	}
	if !ok {
		cr.log.Info().Msg("cron: already running elsewhere")
		return
	}
	defer func() { _ = cr.repo.AdvisoryUnlock(context.Background(), lockKey) }()

	y, m, d := time.Now().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	assigned, free, err := cr.repo.AssignmentSnapshot(ctx, day)
	if err != nil {
		cr.log.Error().Err(err).Msg("cron: assignment snapshot failed")
		return
	}
	cr.log.Info().
		Str("day", day.Format("2006-01-02")).
		Int("assigned_today", assigned).
		Int("free_assignees", free).
		Msg("cron: assignment digest")
}
