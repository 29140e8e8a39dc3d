package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelgrievance/grievance-backend/pkg/logger"
)

const defaultNotificationRetention = 30 * 24 * time.Hour

type readNotificationPurger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRetentionJobParams struct {
	Logger    *logger.Logger
	Repo      readNotificationPurger
	Retention time.Duration
}

// notificationRetentionJob drops notifications that were read and are older
// than the retention window.
type notificationRetentionJob struct {
	logg      *logger.Logger
	repo      readNotificationPurger
	retention time.Duration
	now       func() time.Time
}

func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultNotificationRetention
	}
	return &notificationRetentionJob{
		logg:      logg,
		repo:      params.Repo,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (j *notificationRetentionJob) Name() string { return "notification-retention" }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete read notifications: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "maintenance.notifications_purged")
	return nil
}
