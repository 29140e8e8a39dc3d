package cron

import (
	"context"
	"fmt"

	"github.com/hostelgrievance/grievance-backend/pkg/logger"
)

type upvoteReconciler interface {
	ReconcileUpvotes(ctx context.Context) (int64, error)
}

type upvoteReconcileJob struct {
	logg *logger.Logger
	repo upvoteReconciler
}

// NewUpvoteReconcileJob rebuilds complaint upvote counters from the vote rows.
// The toggle keeps them in step; this repairs rows touched by manual edits.
func NewUpvoteReconcileJob(logg *logger.Logger, repo upvoteReconciler) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("complaints repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &upvoteReconcileJob{logg: logg, repo: repo}, nil
}

func (j *upvoteReconcileJob) Name() string { return "upvote-reconcile" }

func (j *upvoteReconcileJob) Run(ctx context.Context) error {
	fixed, err := j.repo.ReconcileUpvotes(ctx)
	if err != nil {
		return fmt.Errorf("reconcile upvotes: %w", err)
	}
	if fixed > 0 {
		j.logg.Warn(j.logg.WithField(ctx, "rows_fixed", fixed), "maintenance.upvotes_drifted")
	}
	return nil
}
