package complaints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/pkg/db"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
)

// ToggleUpvote flips the viewer's vote. The ledger row and the counter move
// in one transaction; the counter is adjusted in SQL so concurrent toggles
// on the same complaint never lose an update.
func (s *service) ToggleUpvote(ctx context.Context, viewer Viewer, id uuid.UUID) (*UpvoteResult, error) {
	var result UpvoteResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, viewer, id); err != nil {
			return err
		}

		removed, err := repo.RemoveUpvote(ctx, viewer.ID, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove upvote")
		}
		delta := -1
		if !removed {
			if err := repo.AddUpvote(ctx, viewer.ID, id); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "upvote already recorded")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add upvote")
			}
			delta = 1
		}

		total, err := repo.AdjustUpvotes(ctx, id, delta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update upvote count")
		}
		result = UpvoteResult{TotalUpvotes: total, IsNowUpvoted: !removed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncUpvoteToggle(result.IsNowUpvoted)
	return &result, nil
}
