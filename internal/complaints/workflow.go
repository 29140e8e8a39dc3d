package complaints

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/notifications"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
)

const (
	actionDelegate = "delegate"
	actionEscalate = "escalate"
	actionResolve  = "resolve"
)

// transition locks the workflow row, checks the actor can see the complaint
// and runs apply inside one transaction. The refreshed view is returned.
func (s *service) transition(ctx context.Context, viewer Viewer, id uuid.UUID, action string,
	apply func(tx *gorm.DB, repo *Repository, complaint *models.Complaint, detail *models.ComplaintDetail) error,
) (*View, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		detail, err := repo.LockDetail(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, msgComplaintNotFound)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock complaint")
		}
		complaint, err := s.load(ctx, repo, viewer, id)
		if err != nil {
			return err
		}
		complaint.Detail = detail
		return apply(tx, repo, complaint, detail)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(action)
	s.logg.Info(s.logg.WithComplaintID(ctx, id.String()), "complaint."+action)
	return s.view(ctx, s.repo, viewer, id)
}

func requireIncharge(viewer Viewer, detail *models.ComplaintDetail) error {
	if viewer.Role != enums.RoleIssueIncharge || detail.AssignedTo != viewer.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned incharge can do this")
	}
	return nil
}

func stateConflict(status enums.ComplaintStatus, action string) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot %s a %s complaint", action, status).
		WithDetails(map[string]any{"status": status})
}

// Delegate hands a PENDING or ESCALATED complaint to a resolver working at
// the complaint's location.
func (s *service) Delegate(ctx context.Context, viewer Viewer, id uuid.UUID, in DelegateInput) (*View, error) {
	return s.transition(ctx, viewer, id, actionDelegate, func(tx *gorm.DB, repo *Repository, c *models.Complaint, d *models.ComplaintDetail) error {
		if err := requireIncharge(viewer, d); err != nil {
			return err
		}
		if c.Status != enums.ComplaintStatusPending && c.Status != enums.ComplaintStatusEscalated {
			return stateConflict(c.Status, actionDelegate)
		}

		resolver, err := s.staff.WithTx(tx).FindResolver(ctx, in.ResolverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "resolver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load resolver")
		}
		if resolver.LocationID != c.LocationID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "resolver not found at complaint location")
		}

		if err := repo.UpdateDetail(ctx, c.ID, map[string]any{"resolver_id": resolver.UserID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delegate complaint")
		}
		if err := repo.UpdateStatus(ctx, c.ID, enums.ComplaintStatusAssigned); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
		}
		note := notifications.ForComplaint(enums.NotificationTypeComplaintDelegated, resolver.UserID, c.ID, c.Title)
		if err := s.notifications.WithTx(tx).Create(ctx, note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "notify resolver")
		}
		return nil
	})
}

// Escalate moves an open complaint to the next senior incharge at the same
// location and drops any resolver delegation.
func (s *service) Escalate(ctx context.Context, viewer Viewer, id uuid.UUID) (*View, error) {
	return s.transition(ctx, viewer, id, actionEscalate, func(tx *gorm.DB, repo *Repository, c *models.Complaint, d *models.ComplaintDetail) error {
		if err := requireIncharge(viewer, d); err != nil {
			return err
		}
		if !c.Status.IsOpen() {
			return stateConflict(c.Status, actionEscalate)
		}

		current, err := s.staff.WithTx(tx).FindIncharge(ctx, viewer.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "incharge profile missing")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load incharge")
		}
		next, err := s.router.NextSenior(ctx, tx, c.LocationID, current.Rank)
		if err != nil {
			return err
		}

		if err := repo.UpdateDetail(ctx, c.ID, map[string]any{
			"assigned_to": next.InchargeID,
			"resolver_id": nil,
			"escalations": gorm.Expr("escalations + 1"),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "escalate complaint")
		}
		if err := repo.UpdateStatus(ctx, c.ID, enums.ComplaintStatusEscalated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
		}
		note := notifications.ForComplaint(enums.NotificationTypeComplaintEscalated, next.InchargeID, c.ID, c.Title)
		if err := s.notifications.WithTx(tx).Create(ctx, note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "notify incharge")
		}
		return nil
	})
}

// Resolve closes an open complaint. The current incharge or the delegated
// resolver may close it.
func (s *service) Resolve(ctx context.Context, viewer Viewer, id uuid.UUID, in ResolveInput) (*View, error) {
	outcome, err := enums.ParseComplaintStatus(in.Outcome)
	if err != nil || !outcome.IsOutcome() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outcome must be RESOLVED or NOT_RESOLVED")
	}

	return s.transition(ctx, viewer, id, actionResolve, func(tx *gorm.DB, repo *Repository, c *models.Complaint, d *models.ComplaintDetail) error {
		isIncharge := viewer.Role == enums.RoleIssueIncharge && d.AssignedTo == viewer.ID
		isResolver := viewer.Role == enums.RoleResolver && d.ResolverID != nil && *d.ResolverID == viewer.ID
		if !isIncharge && !isResolver {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned incharge or resolver can do this")
		}
		if !c.Status.IsOpen() {
			return stateConflict(c.Status, actionResolve)
		}

		now := time.Now().UTC()
		if err := repo.UpdateDetail(ctx, c.ID, map[string]any{
			"action_taken": true,
			"resolved_at":  now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve complaint")
		}
		if err := repo.UpdateStatus(ctx, c.ID, outcome); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
		}
		note := notifications.ForComplaint(enums.NotificationTypeComplaintResolved, c.UserID, c.ID, c.Title)
		if err := s.notifications.WithTx(tx).Create(ctx, note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "notify complainant")
		}
		return nil
	})
}
