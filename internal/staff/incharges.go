package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
)

func (s *service) CreateIncharge(ctx context.Context, req CreateInchargeRequest) (*InchargeDTO, error) {
	if req.Rank < 1 || len(strings.TrimSpace(req.Designation)) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
	}

	var created *models.IssueIncharge
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, location, err := s.createAccount(ctx, tx, accountInput{
			Name:        req.Name,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Password:    req.Password,
			Location:    req.Location,
		}, enums.RoleIssueIncharge)
		if err != nil {
			return err
		}

		profile := &models.IssueIncharge{
			UserID:      user.ID,
			LocationID:  location.ID,
			Rank:        req.Rank,
			Designation: strings.TrimSpace(req.Designation),
		}
		if err := s.staff.WithTx(tx).CreateIncharge(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create incharge profile")
		}
		profile.User = *user
		profile.Location = *location
		created = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := inchargeFromModel(*created)
	return &dto, nil
}

func (s *service) GetIncharge(ctx context.Context, id uuid.UUID) (*InchargeDTO, error) {
	profile, err := s.staff.FindIncharge(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "incharge")
	}
	dto := inchargeFromModel(*profile)
	return &dto, nil
}

func (s *service) ListIncharges(ctx context.Context) ([]InchargeDTO, error) {
	rows, err := s.staff.ListIncharges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list incharges")
	}
	out := make([]InchargeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, inchargeFromModel(row))
	}
	return out, nil
}

func (s *service) UpdateIncharge(ctx context.Context, id uuid.UUID, req UpdateInchargeRequest) (*InchargeDTO, error) {
	var updated *models.IssueIncharge
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		staffRepo := s.staff.WithTx(tx)
		current, err := staffRepo.FindIncharge(ctx, id)
		if err != nil {
			return notFoundOr(err, "incharge")
		}
		if err := s.updateAccount(ctx, tx, id, req.Name, req.Email, req.PhoneNumber, req.Password); err != nil {
			return err
		}

		profile := map[string]any{}
		if req.Location != nil {
			location, err := s.resolveLocation(ctx, tx, *req.Location)
			if err != nil {
				return err
			}
			// Escalation walks the ladder at the complaint's location, so an
			// incharge cannot leave while complaints are still routed to them.
			if location.ID != current.LocationID {
				assigned, err := staffRepo.HasAssignedComplaints(ctx, id)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check assigned complaints")
				}
				if assigned {
					return pkgerrors.New(pkgerrors.CodeConflict, "incharge still has assigned complaints")
				}
			}
			profile["location_id"] = location.ID
		}
		if req.Rank != nil {
			if *req.Rank < 1 {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
			}
			profile["rank"] = *req.Rank
		}
		if req.Designation != nil {
			designation := strings.TrimSpace(*req.Designation)
			if len(designation) < 3 {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
			}
			profile["designation"] = designation
		}
		if err := staffRepo.UpdateIncharge(ctx, id, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update incharge profile")
		}

		reloaded, err := staffRepo.FindIncharge(ctx, id)
		if err != nil {
			return notFoundOr(err, "incharge")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := inchargeFromModel(*updated)
	return &dto, nil
}

// DeleteIncharge removes the account and its profile. Incharges that still
// own complaints cannot be removed until those are escalated or reassigned.
func (s *service) DeleteIncharge(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		staffRepo := s.staff.WithTx(tx)
		if _, err := staffRepo.FindIncharge(ctx, id); err != nil {
			return notFoundOr(err, "incharge")
		}
		assigned, err := staffRepo.HasAssignedComplaints(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check assigned complaints")
		}
		if assigned {
			return pkgerrors.New(pkgerrors.CodeConflict, "incharge still has assigned complaints")
		}
		if err := staffRepo.DeleteIncharge(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete incharge profile")
		}
		if _, err := s.users.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete incharge user")
		}
		return nil
	})
}
