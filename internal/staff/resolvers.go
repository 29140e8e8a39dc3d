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

func (s *service) CreateResolver(ctx context.Context, req CreateResolverRequest) (*ResolverDTO, error) {
	if len(strings.TrimSpace(req.Occupation)) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
	}

	var created *models.Resolver
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, location, err := s.createAccount(ctx, tx, accountInput{
			Name:        req.Name,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Password:    req.Password,
			Location:    req.Location,
		}, enums.RoleResolver)
		if err != nil {
			return err
		}

		profile := &models.Resolver{
			UserID:     user.ID,
			LocationID: location.ID,
			Occupation: strings.TrimSpace(req.Occupation),
		}
		if err := s.staff.WithTx(tx).CreateResolver(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create resolver profile")
		}
		profile.User = *user
		profile.Location = *location
		created = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := resolverFromModel(*created)
	return &dto, nil
}

func (s *service) GetResolver(ctx context.Context, id uuid.UUID) (*ResolverDTO, error) {
	profile, err := s.staff.FindResolver(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "resolver")
	}
	dto := resolverFromModel(*profile)
	return &dto, nil
}

func (s *service) ListResolvers(ctx context.Context) ([]ResolverDTO, error) {
	rows, err := s.staff.ListResolvers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list resolvers")
	}
	out := make([]ResolverDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, resolverFromModel(row))
	}
	return out, nil
}

func (s *service) UpdateResolver(ctx context.Context, id uuid.UUID, req UpdateResolverRequest) (*ResolverDTO, error) {
	var updated *models.Resolver
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		staffRepo := s.staff.WithTx(tx)
		if _, err := staffRepo.FindResolver(ctx, id); err != nil {
			return notFoundOr(err, "resolver")
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
			profile["location_id"] = location.ID
		}
		if req.Occupation != nil {
			occupation := strings.TrimSpace(*req.Occupation)
			if len(occupation) < 3 {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
			}
			profile["occupation"] = occupation
		}
		if err := staffRepo.UpdateResolver(ctx, id, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update resolver profile")
		}

		reloaded, err := staffRepo.FindResolver(ctx, id)
		if err != nil {
			return notFoundOr(err, "resolver")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := resolverFromModel(*updated)
	return &dto, nil
}

func (s *service) DeleteResolver(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		staffRepo := s.staff.WithTx(tx)
		if _, err := staffRepo.FindResolver(ctx, id); err != nil {
			return notFoundOr(err, "resolver")
		}
		if err := s.users.WithTx(tx).ReleaseDelegations(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release delegated complaints")
		}
		if err := staffRepo.DeleteResolver(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete resolver profile")
		}
		if _, err := s.users.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete resolver user")
		}
		return nil
	})
}
