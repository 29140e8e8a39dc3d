package staff

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/db"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/security"
)

// Service is the admin-facing directory of incharges and resolvers.
type Service interface {
	CreateIncharge(ctx context.Context, req CreateInchargeRequest) (*InchargeDTO, error)
	GetIncharge(ctx context.Context, id uuid.UUID) (*InchargeDTO, error)
	ListIncharges(ctx context.Context) ([]InchargeDTO, error)
	UpdateIncharge(ctx context.Context, id uuid.UUID, req UpdateInchargeRequest) (*InchargeDTO, error)
	DeleteIncharge(ctx context.Context, id uuid.UUID) error

	CreateResolver(ctx context.Context, req CreateResolverRequest) (*ResolverDTO, error)
	GetResolver(ctx context.Context, id uuid.UUID) (*ResolverDTO, error)
	ListResolvers(ctx context.Context) ([]ResolverDTO, error)
	UpdateResolver(ctx context.Context, id uuid.UUID, req UpdateResolverRequest) (*ResolverDTO, error)
	DeleteResolver(ctx context.Context, id uuid.UUID) error
}

// ServiceParams bundles the dependencies of the staff directory.
type ServiceParams struct {
	DB             *db.Client
	Staff          *Repository
	Users          *users.Repository
	Locations      *locations.Repository
	PasswordConfig config.PasswordConfig
}

type service struct {
	db          *db.Client
	staff       *Repository
	users       *users.Repository
	locations   *locations.Repository
	passwordCfg config.PasswordConfig
}

// NewService validates params and builds the directory service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Staff == nil || params.Users == nil || params.Locations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "staff, users and locations repositories required")
	}
	return &service{
		db:          params.DB,
		staff:       params.Staff,
		users:       params.Users,
		locations:   params.Locations,
		passwordCfg: params.PasswordConfig,
	}, nil
}

type accountInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
	Location    string
}

// createAccount checks uniqueness, resolves the location and inserts the
// user row. It must run inside tx.
func (s *service) createAccount(ctx context.Context, tx *gorm.DB, in accountInput, role enums.Role) (*models.User, *models.Location, error) {
	userRepo := s.users.WithTx(tx)
	if err := ensureContactFree(ctx, userRepo, &in.Email, &in.PhoneNumber, nil); err != nil {
		return nil, nil, err
	}
	location, err := s.resolveLocation(ctx, tx, in.Location)
	if err != nil {
		return nil, nil, err
	}
	hash, err := security.HashPassword(in.Password, s.passwordCfg)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	phone := in.PhoneNumber
	user, err := userRepo.Create(ctx, users.CreateUserDTO{
		Name:         in.Name,
		Email:        in.Email,
		PhoneNumber:  &phone,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or phone already registered")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return user, location, nil
}

func (s *service) resolveLocation(ctx context.Context, tx *gorm.DB, triple string) (*models.Location, error) {
	t := locations.ParseTriple(triple)
	if t.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
	}
	location, err := s.locations.WithTx(tx).FindByTriple(ctx, t)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve location")
	}
	return location, nil
}

// ensureContactFree fails with CONFLICT when another account owns the email
// or phone. Nil arguments are skipped.
func ensureContactFree(ctx context.Context, repo *users.Repository, email, phone *string, exclude *uuid.UUID) error {
	if email != nil {
		taken, err := repo.EmailTaken(ctx, *email, exclude)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
	}
	if phone != nil && strings.TrimSpace(*phone) != "" {
		taken, err := repo.PhoneTaken(ctx, strings.TrimSpace(*phone), exclude)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
		}
	}
	return nil
}

// updateAccount applies the shared user fields of an update request.
func (s *service) updateAccount(ctx context.Context, tx *gorm.DB, id uuid.UUID, name, email, phone, password *string) error {
	userRepo := s.users.WithTx(tx)
	if err := ensureContactFree(ctx, userRepo, email, phone, &id); err != nil {
		return err
	}
	dto := users.UpdateUserDTO{Name: name, Email: email, PhoneNumber: phone}
	if password != nil {
		hash, err := security.HashPassword(*password, s.passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		dto.PasswordHash = &hash
	}
	if err := userRepo.Update(ctx, id, dto); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or phone already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+what)
}
