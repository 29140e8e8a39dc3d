package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/repo"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone retrieves the user registered with the phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("phone_number = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users newest first, optionally restricted to one role.
func (r *Repository) List(ctx context.Context, role *enums.Role) ([]models.User, error) {
	query := r.DB(ctx).Model(&models.User{})
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	var out []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// EmailTaken reports whether another user already owns the address.
func (r *Repository) EmailTaken(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	query := r.DB(ctx).Model(&models.User{}).Where("email = ?", NormalizeEmail(email))
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PhoneTaken reports whether another user already owns the phone number.
func (r *Repository) PhoneTaken(ctx context.Context, phone string, exclude *uuid.UUID) (bool, error) {
	query := r.DB(ctx).Model(&models.User{}).Where("phone_number = ?", phone)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies the non-nil fields of dto. It returns gorm.ErrRecordNotFound
// when no user has the id.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) error {
	updates := dto.columns()
	if len(updates) == 0 {
		return nil
	}
	res := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored hash, used when argon2 parameters change.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// Delete removes the user row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasAssignedComplaints reports whether any complaint is still routed to the user.
func (r *Repository) HasAssignedComplaints(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.ComplaintDetail{}).Where("assigned_to = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteStaffProfiles removes incharge and resolver rows owned by the user.
func (r *Repository) DeleteStaffProfiles(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).Where("user_id = ?", id).Delete(&models.IssueIncharge{}).Error; err != nil {
		return err
	}
	return r.DB(ctx).Where("user_id = ?", id).Delete(&models.Resolver{}).Error
}

// ReleaseDelegations detaches a resolver from its complaints. Complaints that
// were waiting on the resolver go back to PENDING so the incharge can
// delegate again.
func (r *Repository) ReleaseDelegations(ctx context.Context, resolverID uuid.UUID) error {
	delegated := r.DB(ctx).Model(&models.ComplaintDetail{}).Select("complaint_id").Where("resolver_id = ?", resolverID)
	if err := r.DB(ctx).Model(&models.Complaint{}).
		Where("id IN (?) AND status = ?", delegated, enums.ComplaintStatusAssigned).
		Update("status", enums.ComplaintStatusPending).Error; err != nil {
		return err
	}
	return r.DB(ctx).Model(&models.ComplaintDetail{}).
		Where("resolver_id = ?", resolverID).
		Update("resolver_id", nil).Error
}
