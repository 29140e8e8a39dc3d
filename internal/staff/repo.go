package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/repo"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
)

// Repository persists incharge and resolver profiles.
type Repository struct {
	repo.Base
}

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

func (r *Repository) withProfile(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Preload("User").Preload("Location")
}

func (r *Repository) CreateIncharge(ctx context.Context, profile *models.IssueIncharge) error {
	return r.DB(ctx).Omit("User", "Location").Create(profile).Error
}

func (r *Repository) FindIncharge(ctx context.Context, userID uuid.UUID) (*models.IssueIncharge, error) {
	var profile models.IssueIncharge
	if err := r.withProfile(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) ListIncharges(ctx context.Context) ([]models.IssueIncharge, error) {
	var out []models.IssueIncharge
	if err := r.withProfile(ctx).Order("location_id ASC").Order("\"rank\" DESC").Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// InchargesAt lists the incharges of a location, most junior (largest rank) first.
func (r *Repository) InchargesAt(ctx context.Context, locationID uuid.UUID) ([]models.IssueIncharge, error) {
	var out []models.IssueIncharge
	if err := r.DB(ctx).
		Where("location_id = ?", locationID).
		Order("\"rank\" DESC").
		Order("user_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) UpdateIncharge(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.IssueIncharge{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (r *Repository) DeleteIncharge(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).Where("user_id = ?", userID).Delete(&models.IssueIncharge{}).Error
}

// HasAssignedComplaints reports whether any complaint detail is routed to userID.
func (r *Repository) HasAssignedComplaints(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.ComplaintDetail{}).Where("assigned_to = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateResolver(ctx context.Context, profile *models.Resolver) error {
	return r.DB(ctx).Omit("User", "Location").Create(profile).Error
}

func (r *Repository) FindResolver(ctx context.Context, userID uuid.UUID) (*models.Resolver, error) {
	var profile models.Resolver
	if err := r.withProfile(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) ListResolvers(ctx context.Context) ([]models.Resolver, error) {
	var out []models.Resolver
	if err := r.withProfile(ctx).Order("location_id ASC").Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) UpdateResolver(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Resolver{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (r *Repository) DeleteResolver(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).Where("user_id = ?", userID).Delete(&models.Resolver{}).Error
}
