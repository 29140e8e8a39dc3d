package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/repo"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
)

// Repository persists locations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to db.
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

func (r *Repository) Create(ctx context.Context, location *models.Location) error {
	return r.DB(ctx).Create(location).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.DB(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// FindByTriple matches all three columns exactly.
func (r *Repository) FindByTriple(ctx context.Context, t Triple) (*models.Location, error) {
	var location models.Location
	if err := r.DB(ctx).
		Where("category = ? AND name = ? AND block = ?", t.Category, t.Name, t.Block).
		First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := r.DB(ctx).Order("category ASC").Order("name ASC").Order("block ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// InUse reports whether staff profiles or complaints still point at the location.
func (r *Repository) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, model := range []any{&models.IssueIncharge{}, &models.Resolver{}, &models.Complaint{}} {
		var count int64
		if err := r.DB(ctx).Model(model).Where("location_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Location{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
