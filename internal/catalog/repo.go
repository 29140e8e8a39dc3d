package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/repo"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
)

// entry is the common row shape of tags, designations and occupations.
type entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	CreatedAt time.Time `gorm:"column:created_at"`
}

// Repository persists every catalog list.
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

func (r *Repository) Create(ctx context.Context, kind Kind, names []string, now time.Time) ([]entry, error) {
	rows := make([]entry, 0, len(names))
	for _, name := range names {
		rows = append(rows, entry{ID: uuid.New(), Name: name, CreatedAt: now})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := r.DB(ctx).Table(kind.table()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) List(ctx context.Context, kind Kind) ([]entry, error) {
	var rows []entry
	if err := r.DB(ctx).Table(kind.table()).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByNames returns the rows whose name is in names.
func (r *Repository) FindByNames(ctx context.Context, kind Kind, names []string) ([]entry, error) {
	var rows []entry
	if len(names) == 0 {
		return rows, nil
	}
	if err := r.DB(ctx).Table(kind.table()).Where("name IN ?", names).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes one row and reports whether it existed. Tag links are
// removed with the tag.
func (r *Repository) Delete(ctx context.Context, kind Kind, id uuid.UUID) (bool, error) {
	if kind == KindTags {
		if err := r.DB(ctx).Where("tag_id = ?", id).Delete(&models.ComplaintTag{}).Error; err != nil {
			return false, err
		}
	}
	res := r.DB(ctx).Table(kind.table()).Where("id = ?", id).Delete(&entry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindTags loads tag models by name for linking to a complaint.
func (r *Repository) FindTags(ctx context.Context, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	if len(names) == 0 {
		return tags, nil
	}
	if err := r.DB(ctx).Where("name IN ?", names).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
