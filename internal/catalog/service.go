package catalog

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/pkg/db"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
)

const (
	listCacheTTL = 5 * time.Minute
	maxNameLen   = 64
)

// ItemDTO is one catalog entry as returned by the API.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateRequest accepts one or many names in a single call.
type CreateRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,required"`
}

// Service manages tags, designations and occupations.
type Service interface {
	Create(ctx context.Context, kind Kind, names []string) ([]ItemDTO, error)
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	List(ctx context.Context, kind Kind) ([]ItemDTO, error)
}

// Cache is the subset of the redis client used to memoize lists.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  *Repository
	tx    txRunner
	cache Cache
	logg  *logger.Logger
}

// NewService wires the catalog service. cache may be nil.
func NewService(repo *Repository, tx txRunner, cache Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, cache: cache, logg: logg}, nil
}

// NormalizeNames trims, drops empties and deduplicates, keeping first-seen order.
func NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (s *service) Create(ctx context.Context, kind Kind, names []string) ([]ItemDTO, error) {
	normalized := NormalizeNames(names)
	if len(normalized) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
	}
	for _, name := range normalized {
		if len(name) > maxNameLen {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s name too long", kind.singular())
		}
	}

	var created []entry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByNames(ctx, kind, normalized)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing names")
		}
		if len(existing) > 0 {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "%s already exists: %s", kind.singular(), existing[0].Name).
				WithDetails(map[string]any{"existing": namesOf(existing)})
		}
		created, err = repo.Create(ctx, kind, normalized, time.Now().UTC())
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, kind.singular()+" already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create "+kind.singular())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, kind)

	out := toDTOs(created)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *service) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := s.repo.WithTx(tx).Delete(ctx, kind, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete "+kind.singular())
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, kind.singular()+" not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, kind)
	return nil
}

func (s *service) List(ctx context.Context, kind Kind) ([]ItemDTO, error) {
	if cached, ok := s.cached(ctx, kind); ok {
		return cached, nil
	}
	rows, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list "+string(kind))
	}
	out := toDTOs(rows)
	s.store(ctx, kind, out)
	return out, nil
}

// ResolveTags maps names onto existing tags. Any unknown name fails the
// whole lookup with NOT_FOUND.
func ResolveTags(ctx context.Context, repo *Repository, names []string) ([]models.Tag, error) {
	normalized := NormalizeNames(names)
	if len(normalized) == 0 {
		return nil, nil
	}
	tags, err := repo.FindTags(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve tags")
	}
	if len(tags) != len(normalized) {
		known := make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			known[tag.Name] = struct{}{}
		}
		for _, name := range normalized {
			if _, ok := known[name]; !ok {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found").
					WithDetails(map[string]any{"tag": name})
			}
		}
	}
	return tags, nil
}

func toDTOs(rows []entry) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ItemDTO{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt})
	}
	return out
}

func namesOf(rows []entry) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return out
}

func (s *service) cacheKey(kind Kind) string {
	return s.cache.CacheKey("catalog:" + string(kind))
}

func (s *service) cached(ctx context.Context, kind Kind) ([]ItemDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cacheKey(kind))
	if err != nil || raw == "" {
		return nil, false
	}
	var out []ItemDTO
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logg.Warn(ctx, "catalog.cache_decode_failed")
		return nil, false
	}
	return out, true
}

func (s *service) store(ctx context.Context, kind Kind, items []ItemDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(kind), string(payload), listCacheTTL); err != nil {
		s.logg.Warn(ctx, "catalog.cache_store_failed")
	}
}

func (s *service) invalidate(ctx context.Context, kind Kind) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(kind)); err != nil {
		s.logg.Warn(ctx, "catalog.cache_invalidate_failed")
	}
}
