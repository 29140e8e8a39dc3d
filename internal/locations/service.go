package locations

import (
	"context"
	"encoding/json"
	"errors"
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
	listCacheName = "locations"
	listCacheTTL  = 5 * time.Minute
)

// CreateLocationRequest is the admin payload for a new location.
type CreateLocationRequest struct {
	Category string `json:"category" validate:"required,min=1"`
	Name     string `json:"name" validate:"required,min=1"`
	Block    string `json:"block" validate:"required,min=1"`
}

// LocationDTO is the API shape of a location.
type LocationDTO struct {
	ID       uuid.UUID `json:"id"`
	Category string    `json:"category"`
	Name     string    `json:"name"`
	Block    string    `json:"block"`
	Triple   string    `json:"location"`
}

// Service manages the location registry.
type Service interface {
	Create(ctx context.Context, req CreateLocationRequest) (*LocationDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]LocationDTO, error)
	Resolve(ctx context.Context, triple string) (*models.Location, error)
}

// Cache is the subset of the redis client used to memoize the list.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

type service struct {
	repo  *Repository
	cache Cache
	logg  *logger.Logger
}

// NewService wires the location service. cache may be nil.
func NewService(repo *Repository, cache Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "locations repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

// FromModel maps a location row to its API shape.
func FromModel(l models.Location) LocationDTO {
	return LocationDTO{
		ID:       l.ID,
		Category: l.Category,
		Name:     l.Name,
		Block:    l.Block,
		Triple:   TripleOf(l).String(),
	}
}

// TripleOf returns the triple identifying l.
func TripleOf(l models.Location) Triple {
	return Triple{Category: l.Category, Name: l.Name, Block: l.Block}
}

func (s *service) Create(ctx context.Context, req CreateLocationRequest) (*LocationDTO, error) {
	t := Triple{
		Category: strings.TrimSpace(req.Category),
		Name:     strings.TrimSpace(req.Name),
		Block:    strings.TrimSpace(req.Block),
	}
	if t.Category == "" || t.Name == "" || t.Block == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
	}
	// The parts are later joined with the separator, so they cannot contain it.
	if strings.Contains(t.Category+t.Name+t.Block, tripleSeparator) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location parts cannot contain '-'")
	}

	location := &models.Location{Category: t.Category, Name: t.Name, Block: t.Block}
	if err := s.repo.Create(ctx, location); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "location already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create location")
	}
	s.invalidate(ctx)

	dto := FromModel(*location)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load location")
	}
	inUse, err := s.repo.InUse(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check location references")
	}
	if inUse {
		return pkgerrors.New(pkgerrors.CodeConflict, "location is still referenced")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "location is still referenced")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete location")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) List(ctx context.Context) ([]LocationDTO, error) {
	if cached, ok := s.cached(ctx); ok {
		return cached, nil
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}
	out := make([]LocationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	s.store(ctx, out)
	return out, nil
}

func (s *service) Resolve(ctx context.Context, triple string) (*models.Location, error) {
	t := ParseTriple(triple)
	if t.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}
	location, err := s.repo.FindByTriple(ctx, t)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve location")
	}
	return location, nil
}

// Cache failures only cost a database round trip, so they are logged and
// otherwise ignored.
func (s *service) cached(ctx context.Context) ([]LocationDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(listCacheName))
	if err != nil || raw == "" {
		return nil, false
	}
	var out []LocationDTO
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logg.Warn(ctx, "locations.cache_decode_failed")
		return nil, false
	}
	return out, true
}

func (s *service) store(ctx context.Context, list []LocationDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(listCacheName), string(payload), listCacheTTL); err != nil {
		s.logg.Warn(ctx, "locations.cache_store_failed")
	}
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CacheKey(listCacheName)); err != nil {
		s.logg.Warn(ctx, "locations.cache_invalidate_failed")
	}
}
