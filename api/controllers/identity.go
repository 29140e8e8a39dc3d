package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/api/middleware"
	"github.com/hostelgrievance/grievance-backend/api/validators"
	"github.com/hostelgrievance/grievance-backend/internal/complaints"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/pagination"
)

// actorID pulls the authenticated user id seeded by middleware.Auth.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func viewerFrom(r *http.Request) (complaints.Viewer, error) {
	id, err := actorID(r)
	if err != nil {
		return complaints.Viewer{}, err
	}
	return complaints.Viewer{ID: id, Role: middleware.RoleFromContext(r.Context())}, nil
}

func pageParams(r *http.Request) (int, string, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return 0, "", err
	}
	return limit, r.URL.Query().Get("cursor"), nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
