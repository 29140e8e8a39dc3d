package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/api/responses"
	"github.com/hostelgrievance/grievance-backend/api/validators"
	"github.com/hostelgrievance/grievance-backend/internal/complaints"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
	"github.com/hostelgrievance/grievance-backend/pkg/pagination"
)

type complaintLister func(svc complaints.Service, ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error)

// CreateComplaint files a complaint for the caller and routes it to an incharge.
func CreateComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body complaints.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), viewer, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, view)
	}
}

// ListComplaints is the public feed.
func ListComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return listComplaints(svc, logg, complaints.Service.ListPublic)
}

// ListAssignedComplaints is the caller's work queue as incharge or resolver.
func ListAssignedComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return listComplaints(svc, logg, complaints.Service.ListAssigned)
}

func listComplaints(svc complaints.Service, logg *logger.Logger, list complaintLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, cursor, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := list(svc, r.Context(), viewer, complaints.ListParams{
			Limit:  limit,
			Cursor: cursor,
			Status: r.URL.Query().Get("status"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "complaintId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), viewer, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListUserComplaints returns every complaint filed by one user.
func ListUserComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.ListByUser(r.Context(), viewer, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func ToggleUpvote(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "complaintId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ToggleUpvote(r.Context(), viewer, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func DelegateComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, id, err := complaintTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body complaints.DelegateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Delegate(r.Context(), viewer, id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func EscalateComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, id, err := complaintTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Escalate(r.Context(), viewer, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ResolveComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("complaints"))
			return
		}
		viewer, id, err := complaintTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body complaints.ResolveInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Resolve(r.Context(), viewer, id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func complaintTarget(r *http.Request) (complaints.Viewer, uuid.UUID, error) {
	viewer, err := viewerFrom(r)
	if err != nil {
		return complaints.Viewer{}, uuid.Nil, err
	}
	id, err := validators.ParseUUIDParam(r, "complaintId")
	if err != nil {
		return complaints.Viewer{}, uuid.Nil, err
	}
	return viewer, id, nil
}
