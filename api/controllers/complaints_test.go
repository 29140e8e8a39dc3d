package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelgrievance/grievance-backend/api/middleware"
	"github.com/hostelgrievance/grievance-backend/internal/complaints"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/pagination"
)

type fakeComplaintService struct {
	complaints.Service

	createFn   func(ctx context.Context, viewer complaints.Viewer, in complaints.CreateInput) (*complaints.View, error)
	publicFn   func(ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error)
	assignedFn func(ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error)
	upvoteFn   func(ctx context.Context, viewer complaints.Viewer, id uuid.UUID) (*complaints.UpvoteResult, error)
	delegateFn func(ctx context.Context, viewer complaints.Viewer, id uuid.UUID, in complaints.DelegateInput) (*complaints.View, error)
	resolveFn  func(ctx context.Context, viewer complaints.Viewer, id uuid.UUID, in complaints.ResolveInput) (*complaints.View, error)
}

func (f *fakeComplaintService) Create(ctx context.Context, viewer complaints.Viewer, in complaints.CreateInput) (*complaints.View, error) {
	return f.createFn(ctx, viewer, in)
}

func (f *fakeComplaintService) ListPublic(ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error) {
	return f.publicFn(ctx, viewer, params)
}

func (f *fakeComplaintService) ListAssigned(ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error) {
	return f.assignedFn(ctx, viewer, params)
}

func (f *fakeComplaintService) ToggleUpvote(ctx context.Context, viewer complaints.Viewer, id uuid.UUID) (*complaints.UpvoteResult, error) {
	return f.upvoteFn(ctx, viewer, id)
}

func (f *fakeComplaintService) Delegate(ctx context.Context, viewer complaints.Viewer, id uuid.UUID, in complaints.DelegateInput) (*complaints.View, error) {
	return f.delegateFn(ctx, viewer, id, in)
}

func (f *fakeComplaintService) Resolve(ctx context.Context, viewer complaints.Viewer, id uuid.UUID, in complaints.ResolveInput) (*complaints.View, error) {
	return f.resolveFn(ctx, viewer, id, in)
}

func asUser(req *http.Request, id uuid.UUID, role enums.Role) *http.Request {
	ctx := middleware.WithUserID(req.Context(), id.String())
	return req.WithContext(middleware.WithRole(ctx, role))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateComplaint(t *testing.T) {
	student := uuid.New()
	svc := &fakeComplaintService{
		createFn: func(ctx context.Context, viewer complaints.Viewer, in complaints.CreateInput) (*complaints.View, error) {
			assert.Equal(t, student, viewer.ID)
			assert.Equal(t, enums.RoleStudent, viewer.Role)
			assert.Equal(t, "hostel-a-1", in.Location)
			return &complaints.View{ID: uuid.New(), Title: in.Title, Status: enums.ComplaintStatusPending}, nil
		},
	}
	body := `{"title":"Leaky tap","description":"Bathroom tap leaks","access":"PUBLIC","location":"hostel-a-1","tags":["plumbing"]}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/complaint/create", strings.NewReader(body)), student, enums.RoleStudent)
	rec := httptest.NewRecorder()
	CreateComplaint(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["ok"])
	assert.Equal(t, "Leaky tap", env["data"].(map[string]any)["title"])
}

func TestCreateComplaintValidation(t *testing.T) {
	svc := &fakeComplaintService{}
	cases := map[string]string{
		"unknown field":  `{"title":"Leaky tap","description":"tap","access":"PUBLIC","location":"hostel","extra":1}`,
		"bad access":     `{"title":"Leaky tap","description":"tap","access":"SECRET","location":"hostel"}`,
		"missing title":  `{"description":"tap leaks","access":"PUBLIC","location":"hostel"}`,
		"empty location": `{"title":"Leaky tap","description":"tap","access":"PUBLIC","location":"-a-1"}`,
		"malformed json": `{"title":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodPost, "/complaint/create", strings.NewReader(body)), uuid.New(), enums.RoleStudent)
			rec := httptest.NewRecorder()
			CreateComplaint(svc, testLogger())(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(pkgerrors.CodeValidation), decodeEnvelope(t, rec)["code"])
		})
	}
}

func TestListComplaintsRoutesToTheRightQuery(t *testing.T) {
	var publicCalls, assignedCalls int
	svc := &fakeComplaintService{
		publicFn: func(ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error) {
			publicCalls++
			assert.Equal(t, "PENDING", params.Status)
			assert.Equal(t, pagination.DefaultLimit, params.Limit)
			return &pagination.Page[complaints.View]{Items: []complaints.View{}}, nil
		},
		assignedFn: func(ctx context.Context, viewer complaints.Viewer, params complaints.ListParams) (*pagination.Page[complaints.View], error) {
			assignedCalls++
			assert.Equal(t, 5, params.Limit)
			return &pagination.Page[complaints.View]{Items: []complaints.View{}}, nil
		},
	}

	rec := httptest.NewRecorder()
	ListComplaints(svc, testLogger())(rec, asUser(httptest.NewRequest(http.MethodGet, "/complaint?status=PENDING", nil), uuid.New(), enums.RoleStudent))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ListAssignedComplaints(svc, testLogger())(rec, asUser(httptest.NewRequest(http.MethodGet, "/complaint/assigned?limit=5", nil), uuid.New(), enums.RoleIssueIncharge))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, publicCalls)
	assert.Equal(t, 1, assignedCalls)
}

func TestToggleUpvoteRequiresComplaintID(t *testing.T) {
	svc := &fakeComplaintService{
		upvoteFn: func(ctx context.Context, viewer complaints.Viewer, id uuid.UUID) (*complaints.UpvoteResult, error) {
			return &complaints.UpvoteResult{TotalUpvotes: 1, IsNowUpvoted: true}, nil
		},
	}
	req := asUser(httptest.NewRequest(http.MethodPost, "/complaint/x/upvote", nil), uuid.New(), enums.RoleStudent)
	rec := httptest.NewRecorder()
	ToggleUpvote(svc, testLogger())(rec, addRouteParam(req, "complaintId", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := uuid.NewString()
	req = asUser(httptest.NewRequest(http.MethodPost, "/complaint/"+id+"/upvote", nil), uuid.New(), enums.RoleStudent)
	rec = httptest.NewRecorder()
	ToggleUpvote(svc, testLogger())(rec, addRouteParam(req, "complaintId", id))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["isNowUpvoted"])
	assert.EqualValues(t, 1, data["totalUpvotes"])
}

func TestWorkflowErrorsKeepTheirCodes(t *testing.T) {
	resolverID := uuid.New()
	svc := &fakeComplaintService{
		delegateFn: func(ctx context.Context, viewer complaints.Viewer, id uuid.UUID, in complaints.DelegateInput) (*complaints.View, error) {
			assert.Equal(t, resolverID, in.ResolverID)
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "complaint is not pending")
		},
		resolveFn: func(ctx context.Context, viewer complaints.Viewer, id uuid.UUID, in complaints.ResolveInput) (*complaints.View, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not assigned to this complaint")
		},
	}
	id := uuid.NewString()

	req := asUser(httptest.NewRequest(http.MethodPost, "/complaint/"+id+"/delegate", strings.NewReader(`{"resolverId":"`+resolverID.String()+`"}`)), uuid.New(), enums.RoleIssueIncharge)
	rec := httptest.NewRecorder()
	DelegateComplaint(svc, testLogger())(rec, addRouteParam(req, "complaintId", id))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["ok"])
	assert.Equal(t, "complaint is not pending", env["error"])

	req = asUser(httptest.NewRequest(http.MethodPost, "/complaint/"+id+"/resolve", strings.NewReader(`{"outcome":"RESOLVED"}`)), uuid.New(), enums.RoleResolver)
	rec = httptest.NewRecorder()
	ResolveComplaint(svc, testLogger())(rec, addRouteParam(req, "complaintId", id))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = asUser(httptest.NewRequest(http.MethodPost, "/complaint/"+id+"/resolve", strings.NewReader(`{"outcome":"MAYBE"}`)), uuid.New(), enums.RoleResolver)
	rec = httptest.NewRecorder()
	ResolveComplaint(svc, testLogger())(rec, addRouteParam(req, "complaintId", id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplaintHandlersWithoutService(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/complaint", nil), uuid.New(), enums.RoleStudent)
	rec := httptest.NewRecorder()
	ListComplaints(nil, testLogger())(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
