package http

import (
	"net/http"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

type ApplicationHandler struct {
	appSvc service.ApplicationService
}

func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

type applyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Message string `json:"message" validate:"max=2000"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app := &domain.AgentApplication{Name: req.Name, Email: req.Email, Phone: req.Phone, Message: req.Message}
	if err := h.appSvc.Apply(r.Context(), app); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.ApplicationStatusPending, domain.ApplicationStatusApproved, domain.ApplicationStatusRejected:
	default:
		writeError(w, r, domain.NewError(domain.KindInvalidInput, "invalid status: "+string(status)))
		return
	}

	apps, err := h.appSvc.ListApplications(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.AgentApplication{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	app, err := h.appSvc.Approve(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	app, err := h.appSvc.Reject(r.Context(), claims.UserID, id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
