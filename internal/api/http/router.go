package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"propdesk-backend/internal/domain"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Applications  *ApplicationHandler
	Rules         *RuleHandler
	Transactions  *TransactionHandler
	Commissions   *CommissionHandler
	Reports       *ReportHandler
	Notifications *NotificationHandler
	Audit         *AuditHandler
	Authenticator *Authenticator
	// Ping reports database health; nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(Recoverer, RequestLogger)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	v1.HandleFunc("/agent-applications", h.Applications.Apply).Methods(http.MethodPost)

	authed := v1.NewRoute().Subrouter()
	authed.Use(h.Authenticator.Middleware())

	authed.HandleFunc("/me/notifications", h.Notifications.List).Methods(http.MethodGet)
	authed.HandleFunc("/me/notifications/{id:[0-9]+}/read", h.Notifications.MarkAsRead).Methods(http.MethodPost)

	staff := authed.NewRoute().Subrouter()
	staff.Use(RequireRole(domain.UserRoleAgent, domain.UserRoleAdmin, domain.UserRoleManager))
	staff.HandleFunc("/transactions", h.Transactions.Record).Methods(http.MethodPost)
	staff.HandleFunc("/transactions", h.Transactions.List).Methods(http.MethodGet)
	staff.HandleFunc("/transactions/{id:[0-9]+}", h.Transactions.Get).Methods(http.MethodGet)
	staff.HandleFunc("/commissions", h.Commissions.List).Methods(http.MethodGet)
	staff.HandleFunc("/commissions/{id:[0-9]+}", h.Commissions.Get).Methods(http.MethodGet)

	agent := authed.NewRoute().Subrouter()
	agent.Use(RequireRole(domain.UserRoleAgent))
	agent.HandleFunc("/me/commission-summary", h.Reports.MySummary).Methods(http.MethodGet)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(RequireRole(domain.UserRoleAdmin))
	admin.HandleFunc("/agent-applications", h.Applications.List).Methods(http.MethodGet)
	admin.HandleFunc("/agent-applications/{id:[0-9]+}/approve", h.Applications.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/agent-applications/{id:[0-9]+}/reject", h.Applications.Reject).Methods(http.MethodPost)

	admin.HandleFunc("/action-types", h.Rules.ActionTypes).Methods(http.MethodGet)
	admin.HandleFunc("/rules", h.Rules.List).Methods(http.MethodGet)
	admin.HandleFunc("/rules", h.Rules.Create).Methods(http.MethodPost)
	admin.HandleFunc("/rules/{id:[0-9]+}", h.Rules.Get).Methods(http.MethodGet)
	admin.HandleFunc("/rules/{id:[0-9]+}", h.Rules.Update).Methods(http.MethodPut)
	admin.HandleFunc("/rules/{id:[0-9]+}", h.Rules.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/rules/{id:[0-9]+}/activate", h.Rules.Activate).Methods(http.MethodPost)
	admin.HandleFunc("/rules/{id:[0-9]+}/deactivate", h.Rules.Deactivate).Methods(http.MethodPost)

	admin.HandleFunc("/transactions/{id:[0-9]+}/commission", h.Transactions.RetryCommission).Methods(http.MethodPost)
	admin.HandleFunc("/commissions/pay-bulk", h.Commissions.PayBulk).Methods(http.MethodPost)
	admin.HandleFunc("/commissions/{id:[0-9]+}/pay", h.Commissions.Pay).Methods(http.MethodPost)
	admin.HandleFunc("/commissions/{id:[0-9]+}/cancel", h.Commissions.Cancel).Methods(http.MethodPost)

	admin.HandleFunc("/reports/agents", h.Reports.ByAgent).Methods(http.MethodGet)
	admin.HandleFunc("/reports/action-types", h.Reports.ByActionType).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{entity_type}/{id:[0-9]+}", h.Audit.History).Methods(http.MethodGet)

	return r
}

func (h Handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
