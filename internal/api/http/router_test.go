package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "propdesk-backend/internal/api/http"
	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/security"
)

type testServer struct {
	router   *mux.Router
	tokens   security.TokenManager
	recorder *MockRecorderService
	ledger   *MockLedgerService
	rules    *MockRuleService
	pingErr  error
}

func newTestServer() *testServer {
	s := &testServer{
		tokens:   security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour),
		recorder: new(MockRecorderService),
		ledger:   new(MockLedgerService),
		rules:    new(MockRuleService),
	}
	paging := httpapi.Paging{DefaultPageSize: 20, MaxPageSize: 100}
	s.router = httpapi.NewRouter(httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(nil),
		Applications:  httpapi.NewApplicationHandler(nil),
		Rules:         httpapi.NewRuleHandler(s.rules),
		Transactions:  httpapi.NewTransactionHandler(s.recorder, paging),
		Commissions:   httpapi.NewCommissionHandler(s.ledger, paging),
		Reports:       httpapi.NewReportHandler(nil),
		Notifications: httpapi.NewNotificationHandler(nil, paging),
		Audit:         httpapi.NewAuditHandler(nil),
		Authenticator: httpapi.NewAuthenticator(s.tokens),
		Ping:          func(ctx context.Context) error { return s.pingErr },
	})
	return s
}

func (s *testServer) token(t *testing.T, id int64, role domain.UserRole) string {
	t.Helper()
	tok, err := s.tokens.GenerateAccessToken(&domain.User{ID: id, Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type errorEnvelope struct {
	Error struct {
		Kind    string            `json:"kind"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	s.pingErr = errors.New("db down")
	rec = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodGet, "/api/v1/commissions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/commissions", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/rules", s.token(t, 7, domain.UserRoleAgent), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Error.Kind)

	rec = s.do(t, http.MethodGet, "/api/v1/transactions", s.token(t, 3, domain.UserRoleTenant), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecordTransaction(t *testing.T) {
	body := map[string]any{
		"action_type":        "rent_collection",
		"target_user_type":   "tenant",
		"target_tenant_id":   31,
		"related_entity_id":  900,
		"description":        "March rent",
		"transaction_amount": nil,
	}

	t.Run("Agent records for self; commission failure is reported", func(t *testing.T) {
		s := newTestServer()
		txn := &domain.AgentTransaction{ID: 100, AgentID: 7, ActionType: domain.ActionTypeRentCollection, Target: domain.TenantTarget(31)}
		s.recorder.On("Record", mock.Anything, mock.MatchedBy(func(req domain.RecordRequest) bool {
			id, ok := req.Target.TenantID()
			return req.AgentID == 7 && req.RecordedBy == 7 && ok && id == 31 && req.TransactionAmount == nil
		})).Return(&domain.RecordResult{Transaction: txn, CommissionError: domain.ErrMissingAmount}, nil).Once()

		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 7, domain.UserRoleAgent), body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Transaction struct {
				ID     int64 `json:"id"`
				Target struct {
					Type     string `json:"type"`
					TenantID int64  `json:"tenant_id"`
				} `json:"target"`
			} `json:"transaction"`
			Commission      *json.RawMessage `json:"commission"`
			CommissionError struct {
				Kind string `json:"kind"`
			} `json:"commission_error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(100), resp.Transaction.ID)
		assert.Equal(t, "tenant", resp.Transaction.Target.Type)
		assert.Equal(t, int64(31), resp.Transaction.Target.TenantID)
		assert.Nil(t, resp.Commission)
		assert.Equal(t, "MISSING_AMOUNT", resp.CommissionError.Kind)
		s.recorder.AssertExpectations(t)
	})

	t.Run("Agent cannot record for another agent", func(t *testing.T) {
		s := newTestServer()
		other := map[string]any{"agent_id": 8}
		for k, v := range body {
			other[k] = v
		}
		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 7, domain.UserRoleAgent), other)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		s.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Admin must name the agent", func(t *testing.T) {
		s := newTestServer()
		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 1, domain.UserRoleAdmin), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Ambiguous target", func(t *testing.T) {
		s := newTestServer()
		bad := map[string]any{"target_user_id": 12}
		for k, v := range body {
			bad[k] = v
		}
		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 7, domain.UserRoleAgent), bad)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "INVALID_TARGET", decodeError(t, rec).Error.Kind)
	})

	t.Run("Unknown related entity type", func(t *testing.T) {
		s := newTestServer()
		bad := map[string]any{}
		for k, v := range body {
			bad[k] = v
		}
		bad["related_entity_type"] = "spaceship"
		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 7, domain.UserRoleAgent), bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Kind)
		s.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Unknown agent", func(t *testing.T) {
		s := newTestServer()
		s.recorder.On("Record", mock.Anything, mock.Anything).Return(nil, domain.ErrUnknownAgent).Once()
		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 7, domain.UserRoleAgent), body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "UNKNOWN_AGENT", decodeError(t, rec).Error.Kind)
	})

	t.Run("Validation failure", func(t *testing.T) {
		s := newTestServer()
		rec := s.do(t, http.MethodPost, "/api/v1/transactions", s.token(t, 7, domain.UserRoleAgent), map[string]any{"target_user_type": "owner"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeError(t, rec)
		assert.Equal(t, "INVALID_INPUT", env.Error.Kind)
		assert.Equal(t, "required", env.Error.Fields["ActionType"])
	})
}

func TestListTransactions_AgentSeesOwn(t *testing.T) {
	s := newTestServer()
	s.recorder.On("ListTransactions", mock.Anything, mock.MatchedBy(func(f domain.TransactionFilter) bool {
		return f.AgentID == 7 && f.Page == 2 && f.PageSize == 100 && f.Period.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	})).Return([]domain.AgentTransaction{}, int32(0), nil).Once()

	rec := s.do(t, http.MethodGet, "/api/v1/transactions?agent_id=8&page=2&page_size=500&from=2026-03-01", s.token(t, 7, domain.UserRoleAgent), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"items":[],"total":0,"page":2,"page_size":100}`, rec.Body.String())
	s.recorder.AssertExpectations(t)
}

func TestCommissionEndpoints(t *testing.T) {
	admin := func(s *testServer, t *testing.T) string { return s.token(t, 1, domain.UserRoleAdmin) }

	t.Run("Pay terminal commission conflicts", func(t *testing.T) {
		s := newTestServer()
		s.ledger.On("Pay", mock.Anything, int64(1), int64(12), "").Return(nil, domain.NewError(domain.KindInvalidTransition, "commission 12 is paid")).Once()

		rec := s.do(t, http.MethodPost, "/api/v1/admin/commissions/12/pay", admin(s, t), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "INVALID_TRANSITION", decodeError(t, rec).Error.Kind)
	})

	t.Run("Cancel with notes", func(t *testing.T) {
		s := newTestServer()
		s.ledger.On("Cancel", mock.Anything, int64(1), int64(12), "duplicate entry").
			Return(&domain.AgentCommission{ID: 12, Status: domain.CommissionStatusCancelled}, nil).Once()

		rec := s.do(t, http.MethodPost, "/api/v1/admin/commissions/12/cancel", admin(s, t), map[string]string{"notes": "duplicate entry"})
		assert.Equal(t, http.StatusOK, rec.Code)
		s.ledger.AssertExpectations(t)
	})

	t.Run("Pay bulk", func(t *testing.T) {
		s := newTestServer()
		s.ledger.On("PayBulk", mock.Anything, int64(1), []int64{1, 2, 3}, "march").Return(&domain.BulkPayResult{
			Paid:    []domain.AgentCommission{{ID: 1}, {ID: 2}},
			Skipped: []domain.SkippedCommission{{ID: 3, Kind: domain.KindInvalidTransition, Reason: "commission 3 is paid"}},
		}, nil).Once()

		rec := s.do(t, http.MethodPost, "/api/v1/admin/commissions/pay-bulk", admin(s, t), map[string]any{"ids": []int64{1, 2, 3}, "notes": "march"})
		require.Equal(t, http.StatusOK, rec.Code)
		var res domain.BulkPayResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Len(t, res.Paid, 2)
		assert.Equal(t, domain.KindInvalidTransition, res.Skipped[0].Kind)
	})

	t.Run("Pay bulk needs ids", func(t *testing.T) {
		s := newTestServer()
		rec := s.do(t, http.MethodPost, "/api/v1/admin/commissions/pay-bulk", admin(s, t), map[string]any{"ids": []int64{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Agent cannot read another agent's commission", func(t *testing.T) {
		s := newTestServer()
		s.ledger.On("Get", mock.Anything, int64(12)).Return(&domain.AgentCommission{ID: 12, AgentID: 8}, nil).Once()

		rec := s.do(t, http.MethodGet, "/api/v1/commissions/12", s.token(t, 7, domain.UserRoleAgent), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Internal errors are hidden", func(t *testing.T) {
		s := newTestServer()
		s.ledger.On("Get", mock.Anything, int64(12)).Return(nil, errors.New("pq: connection refused")).Once()

		rec := s.do(t, http.MethodGet, "/api/v1/commissions/12", admin(s, t), nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeError(t, rec)
		assert.Equal(t, "INTERNAL", env.Error.Kind)
		assert.NotContains(t, env.Error.Message, "pq")
	})
}

func TestRuleEndpoints(t *testing.T) {
	s := newTestServer()
	token := s.token(t, 1, domain.UserRoleAdmin)

	s.rules.On("GetRule", mock.Anything, int64(404)).Return(nil, domain.ErrNotFound).Once()
	rec := s.do(t, http.MethodGet, "/api/v1/admin/rules/404", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.rules.On("DeleteRule", mock.Anything, int64(1), int64(3)).Return(domain.ErrRuleInUse).Once()
	rec = s.do(t, http.MethodDelete, "/api/v1/admin/rules/3", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "RULE_IN_USE", decodeError(t, rec).Error.Kind)

	s.rules.On("CreateRule", mock.Anything, int64(1), mock.MatchedBy(func(r *domain.CommissionRule) bool {
		return r.ActionType == domain.ActionTypeRentCollection && r.CommissionValue.String() == "2.5" && r.IsActive
	})).Return(nil).Once()
	rec = s.do(t, http.MethodPost, "/api/v1/admin/rules", token, map[string]any{
		"action_type":      "rent_collection",
		"name":             "Rent 2.5%",
		"commission_type":  "percentage",
		"commission_value": "2.5",
		"max_amount":       20000,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	s.rules.On("SetRuleActive", mock.Anything, int64(1), int64(3), false).Return(&domain.CommissionRule{ID: 3}, nil).Once()
	rec = s.do(t, http.MethodPost, "/api/v1/admin/rules/3/deactivate", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/action-types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Len(t, types, len(domain.AllActionTypes))
	assert.Equal(t, "Rent collection", types[2]["label"])
	assert.Equal(t, "payment", types[2]["entity_type"])
	s.rules.AssertExpectations(t)
}
