package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/playerledger/internal/api"
	"github.com/mcoot/playerledger/internal/api/apierr"
	"github.com/mcoot/playerledger/internal/api/response"
	"github.com/mcoot/playerledger/internal/factory"
	"github.com/mcoot/playerledger/internal/model"
)

// testServer wraps the router over a test app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:      app.Logger,
		Random:      app.Random,
		Metrics:     app.Metrics,
		AuthService: app.AuthService,
		Facade:      app.LedgerFacade,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&reqBody).Encode(body)
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, name string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"name":     name,
		"password": "secret",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) createAccount(t *testing.T, token string) response.Account {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/accounts", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var acc response.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &acc))
	return acc
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueString("abc123")

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, "req_abc123", rr.Header().Get("X-Request-ID"))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	reg := ts.register(t, "alice")
	assert.Equal(t, "alice", reg.Player.Name)
	assert.NotEmpty(t, reg.Token)
	assert.True(t, ts.app.MockClock.Now().Add(time.Hour).Equal(reg.ExpiresAt))

	rr := ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"name":     "alice",
		"password": "secret",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var login response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, reg.Player.ID, login.Player.ID)
}

func TestRegisterResponseOmitsPasswordHash(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"name":     "alice",
		"password": "secret",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hash")
	assert.NotContains(t, rr.Body.String(), "$2a$")
}

func TestRegisterErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"duplicate", map[string]string{"name": "alice", "password": "x"}, http.StatusConflict, "DUPLICATE_PLAYER"},
		{"bad name", map[string]string{"name": "al1ce", "password": "x"}, http.StatusBadRequest, "INVALID_NAME"},
		{"empty password", map[string]string{"name": "bob", "password": ""}, http.StatusBadRequest, "INVALID_PASSWORD"},
		{"not json", "nope", http.StatusBadRequest, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/players/register", tt.body, "")
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"name":     "alice",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rr).Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, reg.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, reg.Player.ID, me.ID)
}

func TestAuthFailures(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/accounts", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/accounts", nil, reg.Token+"x")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_SIGNATURE_OR_EXPIRED", decodeError(t, rr).Code)

	ts.app.MockClock.Advance(2 * time.Hour)
	rr = ts.request(http.MethodGet, "/api/v1/accounts", nil, reg.Token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "auth", decodeError(t, rr).Category)
}

func TestAccountLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	acc := ts.createAccount(t, token)
	assert.Equal(t, "0.00", acc.Amount)
	path := fmt.Sprintf("/api/v1/accounts/%d", acc.ID)

	rr := ts.request(http.MethodPost, path+"/credit", map[string]string{"amount": "100.00"}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, path+"/debit", map[string]string{"amount": "30.50"}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated response.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "69.50", updated.Amount)

	rr = ts.request(http.MethodPost, path+"/debit", map[string]string{"amount": "100"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "69.50", updated.Amount)

	rr = ts.request(http.MethodGet, path+"/operations", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var ops []response.Operation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ops))
	require.Len(t, ops, 2)
	assert.Equal(t, "CREDIT", ops[0].Type)
	assert.Equal(t, "100.00", ops[0].Amount)
	assert.Equal(t, "DEBIT", ops[1].Type)
	assert.Less(t, ops[0].ID, ops[1].ID)

	rr = ts.request(http.MethodGet, fmt.Sprintf("/api/v1/operations/%d", ops[1].ID), nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var op response.Operation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &op))
	assert.Equal(t, "30.50", op.Amount)
}

func TestListAccounts(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	rr := ts.request(http.MethodGet, "/api/v1/accounts", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	ts.createAccount(t, token)
	ts.createAccount(t, token)

	rr = ts.request(http.MethodGet, "/api/v1/accounts", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var accounts []response.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 2)
}

func TestAmountValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token
	acc := ts.createAccount(t, token)
	path := fmt.Sprintf("/api/v1/accounts/%d/credit", acc.ID)

	for _, amount := range []string{"0", "-5", "abc", "", "1.001"} {
		t.Run(amount, func(t *testing.T) {
			rr := ts.request(http.MethodPost, path, map[string]string{"amount": amount}, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "INVALID_AMOUNT", decodeError(t, rr).Code)
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	for _, id := range []string{"0", "-1", "abc"} {
		rr := ts.request(http.MethodGet, "/api/v1/accounts/"+id, nil, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code, id)
		assert.Equal(t, "INVALID_ID", decodeError(t, rr).Code)
	}
}

func TestRejectedRequestsAreAudited(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	acc := ts.createAccount(t, alice.Token)
	playerID := model.PlayerID(alice.Player.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   string
		action model.ActionType
	}{
		{"credit zero id", http.MethodPost, "/api/v1/accounts/0/credit", map[string]string{"amount": "5"}, "INVALID_ID", model.ActionCreditAccount},
		{"debit non-numeric id", http.MethodPost, "/api/v1/accounts/abc/debit", map[string]string{"amount": "5"}, "INVALID_ID", model.ActionDebitAccount},
		{"credit unreadable body", http.MethodPost, fmt.Sprintf("/api/v1/accounts/%d/credit", acc.ID), "nope", apierr.CodeInvalidRequest, model.ActionCreditAccount},
		{"operation zero id", http.MethodGet, "/api/v1/operations/0", nil, "INVALID_ID", model.ActionOperationAccount},
		{"operation negative id", http.MethodGet, "/api/v1/operations/-3", nil, "INVALID_ID", model.ActionOperationAccount},
		{"operations zero id", http.MethodGet, "/api/v1/accounts/0/operations", nil, "INVALID_ID", model.ActionOperationsAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := ts.app.ActionAudit.ListByPlayer(context.Background(), playerID)
			require.NoError(t, err)

			rr := ts.request(tt.method, tt.path, tt.body, alice.Token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)

			after, err := ts.app.ActionAudit.ListByPlayer(context.Background(), playerID)
			require.NoError(t, err)
			require.Len(t, after, len(before)+1)
			last := after[len(after)-1]
			assert.Equal(t, tt.action, last.Type)
			assert.Equal(t, model.ActionFail, last.Status)
		})
	}
}

func TestOtherPlayersAccountIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice").Token
	bob := ts.register(t, "bob").Token

	acc := ts.createAccount(t, alice)
	path := fmt.Sprintf("/api/v1/accounts/%d", acc.ID)

	rr := ts.request(http.MethodPost, path+"/credit", map[string]string{"amount": "10"}, bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, path, nil, bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodGet, path+"/operations", nil, bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAccountNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	rr := ts.request(http.MethodGet, "/api/v1/accounts/999", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/operations/999", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "OPERATION_NOT_FOUND", decodeError(t, rr).Code)
}

func TestActionsAreAudited(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	acc := ts.createAccount(t, token)
	path := fmt.Sprintf("/api/v1/accounts/%d", acc.ID)
	ts.request(http.MethodPost, path+"/credit", map[string]string{"amount": "5"}, token)
	ts.request(http.MethodPost, path+"/debit", map[string]string{"amount": "50"}, token)
	ts.request(http.MethodGet, path, nil, token)

	rr := ts.request(http.MethodGet, "/api/v1/actions", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var actions []response.Action
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &actions))
	require.Len(t, actions, 3)
	assert.Equal(t, "CREATE_ACCOUNT", actions[0].Type)
	assert.Equal(t, "SUCCESS", actions[0].Status)
	assert.Equal(t, "CREDIT_ACCOUNT", actions[1].Type)
	assert.Equal(t, "DEBIT_ACCOUNT", actions[2].Type)
	assert.Equal(t, "FAIL", actions[2].Status)

	rr = ts.request(http.MethodGet, "/api/v1/actions", nil, token)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &actions))
	require.Len(t, actions, 4)
	assert.Equal(t, "ACTIONS", actions[3].Type)
}

func TestConcurrentDebitsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token
	acc := ts.createAccount(t, token)
	path := fmt.Sprintf("/api/v1/accounts/%d", acc.ID)
	ts.request(http.MethodPost, path+"/credit", map[string]string{"amount": "100"}, token)

	var wg sync.WaitGroup
	codes := make([]int, 10)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = ts.request(http.MethodPost, path+"/debit", map[string]string{"amount": "30"}, token).Code
		}(i)
	}
	wg.Wait()

	var ok int
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusUnprocessableEntity, code)
		}
	}
	assert.Equal(t, 3, ok)

	rr := ts.request(http.MethodGet, path, nil, token)
	var final response.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &final))
	assert.Equal(t, "10.00", final.Amount)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodGet, "/api/v1/health", nil, "")

	assert.Equal(t, 1.0, testutil.ToFloat64(
		ts.app.Metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200")))

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "playerledger_http_requests_total")
}
