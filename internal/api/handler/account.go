package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mcoot/playerledger/internal/api/apierr"
	"github.com/mcoot/playerledger/internal/api/middleware"
	"github.com/mcoot/playerledger/internal/api/request"
	"github.com/mcoot/playerledger/internal/api/response"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/services/facade"
)

// AccountHandler handles account endpoints. Every call goes through the
// facade so that ownership is checked and the action is audited.
type AccountHandler struct {
	facade *facade.Facade
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(f *facade.Facade) *AccountHandler {
	return &AccountHandler{facade: f}
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	acc, err := h.facade.CreateAccount(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(acc))
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	accounts, err := h.facade.ListAccounts(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountsFromModel(accounts))
}

// Get handles GET /api/v1/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	accountID := pathID(r, "id")

	acc, err := h.facade.GetAccount(r.Context(), playerID, model.AccountID(accountID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acc))
}

// Credit handles POST /api/v1/accounts/{id}/credit
func (h *AccountHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.facade.Credit)
}

// Debit handles POST /api/v1/accounts/{id}/debit
func (h *AccountHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.facade.Debit)
}

type amountFunc func(ctx context.Context, playerID model.PlayerID, accountID model.AccountID, amount decimal.Decimal) (*model.Account, error)

func (h *AccountHandler) applyAmount(w http.ResponseWriter, r *http.Request, apply amountFunc) {
	playerID := middleware.MustGetPlayerID(r.Context())
	accountID := pathID(r, "id")

	// An unreadable body or malformed amount still reaches the facade as
	// zero, so the attempt is audited as a failed action
	var req request.AmountRequest
	decodeErr := decode(r, &req)
	amount, err := decimal.NewFromString(req.Amount)
	if decodeErr != nil || err != nil {
		amount = decimal.Zero
	}

	acc, err := apply(r.Context(), playerID, model.AccountID(accountID), amount)
	if err != nil {
		if decodeErr != nil && model.KindOf(err) == model.KindInvalidAmount {
			err = decodeErr
		}
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acc))
}

// Operations handles GET /api/v1/accounts/{id}/operations
func (h *AccountHandler) Operations(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	accountID := pathID(r, "id")

	ops, err := h.facade.ListOperations(r.Context(), playerID, model.AccountID(accountID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OperationsFromModel(ops))
}
