package handler

import (
	"net/http"

	"github.com/mcoot/playerledger/internal/api/apierr"
	"github.com/mcoot/playerledger/internal/api/middleware"
	"github.com/mcoot/playerledger/internal/api/response"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/services/facade"
)

// OperationHandler handles operation and action log endpoints
type OperationHandler struct {
	facade *facade.Facade
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(f *facade.Facade) *OperationHandler {
	return &OperationHandler{facade: f}
}

// Get handles GET /api/v1/operations/{id}
func (h *OperationHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	operationID := pathID(r, "id")

	op, err := h.facade.GetOperation(r.Context(), playerID, model.OperationID(operationID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OperationFromModel(op))
}

// Actions handles GET /api/v1/actions
func (h *OperationHandler) Actions(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	actions, err := h.facade.ListActions(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActionsFromModel(actions))
}
