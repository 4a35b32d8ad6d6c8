package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/playerledger/internal/api/apierr"
)

// pathID parses an integer path variable, yielding 0 when it is not a number.
// Range checks belong to the services so that rejected ids are still audited.
func pathID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// decode reads a JSON request body into v
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}
