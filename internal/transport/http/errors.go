package http

import (
	"encoding/json"
	"net/http"

	"github.com/tanihub/agristore-api/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidStatus      = "invalid_status"
	codeInvalidTransition  = "invalid_transition"
	codeInvalidDecision    = "invalid_decision"
	codeReasonRequired     = "reason_required"
	codeOrderNotFound      = "order_not_found"
	codeProductNotFound    = "product_not_found"
	codeVoucherNotFound    = "voucher_not_found"
	codeStaleOrder         = "stale_order"
	codeInsufficientStock  = "insufficient_stock"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Every rejected
// transition is explainable by one of the domain error kinds.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrOrderNotFound:
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case domain.ErrProductNotFound:
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case domain.ErrVoucherNotFound:
		writeError(w, http.StatusConflict, codeVoucherNotFound, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrInvalidStatus:
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case domain.ErrInvalidDecision:
		writeError(w, http.StatusBadRequest, codeInvalidDecision, err.Error())
	case domain.ErrReasonRequired:
		writeError(w, http.StatusBadRequest, codeReasonRequired, err.Error())
	case domain.ErrInvalidTransition:
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case domain.ErrStaleOrder:
		writeError(w, http.StatusConflict, codeStaleOrder, err.Error())
	case domain.ErrInsufficientStock:
		writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
	case domain.ErrUnauthorized:
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
