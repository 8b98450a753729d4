package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tanihub/agristore-api/internal/app"
	"github.com/tanihub/agristore-api/internal/domain"
)

// OrderReader serves order lookups.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// StatusAdvancer applies a single lifecycle transition.
type StatusAdvancer interface {
	AdvanceStatus(ctx context.Context, orderID string, target domain.OrderStatus, actor domain.Actor) (domain.Order, error)
}

// ApprovalWorkflow covers customer requests and admin decisions.
type ApprovalWorkflow interface {
	RequestCancellation(ctx context.Context, orderID, reason string) (domain.Order, error)
	RequestReturn(ctx context.Context, orderID, reason string, media []string) (domain.Order, error)
	DecideCancellation(ctx context.Context, orderID string, decision app.Decision) (app.DecisionResult, error)
	DecideReturn(ctx context.Context, orderID string, decision app.Decision) (app.DecisionResult, error)
}

// HandleOrders routes everything under /orders/. The supported shapes are:
//
//	GET   /orders/{id}
//	PATCH /orders/{id}/status
//	POST  /orders/{id}/cancellation
//	POST  /orders/{id}/cancellation/decision
//	POST  /orders/{id}/return
//	POST  /orders/{id}/return/decision
func HandleOrders(orders OrderReader, advancer StatusAdvancer, approvals ApprovalWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, rest, ok := parseOrdersPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch rest {
		case "":
			handleGetOrder(w, r, orders, orderID)
		case "status":
			handleAdvanceStatus(w, r, advancer, orderID)
		case "cancellation":
			handleCancellationRequest(w, r, approvals, orderID)
		case "return":
			handleReturnRequest(w, r, approvals, orderID)
		case "cancellation/decision":
			handleDecision(w, r, orderID, approvals.DecideCancellation)
		case "return/decision":
			handleDecision(w, r, orderID, approvals.DecideReturn)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleGetOrder(w http.ResponseWriter, r *http.Request, orders OrderReader, orderID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	order, err := orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

func handleAdvanceStatus(w http.ResponseWriter, r *http.Request, advancer StatusAdvancer, orderID string) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusForbidden, codeForbidden, "unknown actor role")
		return
	}

	var req advanceStatusRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	target, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !target.DeliveryFlow() {
		writeDomainError(w, domain.ErrInvalidTransition)
		return
	}

	order, err := advancer.AdvanceStatus(r.Context(), orderID, target, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

// requireActor enforces the role a handler expects. A missing or unknown role
// and a mismatched role both map to 403.
func requireActor(w http.ResponseWriter, r *http.Request, want domain.Actor) bool {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusForbidden, codeForbidden, "unknown actor role")
		return false
	}
	if actor != want {
		writeError(w, http.StatusForbidden, codeForbidden, domain.ErrUnauthorized.Error())
		return false
	}
	return true
}

// A cancellation carries only a reason. Attachments belong to returns, so a
// media field here fails DisallowUnknownFields instead of being dropped.
type cancellationRequest struct {
	Reason string `json:"reason"`
}

type returnRequest struct {
	Reason string   `json:"reason"`
	Media  []string `json:"media,omitempty"`
}

func handleCancellationRequest(w http.ResponseWriter, r *http.Request, approvals ApprovalWorkflow, orderID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if !requireActor(w, r, domain.ActorCustomer) {
		return
	}

	var req cancellationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	order, err := approvals.RequestCancellation(r.Context(), orderID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

func handleReturnRequest(w http.ResponseWriter, r *http.Request, approvals ApprovalWorkflow, orderID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if !requireActor(w, r, domain.ActorCustomer) {
		return
	}

	var req returnRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	order, err := approvals.RequestReturn(r.Context(), orderID, req.Reason, req.Media)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

type decisionResponse struct {
	Order   orderResponse `json:"order"`
	Applied bool          `json:"applied"`
}

func handleDecision(
	w http.ResponseWriter,
	r *http.Request,
	orderID string,
	decide func(ctx context.Context, orderID string, decision app.Decision) (app.DecisionResult, error),
) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if !requireActor(w, r, domain.ActorAdmin) {
		return
	}

	var req decisionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	decision, err := app.ParseDecision(req.Decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := decide(r.Context(), orderID, decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(decisionResponse{
		Order:   toOrderResponse(result.Order),
		Applied: result.Applied,
	})
}

type orderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

type cancelRequestResponse struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type returnRequestResponse struct {
	Reason      string    `json:"reason"`
	Media       []string  `json:"media,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

type orderResponse struct {
	ID             string                 `json:"id"`
	Status         string                 `json:"status"`
	PreviousStatus string                 `json:"previous_status,omitempty"`
	Items          []orderItemResponse    `json:"items"`
	Subtotal       string                 `json:"subtotal"`
	Discount       string                 `json:"discount"`
	TotalPrice     string                 `json:"total_price"`
	VoucherCode    string                 `json:"voucher_code,omitempty"`
	CancelRequest  *cancelRequestResponse `json:"cancel_request,omitempty"`
	ReturnRequest  *returnRequestResponse `json:"return_request,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.String(),
			Quantity:    item.Quantity,
		})
	}

	resp := orderResponse{
		ID:             order.ID,
		Status:         string(order.Status),
		PreviousStatus: string(order.PreviousStatus),
		Items:          items,
		Subtotal:       order.Subtotal.String(),
		Discount:       order.Discount.String(),
		TotalPrice:     order.TotalPrice.String(),
		VoucherCode:    order.VoucherCode,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.CancelRequest != nil {
		resp.CancelRequest = &cancelRequestResponse{
			Reason:      order.CancelRequest.Reason,
			RequestedAt: order.CancelRequest.RequestedAt,
		}
	}
	if order.ReturnRequest != nil {
		resp.ReturnRequest = &returnRequestResponse{
			Reason:      order.ReturnRequest.Reason,
			Media:       order.ReturnRequest.Media,
			RequestedAt: order.ReturnRequest.RequestedAt,
		}
	}
	return resp
}

func parseOrdersPath(path string) (orderID, rest string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "orders" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], strings.Join(parts[2:], "/"), true
}
