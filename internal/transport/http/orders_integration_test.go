package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tanihub/agristore-api/internal/app"
	"github.com/tanihub/agristore-api/internal/clock"
	"github.com/tanihub/agristore-api/internal/domain"
	"github.com/tanihub/agristore-api/internal/storage/postgres"
	"github.com/tanihub/agristore-api/internal/testutil"
)

func TestCancellationApproval_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	orderRepo := postgres.NewOrderRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	clk := clock.NewSystem()
	ledger := app.NewLedgerService(stockRepo, clk)
	orders := app.NewOrderService(orderRepo, clk)
	approvals := app.NewApprovalService(orderRepo, ledger, clk)

	handler := HandleOrders(orders, orders, approvals)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Rice Seed", 47)
	testutil.InsertVoucher(t, ctx, pool, "V1", "1000", 5)
	orderID := testutil.InsertOrder(t, ctx, pool, domain.StatusProcessing, "V1")
	testutil.InsertOrderItem(t, ctx, pool, orderID, productID, "Rice Seed", "10000", 3)

	// Customer asks to cancel while the order is still in processing.
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/cancellation",
		bytes.NewBufferString(`{"reason":"wrong address"}`))
	req.Header.Set(actorHeader, "customer")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var requested orderResponse
	if err := json.NewDecoder(rec.Body).Decode(&requested); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if requested.Status != string(domain.StatusCancelRequested) {
		t.Fatalf("expected cancel_requested, got %s", requested.Status)
	}
	if requested.PreviousStatus != string(domain.StatusProcessing) {
		t.Fatalf("expected previous_status processing, got %s", requested.PreviousStatus)
	}

	// A direct status write to cancelled is refused: only the decision
	// endpoint may cancel, because it carries the restock and voucher effects.
	req = httptest.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status",
		bytes.NewBufferString(`{"status":"cancelled"}`))
	req.Header.Set(actorHeader, "admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if stock := testutil.ProductStock(t, ctx, pool, productID); stock != 47 {
		t.Fatalf("expected stock untouched at 47, got %d", stock)
	}
	if uses := testutil.VoucherUses(t, ctx, pool, "V1"); uses != 5 {
		t.Fatalf("expected voucher uses untouched at 5, got %d", uses)
	}

	// Admin approves: status, restock and voucher release land together.
	req = httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/cancellation/decision",
		bytes.NewBufferString(`{"decision":"approve"}`))
	req.Header.Set(actorHeader, "admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var decided decisionResponse
	if err := json.NewDecoder(rec.Body).Decode(&decided); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !decided.Applied {
		t.Fatalf("expected decision applied")
	}
	if decided.Order.Status != string(domain.StatusCancelled) {
		t.Fatalf("expected cancelled, got %s", decided.Order.Status)
	}

	if stock := testutil.ProductStock(t, ctx, pool, productID); stock != 50 {
		t.Fatalf("expected stock restored to 50, got %d", stock)
	}
	if uses := testutil.VoucherUses(t, ctx, pool, "V1"); uses != 4 {
		t.Fatalf("expected voucher uses 4, got %d", uses)
	}

	movements, err := stockRepo.ListMovements(ctx, productID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	movement := movements[0]
	if movement.Type != domain.MovementIn || movement.Reason != domain.ReasonCancellation {
		t.Fatalf("unexpected movement: %+v", movement)
	}
	if movement.Quantity != 3 || movement.PreviousStock != 47 || movement.CurrentStock != 50 {
		t.Fatalf("unexpected movement amounts: %+v", movement)
	}

	// A retried approval reports applied=false and changes nothing.
	req = httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/cancellation/decision",
		bytes.NewBufferString(`{"decision":"approve"}`))
	req.Header.Set(actorHeader, "admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on retry, got %d: %s", rec.Code, rec.Body.String())
	}
	var retried decisionResponse
	if err := json.NewDecoder(rec.Body).Decode(&retried); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if retried.Applied {
		t.Fatalf("expected retry to report applied=false")
	}
	if stock := testutil.ProductStock(t, ctx, pool, productID); stock != 50 {
		t.Fatalf("expected stock unchanged at 50, got %d", stock)
	}
	if uses := testutil.VoucherUses(t, ctx, pool, "V1"); uses != 4 {
		t.Fatalf("expected voucher uses unchanged at 4, got %d", uses)
	}
}

func TestReturnRejection_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	orderRepo := postgres.NewOrderRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	clk := clock.NewSystem()
	ledger := app.NewLedgerService(stockRepo, clk)
	orders := app.NewOrderService(orderRepo, clk)
	approvals := app.NewApprovalService(orderRepo, ledger, clk)

	handler := HandleOrders(orders, orders, approvals)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Compost", 20)
	orderID := testutil.InsertOrder(t, ctx, pool, domain.StatusCompleted, "")
	testutil.InsertOrderItem(t, ctx, pool, orderID, productID, "Compost", "15000", 2)

	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/return",
		bytes.NewBufferString(`{"reason":"spoiled produce","media":["a.jpg","b.jpg"]}`))
	req.Header.Set(actorHeader, "customer")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/return/decision",
		bytes.NewBufferString(`{"decision":"reject"}`))
	req.Header.Set(actorHeader, "admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var decided decisionResponse
	if err := json.NewDecoder(rec.Body).Decode(&decided); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decided.Order.Status != string(domain.StatusReturnRejected) {
		t.Fatalf("expected return_rejected, got %s", decided.Order.Status)
	}

	// Rejection must not touch stock.
	if stock := testutil.ProductStock(t, ctx, pool, productID); stock != 20 {
		t.Fatalf("expected stock unchanged at 20, got %d", stock)
	}

	// return_rejected is terminal, a second request is refused.
	req = httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/return",
		bytes.NewBufferString(`{"reason":"still spoiled"}`))
	req.Header.Set(actorHeader, "customer")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
