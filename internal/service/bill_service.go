package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/internal/bills"
	"github.com/mmynk/billminder/pkg/billapi"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
)

// DefaultUpcomingDays is the ListUpcoming window when the request has none.
const DefaultUpcomingDays = 7

var _ billapiconnect.BillServiceHandler = (*BillService)(nil)

// BillService implements the Connect BillService on top of the bill store
// and the alert engine.
type BillService struct {
	store        *bills.Store
	alerts       *alerts.Engine
	upcomingDays int
}

// NewBillService creates a BillService. upcomingDays <= 0 uses DefaultUpcomingDays.
func NewBillService(store *bills.Store, engine *alerts.Engine, upcomingDays int) *BillService {
	if upcomingDays <= 0 {
		upcomingDays = DefaultUpcomingDays
	}
	return &BillService{store: store, alerts: engine, upcomingDays: upcomingDays}
}

// CreateBill adds a new pending bill.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[billapi.CreateBillRequest]) (*connect.Response[billapi.CreateBillResponse], error) {
	slog.Info("CreateBill request received", "name", req.Msg.Name, "due_date", req.Msg.DueDate)

	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}
	due, err := parseDate("due_date", req.Msg.DueDate)
	if err != nil {
		return nil, connectError(err)
	}

	bill, err := s.store.Add(ctx, fromCreate(req.Msg, amount, due))
	if err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&billapi.CreateBillResponse{Bill: toAPIBill(bill)}), nil
}

// GetBill returns one bill by id.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[billapi.GetBillRequest]) (*connect.Response[billapi.GetBillResponse], error) {
	bill, err := s.store.Get(req.Msg.BillID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&billapi.GetBillResponse{Bill: toAPIBill(bill)}), nil
}

// UpdateBill replaces a bill's fields.
func (s *BillService) UpdateBill(ctx context.Context, req *connect.Request[billapi.UpdateBillRequest]) (*connect.Response[billapi.UpdateBillResponse], error) {
	slog.Info("UpdateBill request received", "bill_id", req.Msg.BillID)

	bill, err := fromAPIBill(req.Msg.Bill)
	if err != nil {
		return nil, connectError(err)
	}
	updated, err := s.store.Update(ctx, req.Msg.BillID, bill)
	if err != nil {
		slog.Error("UpdateBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&billapi.UpdateBillResponse{Bill: toAPIBill(updated)}), nil
}

// DeleteBill removes a bill.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[billapi.DeleteBillRequest]) (*connect.Response[billapi.DeleteBillResponse], error) {
	slog.Info("DeleteBill request received", "bill_id", req.Msg.BillID)

	if err := s.store.Delete(ctx, req.Msg.BillID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&billapi.DeleteBillResponse{}), nil
}

// ListBills returns every bill.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[billapi.ListBillsRequest]) (*connect.Response[billapi.ListBillsResponse], error) {
	return connect.NewResponse(&billapi.ListBillsResponse{Bills: toAPIBills(s.store.List())}), nil
}

// ListUpcoming returns pending bills due within the requested window.
func (s *BillService) ListUpcoming(ctx context.Context, req *connect.Request[billapi.ListUpcomingRequest]) (*connect.Response[billapi.ListUpcomingResponse], error) {
	days := s.upcomingDays
	if req.Msg.Days != nil {
		days = int(*req.Msg.Days)
	}
	if days < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("days must not be negative, got %d", days))
	}

	upcoming, err := s.store.ListUpcoming(ctx, days)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&billapi.ListUpcomingResponse{
		Days:  int32(days),
		Bills: toAPIBills(upcoming),
	}), nil
}

// ListOverdue marks late bills overdue and returns every overdue bill.
func (s *BillService) ListOverdue(ctx context.Context, req *connect.Request[billapi.ListOverdueRequest]) (*connect.Response[billapi.ListOverdueResponse], error) {
	overdue, err := s.store.ListOverdue(ctx)
	if err != nil {
		slog.Error("ListOverdue failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&billapi.ListOverdueResponse{Bills: toAPIBills(overdue)}), nil
}

// GetAlerts classifies bills into tiers and renders the summary.
func (s *BillService) GetAlerts(ctx context.Context, req *connect.Request[billapi.GetAlertsRequest]) (*connect.Response[billapi.GetAlertsResponse], error) {
	a, err := s.alerts.Classify(ctx)
	if err != nil {
		slog.Error("GetAlerts failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&billapi.GetAlertsResponse{
		Overdue:  toAPIAlerts(a.Overdue),
		Critical: toAPIAlerts(a.Critical),
		Urgent:   toAPIAlerts(a.Urgent),
		Upcoming: toAPIAlerts(a.Upcoming),
		Summary:  alerts.Render(a),
	}), nil
}

// PayBill marks a bill paid.
func (s *BillService) PayBill(ctx context.Context, req *connect.Request[billapi.PayBillRequest]) (*connect.Response[billapi.PayBillResponse], error) {
	slog.Info("PayBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.store.Pay(ctx, req.Msg.BillID)
	if err != nil {
		slog.Error("PayBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&billapi.PayBillResponse{Bill: toAPIBill(bill)}), nil
}

// PayBillByName pays the single unpaid bill matching a name. An ambiguous
// name is not an error: the response lists the candidates instead.
func (s *BillService) PayBillByName(ctx context.Context, req *connect.Request[billapi.PayBillByNameRequest]) (*connect.Response[billapi.PayBillByNameResponse], error) {
	slog.Info("PayBillByName request received", "name", req.Msg.Name)

	bill, err := s.store.PayByName(ctx, req.Msg.Name)
	var ambiguous *bills.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		return connect.NewResponse(&billapi.PayBillByNameResponse{
			Candidates: toAPIBills(ambiguous.Candidates),
		}), nil
	}
	if err != nil {
		slog.Error("PayBillByName failed", "name", req.Msg.Name, "error", err)
		return nil, connectError(err)
	}

	paid := toAPIBill(bill)
	return connect.NewResponse(&billapi.PayBillByNameResponse{
		Bill:       &paid,
		Candidates: []billapi.Bill{},
	}), nil
}
