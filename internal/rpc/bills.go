package rpc

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/middleware"
	"github.com/mmynk/roommates/internal/service"
)

// BillHandler serves BillService.
type BillHandler struct {
	bills *service.BillService
}

// NewBillHandler creates a handler backed by the bill service.
func NewBillHandler(bills *service.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

func (h *BillHandler) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[BillResponse], error) {
	total, err := parseMoney("total_balance", req.Msg.TotalBalance)
	if err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", req.Msg.DueDate)
	if err != nil {
		return nil, err
	}

	bill, err := h.bills.CreateBill(ctx, middleware.GetUserID(ctx), engine.BillParams{
		Name:         req.Msg.Name,
		TotalBalance: total,
		DueDate:      due,
		Frequency:    req.Msg.Frequency,
		ManagerID:    req.Msg.ManagerID,
		Participants: req.Msg.Participants,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&BillResponse{Bill: toBill(bill)}), nil
}

func (h *BillHandler) UpdateBill(ctx context.Context, req *connect.Request[UpdateBillRequest]) (*connect.Response[BillResponse], error) {
	patch := engine.BillPatch{
		Name:      req.Msg.Name,
		Frequency: req.Msg.Frequency,
		ManagerID: req.Msg.ManagerID,
	}
	if req.Msg.TotalBalance != nil {
		total, err := parseMoney("total_balance", *req.Msg.TotalBalance)
		if err != nil {
			return nil, err
		}
		patch.TotalBalance = &total
	}
	if req.Msg.DueDate != nil {
		due, err := parseDate("due_date", *req.Msg.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &due
	}

	bill, err := h.bills.UpdateBill(ctx, middleware.GetUserID(ctx), req.Msg.BillID, patch)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&BillResponse{Bill: toBill(bill)}), nil
}

func (h *BillHandler) DeleteBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[Empty], error) {
	if err := h.bills.DeleteBill(ctx, middleware.GetUserID(ctx), req.Msg.BillID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (h *BillHandler) AddParticipants(ctx context.Context, req *connect.Request[ParticipantsRequest]) (*connect.Response[ParticipantsResponse], error) {
	bill, n, err := h.bills.AddParticipants(ctx, middleware.GetUserID(ctx), req.Msg.BillID, req.Msg.UserIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ParticipantsResponse{Bill: toBill(bill), Changed: n}), nil
}

func (h *BillHandler) RemoveParticipants(ctx context.Context, req *connect.Request[ParticipantsRequest]) (*connect.Response[ParticipantsResponse], error) {
	bill, n, err := h.bills.RemoveParticipants(ctx, middleware.GetUserID(ctx), req.Msg.BillID, req.Msg.UserIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ParticipantsResponse{Bill: toBill(bill), Changed: n}), nil
}

func (h *BillHandler) ActivateBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[ActivateBillResponse], error) {
	bill, cycles, err := h.bills.ActivateBill(ctx, middleware.GetUserID(ctx), req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ActivateBillResponse{Bill: toBill(bill), Cycles: toCycles(cycles)}), nil
}

func (h *BillHandler) DeactivateBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[DeactivateBillResponse], error) {
	bill, archived, err := h.bills.DeactivateBill(ctx, middleware.GetUserID(ctx), req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeactivateBillResponse{Bill: toBill(bill), Archived: archived}), nil
}

// PayCycle marks a share paid; without a recipient the caller pays their own.
func (h *BillHandler) PayCycle(ctx context.Context, req *connect.Request[PayCycleRequest]) (*connect.Response[CycleResponse], error) {
	cycle, err := h.bills.PayCycle(ctx, middleware.GetUserID(ctx), req.Msg.BillID, req.Msg.RecipientID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CycleResponse{Cycle: toCycle(cycle)}), nil
}

func (h *BillHandler) ListBills(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListBillsResponse], error) {
	bills, err := h.bills.ListBills(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListBillsResponse{Bills: toBills(bills)}), nil
}

func (h *BillHandler) ListBillCycles(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[ListCyclesResponse], error) {
	cycles, err := h.bills.ListBillCycles(ctx, middleware.GetUserID(ctx), req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListCyclesResponse{Cycles: toCycles(cycles)}), nil
}

func (h *BillHandler) ListPaidCycles(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListCyclesResponse], error) {
	cycles, err := h.bills.ListPaidCycles(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListCyclesResponse{Cycles: toCycles(cycles)}), nil
}

func (h *BillHandler) Balances(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[BalancesResponse], error) {
	sheet, err := h.bills.Balances(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toBalances(sheet)), nil
}
