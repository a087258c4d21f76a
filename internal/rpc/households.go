package rpc

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roommates/internal/middleware"
	"github.com/mmynk/roommates/internal/service"
)

// HouseholdHandler serves HouseholdService.
type HouseholdHandler struct {
	households *service.HouseholdService
}

// NewHouseholdHandler creates a handler backed by the household service.
func NewHouseholdHandler(households *service.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{households: households}
}

func (h *HouseholdHandler) CreateHousehold(ctx context.Context, req *connect.Request[CreateHouseholdRequest]) (*connect.Response[HouseholdResponse], error) {
	household, err := h.households.CreateHousehold(ctx, middleware.GetUserID(ctx), req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&HouseholdResponse{Household: toHousehold(household)}), nil
}

func (h *HouseholdHandler) UpdateHousehold(ctx context.Context, req *connect.Request[UpdateHouseholdRequest]) (*connect.Response[HouseholdResponse], error) {
	household, err := h.households.UpdateHousehold(ctx, middleware.GetUserID(ctx), req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&HouseholdResponse{Household: toHousehold(household)}), nil
}

func (h *HouseholdHandler) DeleteHousehold(ctx context.Context, req *connect.Request[DeleteHouseholdRequest]) (*connect.Response[Empty], error) {
	if err := h.households.DeleteHousehold(ctx, middleware.GetUserID(ctx), req.Msg.HouseholdID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// Homepage returns the caller's household with the caller listed first.
func (h *HouseholdHandler) Homepage(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[HomepageResponse], error) {
	page, err := h.households.Homepage(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}

	members := make([]*User, len(page.Members))
	for i, m := range page.Members {
		members[i] = toUser(m)
	}
	return connect.NewResponse(&HomepageResponse{
		Household: toHousehold(page.Household),
		Members:   members,
	}), nil
}
