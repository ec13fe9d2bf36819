package queries

import (
	"context"

	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"
)

// Suggester is the read-only half of services.RouteOptimizer.
type Suggester interface {
	Suggest(ctx context.Context, stops []services.Stop, params services.OptimizeParams) ([]route.Suggestion, error)
}

type GetRoutePlanQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetRoutePlanQueryHandler(uowFactory ports.UnitOfWorkFactory) GetRoutePlanQueryHandler {
	return GetRoutePlanQueryHandler{uowFactory: uowFactory}
}

// Handle returns an error wrapping route.ErrRoutePlanNotFound when the
// driver has no active plan for the date.
func (h GetRoutePlanQueryHandler) Handle(ctx context.Context, query GetRoutePlanQuery) (*route.RoutePlan, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.uowFactory.Create().RoutePlanRepository().GetActive(ctx, query.DriverID(), query.Date())
}

// SuggestRoutesQueryHandler ranks candidate orderings of the current stops.
// The oracle is consulted, but nothing is persisted or broadcast.
type SuggestRoutesQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	suggester  Suggester
}

func NewSuggestRoutesQueryHandler(uowFactory ports.UnitOfWorkFactory, suggester Suggester) SuggestRoutesQueryHandler {
	return SuggestRoutesQueryHandler{uowFactory: uowFactory, suggester: suggester}
}

func (h SuggestRoutesQueryHandler) Handle(ctx context.Context, query SuggestRoutesQuery) ([]route.Suggestion, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	stops, err := h.uowFactory.Create().ScheduleRepository().ListRoutable(ctx, query.DriverID(), query.Date())
	if err != nil {
		return nil, err
	}
	return h.suggester.Suggest(ctx, services.StopsFromSchedules(stops), query.Params())
}
