package commands

import (
	"context"

	"capacity/internal/core/domain/model/route"
)

// OptimizeRouteCommandHandler joins the per-driver recompute serialization
// and waits for the result. On oracle failure the previous active plan is
// left in place and ports.ErrOracleUnavailable is returned.
type OptimizeRouteCommandHandler struct {
	recomputer RouteRecomputer
}

func NewOptimizeRouteCommandHandler(recomputer RouteRecomputer) OptimizeRouteCommandHandler {
	return OptimizeRouteCommandHandler{recomputer: recomputer}
}

func (h *OptimizeRouteCommandHandler) Handle(ctx context.Context, cmd OptimizeRouteCommand) (*route.RoutePlan, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.recomputer.RunNow(ctx, cmd.DriverID(), cmd.Date(), cmd.Params())
}
