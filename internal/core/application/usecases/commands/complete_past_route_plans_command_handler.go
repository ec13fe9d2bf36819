package commands

import (
	"context"
)

// CompletePastRoutePlansCommandHandler retires yesterday's active plans in
// one transaction. Schedules are left as they are.
type CompletePastRoutePlansCommandHandler struct {
	uowFactory UoWFactory
}

func NewCompletePastRoutePlansCommandHandler(uowFactory UoWFactory) CompletePastRoutePlansCommandHandler {
	return CompletePastRoutePlansCommandHandler{uowFactory: uowFactory}
}

// Handle returns how many plans were completed.
func (h *CompletePastRoutePlansCommandHandler) Handle(ctx context.Context, cmd CompletePastRoutePlansCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	plans := uow.RoutePlanRepository()
	past, err := plans.ListActiveBefore(ctx, cmd.Today())
	if err != nil {
		return 0, err
	}
	for _, plan := range past {
		if err = plan.Complete(); err != nil {
			return 0, err
		}
		if err = plans.Update(ctx, plan); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return len(past), nil
}
