package queries

import (
	"context"
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrCompareRoutePlansQueryIsNotConstructed = errors.New(
	"CompareRoutePlansQuery must be created via NewCompareRoutePlansQuery constructor",
)

// CompareRoutePlansQuery reports candidate relative to base.
type CompareRoutePlansQuery struct { //nolint:recvcheck //using for validation
	baseID      kernel.UUID
	candidateID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCompareRoutePlansQuery(baseID, candidateID kernel.UUID) (CompareRoutePlansQuery, error) {
	var baseErr, candidateErr error
	if err := baseID.Validate(); err != nil {
		baseErr = errs.NewValueIsRequiredErrorWithCause("base", err)
	}
	if err := candidateID.Validate(); err != nil {
		candidateErr = errs.NewValueIsRequiredErrorWithCause("candidate", err)
	}
	if err := errors.Join(baseErr, candidateErr); err != nil {
		return CompareRoutePlansQuery{}, err
	}
	return CompareRoutePlansQuery{baseID: baseID, candidateID: candidateID, guard: guard.NewConstructorGuard()}, nil
}

func (q CompareRoutePlansQuery) Validate() error {
	return q.guard.Validate(ErrCompareRoutePlansQueryIsNotConstructed)
}

func (q CompareRoutePlansQuery) BaseID() kernel.UUID      { return q.baseID }
func (q CompareRoutePlansQuery) CandidateID() kernel.UUID { return q.candidateID }

type CompareRoutePlansQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewCompareRoutePlansQueryHandler(uowFactory ports.UnitOfWorkFactory) CompareRoutePlansQueryHandler {
	return CompareRoutePlansQueryHandler{uowFactory: uowFactory}
}

// Handle fails with route.ErrIncomparablePlans when the plans order
// different schedule sets.
func (h CompareRoutePlansQueryHandler) Handle(ctx context.Context, query CompareRoutePlansQuery) (route.Comparison, error) {
	if err := query.Validate(); err != nil {
		return route.Comparison{}, err
	}
	plans := h.uowFactory.Create().RoutePlanRepository()
	base, err := plans.Get(ctx, query.BaseID())
	if err != nil {
		return route.Comparison{}, err
	}
	candidate, err := plans.Get(ctx, query.CandidateID())
	if err != nil {
		return route.Comparison{}, err
	}
	return services.ComparePlans(base, candidate)
}
