package queries

import (
	"context"
	"iter"

	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
)

// QueryAvailabilityQueryHandler streams slot snapshots straight from the
// store cursor. Nothing is buffered beyond the current row.
type QueryAvailabilityQueryHandler struct {
	reader ports.SlotReader
}

func NewQueryAvailabilityQueryHandler(reader ports.SlotReader) QueryAvailabilityQueryHandler {
	return QueryAvailabilityQueryHandler{reader: reader}
}

// Handle validates the query eagerly; storage errors arrive through the sequence.
func (h QueryAvailabilityQueryHandler) Handle(
	ctx context.Context,
	query QueryAvailabilityQuery,
) (iter.Seq2[slot.Snapshot, error], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.reader.StreamAvailability(ctx, ports.AvailabilityFilter{
		DriverID:       query.DriverID(),
		Dates:          query.Dates(),
		Availabilities: query.Availabilities(),
	}), nil
}
