// Package slot implements the TimeSlot aggregate: a bookable delivery window
// of one driver on one date with bounded capacity.
//
// Business rules:
//   - 0 <= booked <= capacity at all times
//   - availability is derived from booked, capacity and the blocked flag
//     and is never stored independently
//   - booking a full or blocked slot fails with ErrSlotFull or ErrSlotBlocked
//   - releasing never drives booked below zero
package slot
