// Package schedule implements the DeliverySchedule aggregate. A schedule
// occupies exactly one booked unit of one slot and carries the position the
// route optimizer assigned to it.
package schedule
