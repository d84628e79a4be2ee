// Package workflow holds the approval rules for room bookings and student
// leaves: the authorization predicates, the transition tables and the clash
// predicate. It is pure; persistence and locking live in the repositories.
//
// Booking graph:
//
//	student:  PENDING_COORDINATOR ──approve──► PENDING_HOD ──approve──► APPROVED
//	teacher:                                   PENDING_HOD
//	          PENDING_COORDINATOR ──reject───► REJECTED ◄──reject── PENDING_HOD
//
// Leave graph:
//
//	PENDING ──approve──► APPROVED
//	PENDING ──reject───► REJECTED
//
// APPROVED and REJECTED are terminal in both graphs.
package workflow
