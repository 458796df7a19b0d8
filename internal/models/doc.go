// Package models defines the core domain models for billminder.
//
// # Models
//
//   - Bill: a recurring bill tracked until it is paid
//   - Status: where a bill is in its lifecycle (pending, overdue, paid)
//   - Date: a calendar date without a time component
//
// # Lifecycle
//
// A bill is created pending. When its due date passes it becomes overdue
// the next time overdue bills are queried. Paying a bill moves it to paid
// and stamps LastPaidDate. Status only moves forward:
//
//	pending -> overdue -> paid
//	pending -> paid
//
// # Design Principles
//
// 1. **Calendar dates only**: due dates carry no time of day or zone
// 2. **Exact money**: amounts are decimals, never floats
// 3. **Stable wire names**: JSON field names match the on-disk format
package models
