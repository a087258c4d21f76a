// Package models defines the core domain models for Roommates.
//
// # Entities
//
//   - Household: a group of users sharing chores and bills
//   - User: a registered account, optionally a member of one household
//   - Task: a recurring chore with an assignment rotation
//   - CompletedTask: append-only history of finished chores
//   - Bill: a recurring shared expense managed by one user
//   - BillCycle: one participant's share of a bill for one activation period
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships (current assignee, rotation, participants,
// manager) are user ID strings. Users are never owned by a Task or Bill.
// 2. **Dates are calendar dates**: due dates and completion dates are midnight UTC
// values produced by DateOf; time of day carries no meaning.
// 3. **Money is decimal**: every currency amount is a decimal.Decimal with two
// fractional digits. Binary floating point never touches a balance.
// 4. **Derived over stored**: a bill's split count is computed from its participants.
package models
