// Package store provides SQLite-backed storage for accounts, categories and
// subcategories.
//
// Every write goes through InTx, which scopes a Tx to one SQLite transaction.
// Inside it, Tx.List returns the reorder.List view of one kind, so a policy's
// neighbour reads and its final write see the same snapshot and commit or
// roll back together.
//
// # Ordering
//
//   - Display order within a group is ORDER BY position DESC, id ASC
//   - Archived rows are invisible to List; they keep their last position
//   - The group column is account_type, kind or category_id depending on
//     the table
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Subcategories must reference an existing category
package store
