// Package ledger is the application service over accounts, categories and
// subcategories.
//
// Each operation runs in one store transaction: it validates its input,
// reads the ordering group through a reorder.List, lets the Reorderer decide
// how to place the item, and commits. A failure anywhere rolls the whole
// operation back.
//
// Ordering groups:
//   - accounts are grouped by AccountType
//   - categories are grouped by CategoryKind
//   - subcategories are grouped by their parent category ID
package ledger
