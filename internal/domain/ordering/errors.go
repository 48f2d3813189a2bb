package ordering

import "github.com/cms/backend/internal/domain/shared"

// Error codes raised by the ordering model.
const (
	CodeInvalidScope      = "ORDER_SCOPE_INVALID"
	CodeEmptyList         = "ORDER_LIST_EMPTY"
	CodeEntryNotFound     = "ORDER_ENTRY_NOT_FOUND"
	CodeAtBoundary        = "ORDER_AT_BOUNDARY"
	CodeIndexOutOfRange   = "ORDER_INDEX_OUT_OF_RANGE"
	CodeNoChange          = "ORDER_NO_CHANGE"
	CodeEmptyBatch        = "ORDER_BATCH_EMPTY"
	CodeBatchTooLarge     = "ORDER_BATCH_TOO_LARGE"
	CodeInvalidBatch      = "ORDER_BATCH_INVALID"
	CodeSortOrderConflict = "SORT_ORDER_CONFLICT"
	CodeReorderInProgress = "REORDER_IN_PROGRESS"
	CodeVersionMismatch   = "ORDER_VERSION_MISMATCH"
	CodeScopeFull         = "ORDER_SCOPE_FULL"
)

var (
	ErrEmptyList         = shared.NewDomainError(CodeEmptyList, "Scope has no entries to reorder")
	ErrEntryNotFound     = shared.NewDomainError(CodeEntryNotFound, "Entry does not belong to the scope")
	ErrAtBoundary        = shared.NewDomainError(CodeAtBoundary, "Entry cannot move further in that direction")
	ErrIndexOutOfRange   = shared.NewDomainError(CodeIndexOutOfRange, "Target index is outside the list")
	ErrNoChange          = shared.NewDomainError(CodeNoChange, "Move does not change the order")
	ErrEmptyBatch        = shared.NewDomainError(CodeEmptyBatch, "Order batch must contain at least one update")
	ErrBatchTooLarge     = shared.NewDomainError(CodeBatchTooLarge, "Order batch exceeds the maximum size")
	ErrInvalidBatch      = shared.NewDomainError(CodeInvalidBatch, "Order batch is malformed")
	ErrSortOrderConflict = shared.NewDomainError(CodeSortOrderConflict, "Resulting order would duplicate a sort order")
	ErrReorderInProgress = shared.NewDomainError(CodeReorderInProgress, "Another reorder of this scope is in progress")
	ErrVersionMismatch   = shared.NewDomainError(CodeVersionMismatch, "Scope was reordered since it was loaded")
	ErrScopeFull         = shared.NewDomainError(CodeScopeFull, "Scope has no sort order left to append at")
)
