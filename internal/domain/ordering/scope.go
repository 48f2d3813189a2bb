package ordering

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cms/backend/internal/domain/shared"
)

const scopeSeparator = ":"

var (
	collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)
	scopeKeyPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
)

// Scope is the boundary within which sort orders are unique. Collection names
// the table family, Key narrows it for keyed collections such as
// product_pages:{key}.
type Scope struct {
	Collection string
	Key        string
}

// NewScope validates and builds a scope.
func NewScope(collection, key string) (Scope, error) {
	if !collectionPattern.MatchString(collection) {
		return Scope{}, shared.NewDomainError(CodeInvalidScope, fmt.Sprintf("invalid collection %q", collection))
	}
	if key != "" && !scopeKeyPattern.MatchString(key) {
		return Scope{}, shared.NewDomainError(CodeInvalidScope, fmt.Sprintf("invalid scope key %q", key))
	}
	return Scope{Collection: collection, Key: key}, nil
}

// ParseScope reads the persisted form produced by String.
func ParseScope(raw string) (Scope, error) {
	collection, key, _ := strings.Cut(raw, scopeSeparator)
	return NewScope(collection, key)
}

// String is the value stored in the scope column.
func (s Scope) String() string {
	if s.Key == "" {
		return s.Collection
	}
	return s.Collection + scopeSeparator + s.Key
}

// IsZero reports whether the scope is unset.
func (s Scope) IsZero() bool {
	return s.Collection == ""
}
