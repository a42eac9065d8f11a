package core

// query.go implements the read side of the Store: order filtering and user
// sorting. Queries never modify the stored snapshot; every result is built
// from copies.

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// ErrInvalidDateRange is returned by OrderFilter.Validate when the end date
// precedes the start date.
var ErrInvalidDateRange = errors.New("invalid date range: end date before start date")

// OrderFilter selects orders. Nil fields are not applied; all present fields
// must match.
type OrderFilter struct {
	OrderID *int64
	Start   *civil.Date // inclusive
	End     *civil.Date // inclusive
}

// Validate reports filters that can never match because the range is
// reversed. The Store does not call it; reversed bounds simply match nothing.
func (f OrderFilter) Validate() error {
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return ErrInvalidDateRange
	}
	return nil
}

func (f OrderFilter) matches(o Order) bool {
	if f.OrderID != nil && o.ID != *f.OrderID {
		return false
	}
	if f.Start != nil && o.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && o.Date.After(*f.End) {
		return false
	}
	return true
}

// Query returns, for every user, only the orders matching f. Users left with
// no matching orders are omitted. User order is preserved.
func (s *Store) Query(f OrderFilter) []User {
	result := []User{}
	for _, u := range s.current() {
		var orders []Order
		for _, o := range u.Orders {
			if f.matches(o) {
				orders = append(orders, o.clone())
			}
		}
		if len(orders) == 0 {
			continue
		}
		result = append(result, User{ID: u.ID, Name: u.Name, Orders: orders})
	}
	return result
}

// Sort keys and directions accepted by SortedUsers.
const (
	SortByID   = "id"
	SortByName = "name"
	SortAsc    = "asc"
	SortDesc   = "desc"
)

// SortSpec is a normalized sort request.
type SortSpec struct {
	Key string // "id" or "name"
	Dir string // "asc" or "desc"
}

// NewSortSpec normalizes a key and direction. Matching is case-insensitive;
// an unknown key falls back to "id" and an unknown direction to "asc".
func NewSortSpec(key, dir string) SortSpec {
	spec := SortSpec{Key: SortByID, Dir: SortAsc}
	if strings.EqualFold(strings.TrimSpace(key), SortByName) {
		spec.Key = SortByName
	}
	if strings.EqualFold(strings.TrimSpace(dir), SortDesc) {
		spec.Dir = SortDesc
	}
	return spec
}

// SortedUsers returns a sorted copy of the snapshot.
func (s *Store) SortedUsers(key, dir string) []User {
	spec := NewSortSpec(key, dir)
	users := cloneUsers(s.current())

	compare := func(a, b User) int { return cmp.Compare(a.ID, b.ID) }
	if spec.Key == SortByName {
		compare = func(a, b User) int { return strings.Compare(a.Name, b.Name) }
	}
	if spec.Dir == SortDesc {
		asc := compare
		compare = func(a, b User) int { return asc(b, a) }
	}

	slices.SortStableFunc(users, compare)
	return users
}
