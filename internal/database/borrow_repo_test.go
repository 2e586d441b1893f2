package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// seedStock creates a resource with n stock units and returns the stock ids.
func seedStock(t *testing.T, store *Store, n int) []int64 {
	t.Helper()
	authors := NewAuthorRepo(store)
	resources := NewResourceRepo(store)

	authorID, err := authors.ResolveOrCreate("Iain", "M.", "Banks")
	if err != nil {
		t.Fatalf("resolve author: %v", err)
	}

	var resourceID int64
	for i := 0; i < n; i++ {
		resource, _, err := resources.Intake("Consider Phlebas", authorID, "", "0316005385", "")
		if err != nil {
			t.Fatalf("intake %d: %v", i, err)
		}
		resourceID = resource.ID
	}

	stock, err := resources.ListStock(resourceID)
	if err != nil {
		t.Fatalf("list stock: %v", err)
	}
	ids := make([]int64, 0, len(stock))
	for _, s := range stock {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestCheckoutAndCheckin(t *testing.T) {
	store := tempStore(t)
	members := NewMemberRepo(store)
	borrows := NewBorrowRepo(store)

	member := newMember(t, store, "grace@example.com")
	stockIDs := seedStock(t, store, 1)

	borrowID, err := borrows.Checkout(member.ID, stockIDs[0], 3)
	require.NoError(t, err)
	require.NotZero(t, borrowID)

	got, err := members.GetByID(member.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CheckedOut)
	require.Equal(t, 1, got.TotalBorrowed)

	require.NoError(t, borrows.Checkin(member.ID, stockIDs[0]))

	got, err = members.GetByID(member.ID)
	require.NoError(t, err)
	require.Zero(t, got.CheckedOut)
	require.Equal(t, 1, got.TotalBorrowed)
}

func TestCheckoutLimitEnforced(t *testing.T) {
	store := tempStore(t)
	borrows := NewBorrowRepo(store)

	member := newMember(t, store, "heidi@example.com")
	stockIDs := seedStock(t, store, 4)

	for i := 0; i < 3; i++ {
		_, err := borrows.Checkout(member.ID, stockIDs[i], 3)
		require.NoError(t, err)
	}

	_, err := borrows.Checkout(member.ID, stockIDs[3], 3)
	require.ErrorIs(t, err, ErrCheckoutLimit)

	// Returning one frees a slot
	require.NoError(t, borrows.Checkin(member.ID, stockIDs[0]))

	_, err = borrows.Checkout(member.ID, stockIDs[3], 3)
	require.NoError(t, err)

	open, err := borrows.OpenCount(member.ID)
	require.NoError(t, err)
	require.Equal(t, 3, open)
}

func TestCheckoutRejectsInactiveParties(t *testing.T) {
	store := tempStore(t)
	members := NewMemberRepo(store)
	resources := NewResourceRepo(store)
	borrows := NewBorrowRepo(store)

	member := newMember(t, store, "ivan@example.com")
	stockIDs := seedStock(t, store, 2)

	require.NoError(t, resources.DeactivateStock(stockIDs[0]))
	_, err := borrows.Checkout(member.ID, stockIDs[0], 3)
	require.ErrorIs(t, err, ErrStockInactive)

	require.NoError(t, members.Deactivate(member.ID))
	_, err = borrows.Checkout(member.ID, stockIDs[1], 3)
	require.ErrorIs(t, err, ErrMemberInactive)
}

func TestCheckinWithoutOpenBorrow(t *testing.T) {
	store := tempStore(t)
	borrows := NewBorrowRepo(store)

	member := newMember(t, store, "judy@example.com")
	stockIDs := seedStock(t, store, 1)

	err := borrows.Checkin(member.ID, stockIDs[0])
	require.ErrorIs(t, err, ErrBorrowNotFound)

	err = borrows.Checkin(member.ID, 999)
	require.ErrorIs(t, err, ErrStockNotFound)
}

func TestListForMemberShowsOpenAndClosed(t *testing.T) {
	store := tempStore(t)
	borrows := NewBorrowRepo(store)

	member := newMember(t, store, "kim@example.com")
	stockIDs := seedStock(t, store, 2)

	_, err := borrows.Checkout(member.ID, stockIDs[0], 3)
	require.NoError(t, err)
	_, err = borrows.Checkout(member.ID, stockIDs[1], 3)
	require.NoError(t, err)
	require.NoError(t, borrows.Checkin(member.ID, stockIDs[0]))

	list, err := borrows.ListForMember(member.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var open, closed int
	for _, b := range list {
		if b.Closed {
			closed++
		} else {
			open++
		}
	}
	require.Equal(t, 1, open)
	require.Equal(t, 1, closed)
}
