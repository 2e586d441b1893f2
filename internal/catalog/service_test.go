package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"library-backend/internal/database"
	"library-backend/internal/models"
)

func tempService(t *testing.T) (*Service, *database.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := database.Open(database.Config{Path: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store), store
}

func addDune(t *testing.T, svc *Service) *models.Resource {
	t.Helper()
	resource, err := svc.AddResourceToInventory(models.AddResourceRequest{
		Title:       "Dune",
		AuthorFirst: "Frank",
		AuthorLast:  "Herbert",
		ISBN10:      "0441013597",
	})
	if err != nil {
		t.Fatalf("add resource: %v", err)
	}
	return resource
}

func TestAddResourceDeduplicatesByISBN(t *testing.T) {
	svc, _ := tempService(t)

	first := addDune(t, svc)
	require.Equal(t, "Frank Herbert", first.AuthorName)

	second := addDune(t, svc)
	require.Equal(t, first.ID, second.ID)

	stock, err := svc.ListStock(first.ID)
	require.NoError(t, err)
	require.Len(t, stock, 2)
}

func TestSearchWithoutCriteriaReturnsNothing(t *testing.T) {
	svc, _ := tempService(t)
	addDune(t, svc)

	found, err := svc.SearchResources(models.SearchQuery{})
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestSearchByAuthor(t *testing.T) {
	svc, _ := tempService(t)
	addDune(t, svc)

	found, err := svc.SearchResources(models.SearchQuery{Author: "Herb"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Dune", found[0].Title)

	// Unknown author short-circuits to an empty result
	found, err = svc.SearchResources(models.SearchQuery{Author: "Asimov"})
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestCheckoutLimitFromSettings(t *testing.T) {
	svc, store := tempService(t)

	settings := database.NewSettingsRepo(store)
	require.NoError(t, settings.Set(database.SettingCheckoutLimit, "1"))

	member := &models.Member{Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, database.NewMemberRepo(store).Create(member))

	resource := addDune(t, svc)
	addDune(t, svc)
	stock, err := svc.ListStock(resource.ID)
	require.NoError(t, err)
	require.Len(t, stock, 2)

	_, err = svc.Checkout(member.ID, stock[0].ID)
	require.NoError(t, err)

	_, err = svc.Checkout(member.ID, stock[1].ID)
	require.ErrorIs(t, err, database.ErrCheckoutLimit)

	require.NoError(t, svc.Checkin(member.ID, stock[0].ID))

	_, err = svc.Checkout(member.ID, stock[1].ID)
	require.NoError(t, err)

	borrows, err := svc.ListBorrows(member.ID)
	require.NoError(t, err)
	require.Len(t, borrows, 2)
}
