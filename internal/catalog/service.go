package catalog

import (
	"library-backend/internal/database"
	"library-backend/internal/models"
)

// defaultCheckoutLimit applies when the settings table is unreadable.
const defaultCheckoutLimit = 3

// Service handles catalog normalization, search, and lending
type Service struct {
	authors   *database.AuthorRepo
	resources *database.ResourceRepo
	borrows   *database.BorrowRepo
	settings  *database.SettingsRepo
}

// NewService creates a new catalog service over the given store
func NewService(store *database.Store) *Service {
	return &Service{
		authors:   database.NewAuthorRepo(store),
		resources: database.NewResourceRepo(store),
		borrows:   database.NewBorrowRepo(store),
		settings:  database.NewSettingsRepo(store),
	}
}

// ResolveOrCreateAuthor maps a name triple to exactly one author id
func (s *Service) ResolveOrCreateAuthor(first, middle, last string) (int64, error) {
	return s.authors.ResolveOrCreate(first, middle, last)
}

// AddResourceToInventory takes in one physical copy. The author is
// resolved first; an existing resource with either ISBN gains a stock
// unit, otherwise a new resource row is created along with its first
// stock unit. The returned resource carries the catalog identity the
// copy was filed under.
func (s *Service) AddResourceToInventory(req models.AddResourceRequest) (*models.Resource, error) {
	authorID, err := s.authors.ResolveOrCreate(req.AuthorFirst, req.AuthorMiddle, req.AuthorLast)
	if err != nil {
		return nil, err
	}

	resource, _, err := s.resources.Intake(req.Title, authorID, req.Edition, req.ISBN10, req.ISBN13)
	if err != nil {
		return nil, err
	}

	author, err := s.authors.GetByID(resource.AuthorID)
	if err != nil {
		return nil, err
	}
	resource.AuthorName = author.DisplayName()

	return resource, nil
}

// SearchResources answers a conjunctive search over the optional
// criteria. No criteria at all yields an empty result, deliberately not
// the whole catalog. The author criterion matches by last-name substring
// and is pre-resolved to candidate author ids; no candidates means no
// results regardless of the other criteria.
func (s *Service) SearchResources(q models.SearchQuery) ([]*models.Resource, error) {
	if q.IsEmpty() {
		return []*models.Resource{}, nil
	}

	var authorIDs []int64
	if q.Author != "" {
		ids, err := s.authors.IDsByLastName(q.Author)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []*models.Resource{}, nil
		}
		authorIDs = ids
	}

	resources, err := s.resources.Search(q, authorIDs)
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []*models.Resource{}
	}
	return resources, nil
}

// GetResource retrieves a resource by id
func (s *Service) GetResource(id int64) (*models.Resource, error) {
	return s.resources.GetByID(id)
}

// DeactivateResource soft-deletes a catalog entry
func (s *Service) DeactivateResource(id int64) error {
	return s.resources.Deactivate(id)
}

// ListStock returns the stock units filed under a resource
func (s *Service) ListStock(resourceID int64) ([]*models.Stock, error) {
	return s.resources.ListStock(resourceID)
}

// Checkout opens a loan of one stock unit to a member, subject to the
// configured per-member limit and both parties being active.
func (s *Service) Checkout(memberID, stockID int64) (int64, error) {
	return s.borrows.Checkout(memberID, stockID, s.checkoutLimit())
}

// Checkin closes the member's open loan of the given stock unit
func (s *Service) Checkin(memberID, stockID int64) error {
	return s.borrows.Checkin(memberID, stockID)
}

// ListBorrows returns a member's borrows, open loans first
func (s *Service) ListBorrows(memberID int64) ([]*models.Borrow, error) {
	return s.borrows.ListForMember(memberID)
}

func (s *Service) checkoutLimit() int {
	limit, err := s.settings.GetInt(database.SettingCheckoutLimit)
	if err != nil || limit <= 0 {
		return defaultCheckoutLimit
	}
	return limit
}
