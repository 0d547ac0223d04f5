package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/myhoard/backend/internal/collection/domain"
	"github.com/myhoard/backend/internal/collection/repository"
	"github.com/myhoard/backend/internal/common/clock"
	commoncrypto "github.com/myhoard/backend/internal/common/crypto"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
	"github.com/myhoard/backend/internal/common/logger"
	"github.com/myhoard/backend/internal/search"
)

// sortableFields is the closed set of fields a client may sort by. Text
// fields resolve to their lowercased shadow columns inside the search
// package, so both spellings are admitted here.
var sortableFields = map[string]bool{
	"name":              true,
	"description":       true,
	"name_lower":        true,
	"description_lower": true,
	"owner":             true,
	"public":            true,
	"created_date":      true,
	"modified_date":     true,
}

type CollectionInput struct {
	Name        string
	Description string
	Public      bool
	Tags        []string
}

type ItemInput struct {
	Name        string
	Description string
	Location    *domain.GeoPoint
}

type CollectionService struct {
	collections repository.CollectionRepository
	items       repository.ItemRepository
	ids         commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewCollectionService(
	collections repository.CollectionRepository,
	items repository.ItemRepository,
	ids commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *CollectionService {
	return &CollectionService{
		collections: collections,
		items:       items,
		ids:         ids,
		clock:       clk,
		log:         log,
	}
}

// ListCollections returns the collections visible to userID, filtered and
// ordered by the request parameters.
func (s *CollectionService) ListCollections(ctx context.Context, userID string, params url.Values) ([]domain.Collection, error) {
	sort, err := buildSort(params)
	if err != nil {
		return nil, err
	}

	query := search.BuildCollectionQuery(params, userID)
	collections, err := s.collections.List(ctx, query, sort)
	if err != nil {
		s.log.Errorf("list collections failed: %v", err)
		return nil, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return collections, nil
}

func (s *CollectionService) CreateCollection(ctx context.Context, userID string, input CollectionInput) (domain.Collection, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return domain.Collection{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	collection := domain.Collection{
		ID:           id,
		Name:         input.Name,
		Description:  input.Description,
		Owner:        userID,
		Public:       input.Public,
		Tags:         input.Tags,
		CreatedDate:  now,
		ModifiedDate: now,
	}

	if err := s.collections.Create(ctx, collection); err != nil {
		s.log.Errorf("create collection failed: %v", err)
		return domain.Collection{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	s.log.Infof("collection created: %s owner=%s", collection.ID, userID)
	return collection, nil
}

// GetCollection resolves id for userID. A malformed id, a missing record and
// a private record owned by someone else all produce the same not found
// error, so responses never confirm that a hidden collection exists.
func (s *CollectionService) GetCollection(ctx context.Context, userID, id string) (domain.Collection, error) {
	collection, err := s.findVisibleCollection(ctx, userID, id)
	if err != nil {
		return domain.Collection{}, err
	}
	return collection, nil
}

func (s *CollectionService) UpdateCollection(ctx context.Context, userID, id string, input CollectionInput) (domain.Collection, error) {
	collection, err := s.findOwnedCollection(ctx, userID, id)
	if err != nil {
		return domain.Collection{}, err
	}

	collection.Name = input.Name
	collection.Description = input.Description
	collection.Public = input.Public
	collection.Tags = input.Tags
	collection.ModifiedDate = s.clock.Now().UTC()

	if err := s.collections.Update(ctx, collection); err != nil {
		if errors.Is(err, repository.ErrCollectionNotFound) {
			return domain.Collection{}, commonerrors.ErrCollectionNotFound
		}
		s.log.Errorf("update collection failed: %v", err)
		return domain.Collection{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	return collection, nil
}

// DeleteCollection removes an owned collection together with its items.
func (s *CollectionService) DeleteCollection(ctx context.Context, userID, id string) error {
	if _, err := s.findOwnedCollection(ctx, userID, id); err != nil {
		return err
	}

	if err := s.collections.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCollectionNotFound) {
			return commonerrors.ErrCollectionNotFound
		}
		s.log.Errorf("delete collection failed: %v", err)
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	s.log.Infof("collection deleted: %s owner=%s", id, userID)
	return nil
}

// ListItems returns items of a collection the caller can see, filtered and
// ordered by the request parameters.
func (s *CollectionService) ListItems(ctx context.Context, userID, collectionID string, params url.Values) ([]domain.Item, error) {
	if _, err := s.findVisibleCollection(ctx, userID, collectionID); err != nil {
		return nil, err
	}

	sort, err := buildSort(params)
	if err != nil {
		return nil, err
	}

	query := search.BuildItemQuery(params, collectionID)
	items, err := s.items.List(ctx, query, sort)
	if err != nil {
		s.log.Errorf("list items failed: %v", err)
		return nil, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return items, nil
}

func (s *CollectionService) CreateItem(ctx context.Context, userID, collectionID string, input ItemInput) (domain.Item, error) {
	if _, err := s.findOwnedCollection(ctx, userID, collectionID); err != nil {
		return domain.Item{}, err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return domain.Item{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	item := domain.Item{
		ID:           id,
		Name:         input.Name,
		Description:  input.Description,
		Location:     input.Location,
		Collection:   collectionID,
		Owner:        userID,
		CreatedDate:  now,
		ModifiedDate: now,
	}

	if err := s.items.Create(ctx, item); err != nil {
		s.log.Errorf("create item failed: %v", err)
		return domain.Item{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	s.log.Infof("item created: %s collection=%s", item.ID, collectionID)
	return item, nil
}

// UpdateItem rewrites an owned item in place. The creation date survives;
// only the modification date moves.
func (s *CollectionService) UpdateItem(ctx context.Context, userID, id string, input ItemInput) (domain.Item, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}
	if item.Owner != userID {
		return domain.Item{}, commonerrors.ErrItemNotFound
	}

	item.Name = input.Name
	item.Description = input.Description
	item.Location = input.Location
	item.ModifiedDate = s.clock.Now().UTC()

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return domain.Item{}, commonerrors.ErrItemNotFound
		}
		s.log.Errorf("update item failed: %v", err)
		return domain.Item{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	return item, nil
}

func (s *CollectionService) GetItem(ctx context.Context, userID, id string) (domain.Item, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	if _, err := s.findVisibleCollection(ctx, userID, item.Collection); err != nil {
		return domain.Item{}, commonerrors.ErrItemNotFound
	}
	return item, nil
}

func (s *CollectionService) DeleteItem(ctx context.Context, userID, id string) error {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return err
	}
	if item.Owner != userID {
		return commonerrors.ErrItemNotFound
	}

	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return commonerrors.ErrItemNotFound
		}
		s.log.Errorf("delete item failed: %v", err)
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	s.log.Infof("item deleted: %s owner=%s", id, userID)
	return nil
}

func (s *CollectionService) findVisibleCollection(ctx context.Context, userID, id string) (domain.Collection, error) {
	if !commoncrypto.IsIdentifierShaped(id) {
		return domain.Collection{}, commonerrors.ErrCollectionNotFound
	}

	collection, err := s.collections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCollectionNotFound) {
			return domain.Collection{}, commonerrors.ErrCollectionNotFound
		}
		s.log.Errorf("find collection failed: %v", err)
		return domain.Collection{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	if !collection.VisibleTo(userID) {
		return domain.Collection{}, commonerrors.ErrCollectionNotFound
	}
	return collection, nil
}

// findOwnedCollection is the write-path lookup. Non-owners get the same not
// found error as missing ids, including for public collections.
func (s *CollectionService) findOwnedCollection(ctx context.Context, userID, id string) (domain.Collection, error) {
	collection, err := s.findVisibleCollection(ctx, userID, id)
	if err != nil {
		return domain.Collection{}, err
	}
	if collection.Owner != userID {
		return domain.Collection{}, commonerrors.ErrCollectionNotFound
	}
	return collection, nil
}

func (s *CollectionService) findItem(ctx context.Context, id string) (domain.Item, error) {
	if !commoncrypto.IsIdentifierShaped(id) {
		return domain.Item{}, commonerrors.ErrItemNotFound
	}

	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return domain.Item{}, commonerrors.ErrItemNotFound
		}
		s.log.Errorf("find item failed: %v", err)
		return domain.Item{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return item, nil
}

func buildSort(params url.Values) ([]search.SortField, error) {
	spec := search.BuildSortSpec(params)
	for _, field := range spec {
		if !sortableFields[field.Field] {
			return nil, commonerrors.ErrValidationFailed.WithDetails(map[string]any{
				"sort_by": "Unsupported sort field",
			})
		}
	}
	return spec, nil
}
