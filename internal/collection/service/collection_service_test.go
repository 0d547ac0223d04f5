package service_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/myhoard/backend/internal/collection/domain"
	"github.com/myhoard/backend/internal/collection/service"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
	"github.com/myhoard/backend/internal/search"
)

func ownedCollection(owner string, public bool) domain.Collection {
	return domain.Collection{
		ID:     uuid.NewString(),
		Name:   "rocks",
		Owner:  owner,
		Public: public,
	}
}

func TestCollectionService_ListCollections_PassesBuiltQuery(t *testing.T) {
	svc, collections, _, _ := setupCollectionService(t)

	var gotQuery search.Predicate
	var gotSort []search.SortField
	collections.listFunc = func(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Collection, error) {
		gotQuery = query
		gotSort = sort
		return []domain.Collection{ownedCollection("user-1", false)}, nil
	}

	params := url.Values{}
	params.Add("sort_by", "name")
	result, err := svc.ListCollections(context.Background(), "user-1", params)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(result))
	}

	and, ok := gotQuery.(search.And)
	if !ok || len(and.Preds) == 0 {
		t.Fatalf("expected an And query, got %T", gotQuery)
	}
	if _, ok := and.Preds[0].(search.Or); !ok {
		t.Error("expected the visibility clause to lead the query")
	}
	if len(gotSort) != 1 || gotSort[0].Field != "name_lower" {
		t.Errorf("expected name_lower sort, got %+v", gotSort)
	}
}

func TestCollectionService_ListCollections_UnsupportedSortField(t *testing.T) {
	svc, _, _, _ := setupCollectionService(t)

	params := url.Values{}
	params.Add("sort_by", "password_hash")
	_, err := svc.ListCollections(context.Background(), "user-1", params)
	if !errors.Is(err, commonerrors.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestCollectionService_CreateCollection_StampsOwnershipAndDates(t *testing.T) {
	svc, collections, _, clk := setupCollectionService(t)

	var created domain.Collection
	collections.createFunc = func(ctx context.Context, collection domain.Collection) error {
		created = collection
		return nil
	}

	collection, err := svc.CreateCollection(context.Background(), "user-1", service.CollectionInput{
		Name:   "rocks",
		Public: true,
		Tags:   []string{"geology"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if collection.ID == "" {
		t.Error("expected generated id")
	}
	if collection.Owner != "user-1" {
		t.Errorf("expected owner user-1, got %s", collection.Owner)
	}
	if !collection.CreatedDate.Equal(clk.Now().UTC()) || !collection.ModifiedDate.Equal(clk.Now().UTC()) {
		t.Error("expected both dates to be stamped with the current time")
	}
	if created.ID != collection.ID {
		t.Error("expected the returned collection to match the stored one")
	}
}

func TestCollectionService_GetCollection_MalformedIDSkipsStore(t *testing.T) {
	svc, collections, _, _ := setupCollectionService(t)

	called := false
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		called = true
		return domain.Collection{}, nil
	}

	_, err := svc.GetCollection(context.Background(), "user-1", "not-a-uuid")
	if !errors.Is(err, commonerrors.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if called {
		t.Error("expected malformed id to be rejected before the store lookup")
	}
}

func TestCollectionService_GetCollection_HidesForeignPrivate(t *testing.T) {
	svc, collections, _, _ := setupCollectionService(t)

	private := ownedCollection("someone-else", false)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return private, nil
	}

	_, err := svc.GetCollection(context.Background(), "user-1", private.ID)
	if !errors.Is(err, commonerrors.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestCollectionService_GetCollection_ForeignPublicIsVisible(t *testing.T) {
	svc, collections, _, _ := setupCollectionService(t)

	public := ownedCollection("someone-else", true)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return public, nil
	}

	got, err := svc.GetCollection(context.Background(), "user-1", public.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != public.ID {
		t.Errorf("expected collection %s, got %s", public.ID, got.ID)
	}
}

func TestCollectionService_UpdateCollection_PublicButForeignIsHidden(t *testing.T) {
	svc, collections, _, _ := setupCollectionService(t)

	public := ownedCollection("someone-else", true)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return public, nil
	}

	updated := false
	collections.updateFunc = func(ctx context.Context, collection domain.Collection) error {
		updated = true
		return nil
	}

	_, err := svc.UpdateCollection(context.Background(), "user-1", public.ID, service.CollectionInput{Name: "stolen"})
	if !errors.Is(err, commonerrors.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if updated {
		t.Error("expected no write for a foreign collection")
	}
}

func TestCollectionService_UpdateCollection_BumpsModifiedDate(t *testing.T) {
	svc, collections, _, clk := setupCollectionService(t)

	owned := ownedCollection("user-1", false)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return owned, nil
	}

	clk.Advance(time.Hour)

	updated, err := svc.UpdateCollection(context.Background(), "user-1", owned.ID, service.CollectionInput{
		Name: "rocks v2",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "rocks v2" {
		t.Errorf("expected updated name, got %s", updated.Name)
	}
	if !updated.ModifiedDate.Equal(clk.Now().UTC()) {
		t.Error("expected modified date to advance")
	}
}

func TestCollectionService_DeleteCollection_OwnerOnly(t *testing.T) {
	svc, collections, _, _ := setupCollectionService(t)

	owned := ownedCollection("user-1", false)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return owned, nil
	}

	deleted := ""
	collections.deleteFunc = func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}

	if err := svc.DeleteCollection(context.Background(), "user-1", owned.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != owned.ID {
		t.Errorf("expected delete of %s, got %s", owned.ID, deleted)
	}

	if err := svc.DeleteCollection(context.Background(), "intruder", owned.ID); !errors.Is(err, commonerrors.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound for a non-owner, got %v", err)
	}
}

func TestCollectionService_ListItems_HiddenCollection(t *testing.T) {
	svc, collections, items, _ := setupCollectionService(t)

	private := ownedCollection("someone-else", false)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return private, nil
	}

	listed := false
	items.listFunc = func(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Item, error) {
		listed = true
		return nil, nil
	}

	_, err := svc.ListItems(context.Background(), "user-1", private.ID, url.Values{})
	if !errors.Is(err, commonerrors.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if listed {
		t.Error("expected no item listing for a hidden collection")
	}
}

func TestCollectionService_ListItems_ScopesQueryToCollection(t *testing.T) {
	svc, collections, items, _ := setupCollectionService(t)

	public := ownedCollection("someone-else", true)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return public, nil
	}

	var gotQuery search.Predicate
	items.listFunc = func(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Item, error) {
		gotQuery = query
		return []domain.Item{}, nil
	}

	if _, err := svc.ListItems(context.Background(), "user-1", public.ID, url.Values{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	and, ok := gotQuery.(search.And)
	if !ok || len(and.Preds) == 0 {
		t.Fatalf("expected an And query, got %T", gotQuery)
	}
	if match, ok := and.Preds[0].(search.FieldMatch); !ok || match.Field != "collection" || match.Value != public.ID {
		t.Errorf("expected the collection scope clause, got %+v", and.Preds[0])
	}
}

func TestCollectionService_CreateItem_RequiresOwnership(t *testing.T) {
	svc, collections, items, clk := setupCollectionService(t)

	owned := ownedCollection("user-1", false)
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return owned, nil
	}

	var created domain.Item
	items.createFunc = func(ctx context.Context, item domain.Item) error {
		created = item
		return nil
	}

	item, err := svc.CreateItem(context.Background(), "user-1", owned.ID, service.ItemInput{
		Name:     "granite",
		Location: &domain.GeoPoint{Lat: 60.17, Lng: 24.94},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Collection != owned.ID || item.Owner != "user-1" {
		t.Errorf("unexpected item scope: %+v", item)
	}
	if item.Location == nil || item.Location.Lat != 60.17 {
		t.Errorf("expected location to be kept, got %+v", item.Location)
	}
	if !item.CreatedDate.Equal(clk.Now().UTC()) {
		t.Error("expected created date stamp")
	}
	if created.ID != item.ID {
		t.Error("expected the stored item to match the returned one")
	}

	if _, err := svc.CreateItem(context.Background(), "intruder", owned.ID, service.ItemInput{Name: "granite"}); !errors.Is(err, commonerrors.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound for a non-owner, got %v", err)
	}
}

func TestCollectionService_UpdateItem_PreservesCreatedDate(t *testing.T) {
	svc, _, items, clk := setupCollectionService(t)

	createdAt := clk.Now().UTC().Add(-24 * time.Hour)
	item := domain.Item{
		ID:           uuid.NewString(),
		Name:         "granite",
		Owner:        "user-1",
		Collection:   uuid.NewString(),
		CreatedDate:  createdAt,
		ModifiedDate: createdAt,
	}
	items.findByIDFunc = func(ctx context.Context, id string) (domain.Item, error) {
		return item, nil
	}

	var stored domain.Item
	items.updateFunc = func(ctx context.Context, updated domain.Item) error {
		stored = updated
		return nil
	}

	clk.Advance(time.Hour)

	updated, err := svc.UpdateItem(context.Background(), "user-1", item.ID, service.ItemInput{
		Name:     "granite v2",
		Location: &domain.GeoPoint{Lat: 60.17, Lng: 24.94},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Name != "granite v2" {
		t.Errorf("expected updated name, got %s", updated.Name)
	}
	if !updated.CreatedDate.Equal(createdAt) {
		t.Error("expected creation date to survive the update")
	}
	if !updated.ModifiedDate.Equal(clk.Now().UTC()) {
		t.Error("expected modified date to advance")
	}
	if updated.Location == nil || updated.Location.Lat != 60.17 {
		t.Errorf("expected location to be replaced, got %+v", updated.Location)
	}
	if stored.ID != item.ID {
		t.Error("expected the stored item to keep its identity")
	}
}

func TestCollectionService_UpdateItem_OwnerOnly(t *testing.T) {
	svc, _, items, _ := setupCollectionService(t)

	item := domain.Item{ID: uuid.NewString(), Owner: "user-1", Collection: uuid.NewString()}
	items.findByIDFunc = func(ctx context.Context, id string) (domain.Item, error) {
		return item, nil
	}

	updated := false
	items.updateFunc = func(ctx context.Context, updatedItem domain.Item) error {
		updated = true
		return nil
	}

	_, err := svc.UpdateItem(context.Background(), "intruder", item.ID, service.ItemInput{Name: "stolen"})
	if !errors.Is(err, commonerrors.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for a non-owner, got %v", err)
	}
	if updated {
		t.Error("expected no write for a foreign item")
	}
}

func TestCollectionService_GetItem_HiddenViaPrivateCollection(t *testing.T) {
	svc, collections, items, _ := setupCollectionService(t)

	private := ownedCollection("someone-else", false)
	item := domain.Item{ID: uuid.NewString(), Collection: private.ID, Owner: "someone-else"}

	items.findByIDFunc = func(ctx context.Context, id string) (domain.Item, error) {
		return item, nil
	}
	collections.findByIDFunc = func(ctx context.Context, id string) (domain.Collection, error) {
		return private, nil
	}

	_, err := svc.GetItem(context.Background(), "user-1", item.ID)
	if !errors.Is(err, commonerrors.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCollectionService_DeleteItem_OwnerOnly(t *testing.T) {
	svc, _, items, _ := setupCollectionService(t)

	item := domain.Item{ID: uuid.NewString(), Collection: uuid.NewString(), Owner: "user-1"}
	items.findByIDFunc = func(ctx context.Context, id string) (domain.Item, error) {
		return item, nil
	}

	deleted := ""
	items.deleteFunc = func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}

	if err := svc.DeleteItem(context.Background(), "user-1", item.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != item.ID {
		t.Errorf("expected delete of %s, got %s", item.ID, deleted)
	}

	if err := svc.DeleteItem(context.Background(), "intruder", item.ID); !errors.Is(err, commonerrors.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for a non-owner, got %v", err)
	}
}
