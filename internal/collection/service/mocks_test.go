package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/myhoard/backend/internal/collection/domain"
	"github.com/myhoard/backend/internal/collection/repository"
	"github.com/myhoard/backend/internal/collection/service"
	"github.com/myhoard/backend/internal/common/clock"
	commoncrypto "github.com/myhoard/backend/internal/common/crypto"
	"github.com/myhoard/backend/internal/common/logger"
	"github.com/myhoard/backend/internal/search"
)

type mockCollectionRepo struct {
	createFunc   func(ctx context.Context, collection domain.Collection) error
	updateFunc   func(ctx context.Context, collection domain.Collection) error
	findByIDFunc func(ctx context.Context, id string) (domain.Collection, error)
	listFunc     func(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Collection, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockCollectionRepo) Create(ctx context.Context, collection domain.Collection) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, collection)
	}
	return nil
}

func (m *mockCollectionRepo) Update(ctx context.Context, collection domain.Collection) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, collection)
	}
	return nil
}

func (m *mockCollectionRepo) FindByID(ctx context.Context, id string) (domain.Collection, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Collection{}, repository.ErrCollectionNotFound
}

func (m *mockCollectionRepo) List(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Collection, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, query, sort)
	}
	return nil, nil
}

func (m *mockCollectionRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockItemRepo struct {
	createFunc   func(ctx context.Context, item domain.Item) error
	updateFunc   func(ctx context.Context, item domain.Item) error
	findByIDFunc func(ctx context.Context, id string) (domain.Item, error)
	listFunc     func(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Item, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.Item) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) Update(ctx context.Context, item domain.Item) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) FindByID(ctx context.Context, id string) (domain.Item, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Item{}, repository.ErrItemNotFound
}

func (m *mockItemRepo) List(ctx context.Context, query search.Predicate, sort []search.SortField) ([]domain.Item, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, query, sort)
	}
	return nil, nil
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func setupCollectionService(t *testing.T) (*service.CollectionService, *mockCollectionRepo, *mockItemRepo, *clock.MockClock) {
	t.Helper()

	collections := &mockCollectionRepo{}
	items := &mockItemRepo{}
	clk := clock.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	svc := service.NewCollectionService(collections, items, commoncrypto.NewUUIDGenerator(), clk, log)
	return svc, collections, items, clk
}
