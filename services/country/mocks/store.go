package mocks

import (
	"context"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of country.Store
type Store struct {
	mock.Mock
}

func (m *Store) Upsert(ctx context.Context, rec country.Country) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *Store) Insert(ctx context.Context, rec country.Country) (*country.Country, error) {
	args := m.Called(ctx, rec)
	if c, ok := args.Get(0).(*country.Country); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) List(ctx context.Context, filter country.Filter, sort country.SortKey) ([]country.Country, error) {
	args := m.Called(ctx, filter, sort)
	if list, ok := args.Get(0).([]country.Country); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) GetByName(ctx context.Context, name string) (*country.Country, error) {
	args := m.Called(ctx, name)
	if c, ok := args.Get(0).(*country.Country); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) DeleteByName(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *Store) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) MostRecentRefresh(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if ts, ok := args.Get(0).(*time.Time); ok {
		return ts, args.Error(1)
	}
	return nil, args.Error(1)
}
