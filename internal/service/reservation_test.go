package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapnest/swapnest-api/internal/domain"
)

func TestReserveIsExclusive(t *testing.T) {
	catalog := newFakeCatalogRepo(domain.Product{ID: "p1", Active: true})
	svc := NewReservationService(catalog)

	require.NoError(t, svc.Reserve(context.Background(), "p1"))

	err := svc.Reserve(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrAlreadyReserved)
}

func TestReleaseUnreservedProduct(t *testing.T) {
	catalog := newFakeCatalogRepo(domain.Product{ID: "p1", Active: true})
	svc := NewReservationService(catalog)

	err := svc.Release(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestReservePairUnwindsOnSecondFailure(t *testing.T) {
	catalog := newFakeCatalogRepo(
		domain.Product{ID: "p1", Active: true},
		domain.Product{ID: "p2", Active: true, Reserved: true},
	)
	svc := NewReservationService(catalog)

	err := svc.ReservePair(context.Background(), "p1", "p2")
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	first, err := catalog.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, first.Reserved)
}

func TestFinalizeSaleTransfersOwnership(t *testing.T) {
	catalog := newFakeCatalogRepo(domain.Product{ID: "p1", OwnerID: "seller", Active: true, Reserved: true})
	svc := NewReservationService(catalog)

	require.NoError(t, svc.FinalizeSale(context.Background(), "p1", "buyer"))

	product, err := catalog.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, product.Sold)
	assert.False(t, product.Reserved)
	assert.Equal(t, "buyer", product.OwnerID)
}
