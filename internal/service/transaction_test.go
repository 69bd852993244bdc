package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapnest/swapnest-api/internal/domain"
)

func newTransactionFixture(products ...domain.Product) (*TransactionService, *fakeTransactionRepo, *fakeCatalogRepo, *fakeNotifier) {
	catalog := newFakeCatalogRepo(products...)
	repo := newFakeTransactionRepo()
	stats := newFakeStatsRepo(
		domain.UserStats{UserID: "seller", UserName: "Sally Seller"},
		domain.UserStats{UserID: "buyer", UserName: "Bob Buyer"},
	)
	notifier := &fakeNotifier{}
	svc := NewTransactionService(repo, catalog, NewReservationService(catalog), stats, notifier)

	return svc, repo, catalog, notifier
}

func saleProduct() domain.Product {
	return domain.Product{
		ID:      "prod-1",
		OwnerID: "seller",
		Kind:    domain.KindSale,
		Title:   "Bicycle",
		Active:  true,
	}
}

func TestCreatePurchaseRequest(t *testing.T) {
	svc, repo, _, notifier := newTransactionFixture(saleProduct())

	tx, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, domain.TransactionPending, tx.Status)
	assert.Equal(t, "seller", tx.SellerID)
	assert.Equal(t, "Sally Seller", tx.SellerName)
	assert.Equal(t, "buyer", tx.BuyerID)
	assert.Equal(t, "Bob Buyer", tx.BuyerName)
	assert.Equal(t, "Bicycle", tx.ProductTitle)
	assert.Equal(t, domain.KindSale, tx.Kind)

	stored, err := repo.FindByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, stored.Status)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "seller", notifier.sent[0].UserID)
	assert.Equal(t, domain.NotifyOfferReceived, notifier.sent[0].Kind)
}

func TestCreatePurchaseRequestRejectsOwnProduct(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	_, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "seller")
	assert.ErrorIs(t, err, ErrSelfTransaction)
}

func TestCreatePurchaseRequestRejectsUnavailableProduct(t *testing.T) {
	sold := saleProduct()
	sold.Sold = true
	svc, _, _, _ := newTransactionFixture(sold)

	_, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCreatePurchaseRequestRejectsTradeProduct(t *testing.T) {
	trade := saleProduct()
	trade.Kind = domain.KindTrade
	svc, _, _, _ := newTransactionFixture(trade)

	_, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	assert.ErrorIs(t, err, ErrTradeOfferRequired)
}

func TestCreateTradeOffer(t *testing.T) {
	offered := domain.Product{
		ID:      "prod-2",
		OwnerID: "buyer",
		Kind:    domain.KindTrade,
		Title:   "Skateboard",
		Active:  true,
	}
	svc, _, _, _ := newTransactionFixture(saleProduct(), offered)

	tx, err := svc.CreateTradeOffer(context.Background(), "prod-1", "prod-2", "deal?", "buyer")
	require.NoError(t, err)

	assert.Equal(t, domain.KindTrade, tx.Kind)
	assert.Equal(t, "prod-2", tx.OfferedProductID)
	assert.Equal(t, "Skateboard", tx.OfferedProductTitle)
	assert.Equal(t, "deal?", tx.OfferMessage)
}

func TestCreateTradeOfferRequiresOwnership(t *testing.T) {
	offered := domain.Product{
		ID:      "prod-2",
		OwnerID: "someone-else",
		Kind:    domain.KindTrade,
		Active:  true,
	}
	svc, _, _, _ := newTransactionFixture(saleProduct(), offered)

	_, err := svc.CreateTradeOffer(context.Background(), "prod-1", "prod-2", "", "buyer")
	assert.ErrorIs(t, err, ErrNotOfferedProductOwner)
}

func TestRespondAcceptReservesProduct(t *testing.T) {
	svc, repo, catalog, notifier := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	tx, err := svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionAccepted, tx.Status)

	product, err := catalog.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, product.Reserved)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionAccepted, stored.Status)

	// Creation notified the seller, acceptance the buyer.
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "buyer", notifier.sent[1].UserID)
	assert.Equal(t, domain.NotifyOfferAccepted, notifier.sent[1].Kind)
}

func TestRespondRejectLeavesProductFree(t *testing.T) {
	svc, _, catalog, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	tx, err := svc.Respond(context.Background(), created.ID, "seller", false)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionRejected, tx.Status)

	product, err := catalog.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.False(t, product.Reserved)
}

func TestRespondOnlySellerMayRespond(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), created.ID, "buyer", true)
	assert.ErrorIs(t, err, ErrNotTransactionParty)
}

func TestRespondIsIdempotentOnAccepted(t *testing.T) {
	svc, _, _, notifier := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)
	sentAfterFirst := len(notifier.sent)

	// A retried accept must succeed without re-running side effects.
	tx, err := svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionAccepted, tx.Status)
	assert.Len(t, notifier.sent, sentAfterFirst)
}

func TestRespondAcceptLostRaceSeesWinnerState(t *testing.T) {
	svc, repo, catalog, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	// A concurrent accept lands between this caller's read and its guarded
	// write. The loser must observe the winner's Accepted state, not take
	// the reservation a second time.
	repo.beforeTransition = func() {
		stored := repo.transactions[created.ID]
		stored.Status = domain.TransactionAccepted
		repo.transactions[created.ID] = stored
		product := catalog.products["prod-1"]
		product.Reserved = true
		catalog.products["prod-1"] = product
	}

	tx, err := svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionAccepted, tx.Status)
}

func TestRespondOnRejectedTransactionFails(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), created.ID, "seller", false)
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	assert.ErrorIs(t, err, ErrTransactionClosed)
}

func TestRespondAcceptRollsBackOnReservationConflict(t *testing.T) {
	svc, repo, catalog, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	// Another transaction grabbed the product between the status flip and
	// the lock.
	catalog.reserveErr["prod-1"] = ErrAlreadyReserved

	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	assert.ErrorIs(t, err, ErrReservationConflict)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, stored.Status)
}

func TestAcceptTradeReservesBothProducts(t *testing.T) {
	offered := domain.Product{
		ID:      "prod-2",
		OwnerID: "buyer",
		Kind:    domain.KindTrade,
		Active:  true,
	}
	svc, _, catalog, _ := newTransactionFixture(saleProduct(), offered)

	created, err := svc.CreateTradeOffer(context.Background(), "prod-1", "prod-2", "", "buyer")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)

	for _, id := range []string{"prod-1", "prod-2"} {
		product, err := catalog.GetProduct(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, product.Reserved, id)
	}
}

func TestAcceptTradeUnwindsFirstLockWhenSecondFails(t *testing.T) {
	offered := domain.Product{
		ID:       "prod-2",
		OwnerID:  "buyer",
		Kind:     domain.KindTrade,
		Active:   true,
		Reserved: true, // locked by something else already
	}
	svc, repo, catalog, _ := newTransactionFixture(saleProduct(), offered)

	created, err := svc.CreateTradeOffer(context.Background(), "prod-1", "prod-2", "", "buyer")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	assert.ErrorIs(t, err, ErrReservationConflict)

	product, err := catalog.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.False(t, product.Reserved)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, stored.Status)
}

func TestCancelAcceptedReleasesReservation(t *testing.T) {
	svc, repo, catalog, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)

	tx, err := svc.Cancel(context.Background(), created.ID, "buyer")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCancelled, tx.Status)

	product, err := catalog.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.False(t, product.Reserved)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCancelled, stored.Status)
}

func TestCancelRequiresParty(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), created.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotTransactionParty)
}

func TestCancelCompletedTransactionFails(t *testing.T) {
	svc, repo, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)
	_, err = svc.CompleteViaDelivery(context.Background(), created.ID, "buyer")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), created.ID, "buyer")
	assert.ErrorIs(t, err, ErrTransactionClosed)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCompleted, stored.Status)
}

func TestCompleteViaDeliveryIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), created.ID, "seller", true)
	require.NoError(t, err)

	first, err := svc.CompleteViaDelivery(context.Background(), created.ID, "buyer")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCompleted, first.Status)

	second, err := svc.CompleteViaDelivery(context.Background(), created.ID, "buyer")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCompleted, second.Status)
}

func TestCompleteViaDeliveryRequiresAccepted(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	_, err = svc.CompleteViaDelivery(context.Background(), created.ID, "buyer")
	assert.ErrorIs(t, err, ErrTransactionNotAccepted)
}

func TestGetTransactionHiddenFromStrangers(t *testing.T) {
	svc, _, _, _ := newTransactionFixture(saleProduct())

	created, err := svc.CreatePurchaseRequest(context.Background(), "prod-1", "buyer")
	require.NoError(t, err)

	_, err = svc.GetTransaction(context.Background(), created.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotTransactionParty)

	tx, err := svc.GetTransaction(context.Background(), created.ID, "seller")
	require.NoError(t, err)
	assert.Equal(t, created.ID, tx.ID)
}
