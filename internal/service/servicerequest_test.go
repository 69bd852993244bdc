package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapnest/swapnest-api/internal/domain"
)

func newServiceRequestFixture(offer domain.ServiceOffer, stats ...domain.UserStats) (*ServiceRequestService, *fakeServiceRequestRepo, *fakeStatsRepo, *fakeNotifier) {
	repo := newFakeServiceRequestRepo()
	repo.offers[offer.ID] = offer
	statsRepo := newFakeStatsRepo(stats...)
	notifier := &fakeNotifier{}
	svc := NewServiceRequestService(repo, NewLedgerService(statsRepo), notifier)

	return svc, repo, statsRepo, notifier
}

func tutoringOffer() domain.ServiceOffer {
	return domain.ServiceOffer{
		ID:              "offer-1",
		ProviderID:      "provider",
		Title:           "Guitar lessons",
		TimeCreditValue: 3,
		Active:          true,
	}
}

func TestCreateRequestSnapshotsCreditValue(t *testing.T) {
	svc, repo, _, notifier := newServiceRequestFixture(tutoringOffer())

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)
	assert.Equal(t, 3, request.TimeCreditValue)
	assert.Equal(t, domain.RequestPending, request.Status)

	// Reprice the offer after the request exists; the snapshot must hold.
	offer := repo.offers["offer-1"]
	offer.TimeCreditValue = 5
	repo.offers["offer-1"] = offer

	stored, err := repo.FindByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TimeCreditValue)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "provider", notifier.sent[0].UserID)
	assert.Equal(t, domain.NotifyServiceRequest, notifier.sent[0].Kind)
}

func TestCreateRequestRejectsInactiveOffer(t *testing.T) {
	offer := tutoringOffer()
	offer.Active = false
	svc, _, _, _ := newServiceRequestFixture(offer)

	_, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	assert.ErrorIs(t, err, ErrServiceOfferInactive)
}

func TestCreateRequestRejectsOwnOffer(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer())

	_, err := svc.CreateRequest(context.Background(), "offer-1", "provider")
	assert.ErrorIs(t, err, ErrSelfServiceRequest)
}

func TestRespondOnlyProviderMayRespond(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer())

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), request.ID, "requester", true)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRespondAcceptAndRetry(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer())

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)

	accepted, err := svc.Respond(context.Background(), request.ID, "provider", true)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, accepted.Status)

	retried, err := svc.Respond(context.Background(), request.ID, "provider", true)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, retried.Status)
}

func TestRespondDeclinedIsTerminal(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer())

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), request.ID, "provider", false)
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), request.ID, "provider", true)
	assert.ErrorIs(t, err, ErrRequestClosed)
}

func TestCompleteTransfersLockedInValue(t *testing.T) {
	svc, repo, statsRepo, _ := newServiceRequestFixture(tutoringOffer(),
		domain.UserStats{UserID: "requester", TimeCredits: 10},
		domain.UserStats{UserID: "provider", TimeCredits: 0},
	)

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), request.ID, "provider", true)
	require.NoError(t, err)

	// Reprice after acceptance; completion must still move the snapshot.
	offer := repo.offers["offer-1"]
	offer.TimeCreditValue = 5
	repo.offers["offer-1"] = offer

	completed, err := svc.Complete(context.Background(), request.ID, "provider")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCompleted, completed.Status)

	assert.Equal(t, 7, statsRepo.stats["requester"].TimeCredits)
	assert.Equal(t, 3, statsRepo.stats["provider"].TimeCredits)
}

func TestCompleteRequiresProvider(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer(),
		domain.UserStats{UserID: "requester", TimeCredits: 10},
		domain.UserStats{UserID: "provider"},
	)

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), request.ID, "provider", true)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), request.ID, "requester")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestCompletePendingRequestFails(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer())

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), request.ID, "provider")
	assert.ErrorIs(t, err, ErrNotAcceptedYet)
}

func TestCompleteRollsBackOnInsufficientCredits(t *testing.T) {
	svc, repo, statsRepo, _ := newServiceRequestFixture(tutoringOffer(),
		domain.UserStats{UserID: "requester", TimeCredits: 1},
		domain.UserStats{UserID: "provider", TimeCredits: 0},
	)

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), request.ID, "provider", true)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), request.ID, "provider")
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	// Balances untouched, request back to Accepted and completable later.
	assert.Equal(t, 1, statsRepo.stats["requester"].TimeCredits)
	assert.Equal(t, 0, statsRepo.stats["provider"].TimeCredits)

	stored, err := repo.FindByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, stored.Status)
}

func TestCompleteTwiceFailsSecondTime(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer(),
		domain.UserStats{UserID: "requester", TimeCredits: 10},
		domain.UserStats{UserID: "provider", TimeCredits: 0},
	)

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), request.ID, "provider", true)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), request.ID, "provider")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), request.ID, "provider")
	assert.ErrorIs(t, err, ErrRequestClosed)
}

func TestGetRequestVisibleToPartiesOnly(t *testing.T) {
	svc, _, _, _ := newServiceRequestFixture(tutoringOffer())

	request, err := svc.CreateRequest(context.Background(), "offer-1", "requester")
	require.NoError(t, err)

	_, err = svc.GetRequest(context.Background(), request.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	got, err := svc.GetRequest(context.Background(), request.ID, "requester")
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)
}
