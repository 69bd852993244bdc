package service

import (
	"context"
	"errors"
	"time"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository"
)

// In-memory fakes standing in for the repository layer. Conditional writes
// behave like their SQL counterparts: a guard that does not hold returns the
// repository sentinel instead of writing.

type fakeCatalogRepo struct {
	products    map[string]domain.Product
	reserveErr  map[string]error
	releaseErr  map[string]error
	finalizeErr map[string]error
	donationID  string
}

func newFakeCatalogRepo(products ...domain.Product) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{
		products:    make(map[string]domain.Product),
		reserveErr:  make(map[string]error),
		releaseErr:  make(map[string]error),
		finalizeErr: make(map[string]error),
	}
	for _, p := range products {
		repo.products[p.ID] = p
	}

	return repo
}

func (r *fakeCatalogRepo) GetProduct(_ context.Context, id string) (domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}

	return product, nil
}

func (r *fakeCatalogRepo) Reserve(_ context.Context, id string) error {
	if err := r.reserveErr[id]; err != nil {
		return err
	}

	product, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if product.Reserved || product.Sold {
		return repository.ErrAlreadyReserved
	}

	product.Reserved = true
	r.products[id] = product

	return nil
}

func (r *fakeCatalogRepo) Release(_ context.Context, id string) error {
	if err := r.releaseErr[id]; err != nil {
		return err
	}

	product, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if !product.Reserved {
		return repository.ErrNotReserved
	}

	product.Reserved = false
	r.products[id] = product

	return nil
}

func (r *fakeCatalogRepo) FinalizeSale(_ context.Context, id, newOwnerID string) error {
	if err := r.finalizeErr[id]; err != nil {
		return err
	}

	product, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}

	product.Sold = true
	product.Reserved = false
	if newOwnerID != "" {
		product.OwnerID = newOwnerID
	}
	r.products[id] = product

	return nil
}

func (r *fakeCatalogRepo) FindRandomEligibleDonation(_ context.Context, excludeOwnerID string) (domain.Product, error) {
	if r.donationID != "" {
		if product, ok := r.products[r.donationID]; ok {
			return product, nil
		}
	}
	for _, product := range r.products {
		if product.Kind == domain.KindDonation && product.Active &&
			!product.Sold && !product.Reserved && product.OwnerID != excludeOwnerID {
			return product, nil
		}
	}

	return domain.Product{}, repository.ErrNoEligibleItems
}

type fakeTransactionRepo struct {
	transactions map[string]domain.Transaction
	createErr    error

	// beforeTransition runs once just before the next TransitionStatus,
	// simulating a concurrent writer slipping in between read and write.
	beforeTransition func()
}

func newFakeTransactionRepo(transactions ...domain.Transaction) *fakeTransactionRepo {
	repo := &fakeTransactionRepo{
		transactions: make(map[string]domain.Transaction),
	}
	for _, tx := range transactions {
		repo.transactions[tx.ID] = tx
	}

	return repo
}

func (r *fakeTransactionRepo) Create(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	if r.createErr != nil {
		return domain.Transaction{}, r.createErr
	}

	r.transactions[transaction.ID] = transaction

	return transaction, nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id string) (domain.Transaction, error) {
	transaction, ok := r.transactions[id]
	if !ok {
		return domain.Transaction{}, repository.ErrTransactionNotFound
	}

	return transaction, nil
}

func (r *fakeTransactionRepo) FindByUserID(_ context.Context, userID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range r.transactions {
		if tx.SellerID == userID || tx.BuyerID == userID {
			out = append(out, tx)
		}
	}

	return out, nil
}

func (r *fakeTransactionRepo) TransitionStatus(_ context.Context, id string, from, to domain.TransactionStatus) error {
	if r.beforeTransition != nil {
		hook := r.beforeTransition
		r.beforeTransition = nil
		hook()
	}

	transaction, ok := r.transactions[id]
	if !ok {
		return repository.ErrTransactionNotFound
	}
	if transaction.Status != from {
		return repository.ErrStaleTransaction
	}

	transaction.Status = to
	transaction.UpdatedAt = time.Now()
	r.transactions[id] = transaction

	return nil
}

type fakeStatsRepo struct {
	stats     map[string]domain.UserStats
	entries   []domain.CreditLedgerEntry
	creditErr map[string]error
	pointsErr map[string]error
}

func newFakeStatsRepo(stats ...domain.UserStats) *fakeStatsRepo {
	repo := &fakeStatsRepo{
		stats:     make(map[string]domain.UserStats),
		creditErr: make(map[string]error),
		pointsErr: make(map[string]error),
	}
	for _, s := range stats {
		repo.stats[s.UserID] = s
	}

	return repo
}

func (r *fakeStatsRepo) GetStats(_ context.Context, userID string) (domain.UserStats, error) {
	stats, ok := r.stats[userID]
	if !ok {
		return domain.UserStats{}, repository.ErrStatsNotFound
	}

	return stats, nil
}

func (r *fakeStatsRepo) DebitCredits(_ context.Context, userID string, amount int) error {
	stats, ok := r.stats[userID]
	if !ok {
		return repository.ErrStatsNotFound
	}
	if stats.TimeCredits < amount {
		return repository.ErrInsufficientCredits
	}

	stats.TimeCredits -= amount
	r.stats[userID] = stats

	return nil
}

func (r *fakeStatsRepo) CreditCredits(_ context.Context, userID string, amount int) error {
	if err := r.creditErr[userID]; err != nil {
		return err
	}

	stats, ok := r.stats[userID]
	if !ok {
		return repository.ErrStatsNotFound
	}

	stats.TimeCredits += amount
	r.stats[userID] = stats

	return nil
}

func (r *fakeStatsRepo) AddPoints(_ context.Context, userID string, delta int) error {
	if err := r.pointsErr[userID]; err != nil {
		return err
	}

	stats, ok := r.stats[userID]
	if !ok {
		return repository.ErrStatsNotFound
	}

	stats.Points += delta
	r.stats[userID] = stats

	return nil
}

func (r *fakeStatsRepo) DebitPoints(_ context.Context, userID string, amount int) error {
	stats, ok := r.stats[userID]
	if !ok {
		return repository.ErrStatsNotFound
	}
	if stats.Points < amount {
		return repository.ErrInsufficientPoints
	}

	stats.Points -= amount
	r.stats[userID] = stats

	return nil
}

func (r *fakeStatsRepo) RecordLedgerEntry(_ context.Context, entry domain.CreditLedgerEntry) (domain.CreditLedgerEntry, error) {
	r.entries = append(r.entries, entry)

	return entry, nil
}

type fakeTokenRepo struct {
	tokens map[string]domain.DeliveryToken
}

func newFakeTokenRepo(tokens ...domain.DeliveryToken) *fakeTokenRepo {
	repo := &fakeTokenRepo{
		tokens: make(map[string]domain.DeliveryToken),
	}
	for _, tok := range tokens {
		repo.tokens[tok.ID] = tok
	}

	return repo
}

func (r *fakeTokenRepo) Create(_ context.Context, token domain.DeliveryToken) (domain.DeliveryToken, error) {
	r.tokens[token.ID] = token

	return token, nil
}

func (r *fakeTokenRepo) FindByID(_ context.Context, id string) (domain.DeliveryToken, error) {
	token, ok := r.tokens[id]
	if !ok {
		return domain.DeliveryToken{}, repository.ErrTokenNotFound
	}

	return token, nil
}

func (r *fakeTokenRepo) FindByUserID(_ context.Context, userID string) ([]domain.DeliveryToken, error) {
	var out []domain.DeliveryToken
	for _, tok := range r.tokens {
		if tok.SellerID == userID || tok.BuyerID == userID {
			out = append(out, tok)
		}
	}

	return out, nil
}

func (r *fakeTokenRepo) Consume(_ context.Context, id string, now time.Time) error {
	token, ok := r.tokens[id]
	if !ok {
		return repository.ErrTokenNotFound
	}
	if token.Used {
		return repository.ErrTokenAlreadyUsed
	}
	if token.Expired(now) {
		return repository.ErrTokenExpired
	}

	token.Used = true
	token.UsedAt = &now
	token.Status = domain.TokenCompleted
	r.tokens[id] = token

	return nil
}

type fakeServiceRequestRepo struct {
	offers   map[string]domain.ServiceOffer
	requests map[string]domain.ServiceRequest
}

func newFakeServiceRequestRepo() *fakeServiceRequestRepo {
	return &fakeServiceRequestRepo{
		offers:   make(map[string]domain.ServiceOffer),
		requests: make(map[string]domain.ServiceRequest),
	}
}

func (r *fakeServiceRequestRepo) GetOffer(_ context.Context, id string) (domain.ServiceOffer, error) {
	offer, ok := r.offers[id]
	if !ok {
		return domain.ServiceOffer{}, repository.ErrServiceOfferNotFound
	}

	return offer, nil
}

func (r *fakeServiceRequestRepo) Create(_ context.Context, request domain.ServiceRequest) (domain.ServiceRequest, error) {
	r.requests[request.ID] = request

	return request, nil
}

func (r *fakeServiceRequestRepo) FindByID(_ context.Context, id string) (domain.ServiceRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return domain.ServiceRequest{}, repository.ErrServiceRequestNotFound
	}

	return request, nil
}

func (r *fakeServiceRequestRepo) TransitionStatus(_ context.Context, id string, from, to domain.ServiceRequestStatus) error {
	request, ok := r.requests[id]
	if !ok {
		return repository.ErrServiceRequestNotFound
	}
	if request.Status != from {
		return repository.ErrStaleServiceRequest
	}

	request.Status = to
	request.UpdatedAt = time.Now()
	r.requests[id] = request

	return nil
}

type recordedNotification struct {
	UserID string
	Kind   domain.NotificationKind
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (n *fakeNotifier) Notify(_ context.Context, userID string, kind domain.NotificationKind, _, _, _ string) {
	n.sent = append(n.sent, recordedNotification{UserID: userID, Kind: kind})
}

var errBoom = errors.New("boom")
