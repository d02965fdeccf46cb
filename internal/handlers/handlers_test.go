package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tenderhub/procurement-service/internal/handlers"
	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/repository"
	"github.com/tenderhub/procurement-service/internal/router"
	"github.com/tenderhub/procurement-service/internal/services"

	"github.com/stretchr/testify/require"
)

// memStore - хранилище в памяти, реализующее все интерфейсы репозиториев
// для сквозных тестов через реальный роутер.
type memStore struct {
	mu       sync.Mutex
	tenders  map[string]*models.Tender
	bids     map[string]*models.Bid
	accounts map[string]*models.Account
	criteria map[string][]models.EvaluationCriterion
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		tenders:  make(map[string]*models.Tender),
		bids:     make(map[string]*models.Bid),
		accounts: make(map[string]*models.Account),
		criteria: make(map[string][]models.EvaluationCriterion),
	}
}

func (s *memStore) nextId(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) CreateTender(ctx context.Context, tenderReq models.TenderRequest, createdBy string) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tender := &models.Tender{
		ID:          s.nextId("tender"),
		Title:       tenderReq.Title,
		Description: tenderReq.Description,
		Category:    tenderReq.Category,
		Budget:      tenderReq.Budget,
		Deadline:    tenderReq.Deadline,
		Status:      models.DraftTender,
		CreatedBy:   createdBy,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}
	s.tenders[tender.ID] = tender
	copied := *tender
	return &copied, nil
}

func (s *memStore) GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tender, ok := s.tenders[tenderId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *tender
	return &copied, nil
}

func (s *memStore) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tender
	for _, tender := range s.tenders {
		out = append(out, *tender)
	}
	return out, nil
}

func (s *memStore) UpdateTender(ctx context.Context, tender *models.Tender, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tenders[tender.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	copied := *tender
	copied.Version = expectedVersion + 1
	s.tenders[tender.ID] = &copied
	tender.Version = copied.Version
	return nil
}

func (s *memStore) CloseTenderTx(ctx context.Context, tenderId string, from, to models.TenderStatus, sweepReason string, expectedVersion int) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tenders[tenderId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored.Version != expectedVersion || stored.Status != from {
		return nil, repository.ErrVersionConflict
	}
	for _, bid := range s.bids {
		if bid.TenderId == tenderId && !models.TerminalBidStatus(bid.Status) {
			bid.Status = models.RejectedBid
			bid.Notes = sweepReason
			bid.Version++
		}
	}
	stored.Status = to
	stored.Version++
	copied := *stored
	return &copied, nil
}

func (s *memStore) AwardTenderTx(ctx context.Context, tenderId, winningBidId string, expectedVersion int) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tenders[tenderId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored.Version != expectedVersion || stored.Status != models.UnderEvaluationTender {
		return nil, repository.ErrVersionConflict
	}
	winner, ok := s.bids[winningBidId]
	if !ok || winner.Status != models.ShortlistedBid {
		return nil, repository.ErrVersionConflict
	}
	winner.Status = models.AwardedBid
	winner.Version++
	for _, bid := range s.bids {
		if bid.TenderId == tenderId && bid.ID != winningBidId && !models.TerminalBidStatus(bid.Status) {
			bid.Status = models.RejectedBid
			bid.Notes = "another bid was awarded"
			bid.Version++
		}
	}
	stored.Status = models.AwardedTender
	stored.Version++
	copied := *stored
	return &copied, nil
}

func (s *memStore) CreateBid(ctx context.Context, bidReq models.BidRequest, vendorId string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bid := range s.bids {
		if bid.TenderId == bidReq.TenderId && bid.VendorId == vendorId {
			return nil, repository.ErrDuplicate
		}
	}
	bid := &models.Bid{
		ID:          s.nextId("bid"),
		TenderId:    bidReq.TenderId,
		VendorId:    vendorId,
		Amount:      bidReq.Amount,
		Status:      models.PendingBid,
		Version:     1,
		SubmittedAt: time.Now().UTC(),
	}
	s.bids[bid.ID] = bid
	copied := *bid
	return &copied, nil
}

func (s *memStore) GetBidById(ctx context.Context, bidId string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[bidId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *bid
	return &copied, nil
}

func (s *memStore) GetTenderBids(ctx context.Context, tenderId string, limit, offset int) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bid
	for _, bid := range s.bids {
		if bid.TenderId == tenderId {
			out = append(out, *bid)
		}
	}
	return out, nil
}

func (s *memStore) GetVendorBids(ctx context.Context, vendorId string, limit, offset int) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bid
	for _, bid := range s.bids {
		if bid.VendorId == vendorId {
			out = append(out, *bid)
		}
	}
	return out, nil
}

func (s *memStore) CountTenderBids(ctx context.Context, tenderId string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, bid := range s.bids {
		if bid.TenderId == tenderId {
			count++
		}
	}
	return count, nil
}

func (s *memStore) FindAwardedBid(ctx context.Context, tenderId string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bid := range s.bids {
		if bid.TenderId == tenderId && bid.Status == models.AwardedBid {
			copied := *bid
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpdateBid(ctx context.Context, bid *models.Bid, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.bids[bid.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	copied := *bid
	copied.Version = expectedVersion + 1
	s.bids[bid.ID] = &copied
	bid.Version = copied.Version
	return nil
}

func (s *memStore) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	if account.ID == "" {
		account.ID = s.nextId("acc")
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *memStore) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *memStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) GetTenderCriteria(ctx context.Context, tenderId string) ([]models.EvaluationCriterion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria[tenderId], nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore()
	store.accounts["admin-1"] = &models.Account{ID: "admin-1", Email: "admin@example.com", Role: models.AdminRole}
	store.accounts["vendor-1"] = &models.Account{ID: "vendor-1", Email: "vendor1@example.com", Role: models.SupplierRole}
	store.accounts["vendor-2"] = &models.Account{ID: "vendor-2", Email: "vendor2@example.com", Role: models.SupplierRole}
	store.accounts["vendor-3"] = &models.Account{ID: "vendor-3", Email: "vendor3@example.com", Role: models.SupplierRole}

	logger := log.New(io.Discard, "", 0)
	notifier := services.NewNotifier(logger)

	identity := services.NewIdentityService(store)
	registration := services.NewRegistrationService(store, notifier)
	tenderService := services.NewTenderService(store, store, notifier)
	bidService := services.NewBidService(store, store, store, notifier)
	awardService := services.NewAwardService(store, store, notifier)

	tenderHandler := handlers.NewTenderHandler(tenderService, awardService, identity, logger, 5*time.Second)
	bidHandler := handlers.NewBidHandler(bidService, identity, logger, 5*time.Second)
	accountHandler := handlers.NewAccountHandler(registration, logger, 5*time.Second)

	server := httptest.NewServer(router.InitRoutes(tenderHandler, bidHandler, accountHandler))
	t.Cleanup(server.Close)
	return server, store
}

func doRequest(t *testing.T, server *httptest.Server, method, path, userId string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if userId != "" {
		req.Header.Set("X-User-Id", userId)
	}
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, payload
}

func TestPing(t *testing.T) {
	server, _ := newTestServer(t)

	resp, payload := doRequest(t, server, http.MethodGet, "/api/ping", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(payload))
}

func TestTenderLifecycleOverHTTP(t *testing.T) {
	server, store := newTestServer(t)
	deadline := time.Now().UTC().Add(24 * time.Hour)

	resp, payload := doRequest(t, server, http.MethodPost, "/api/tenders/new", "admin-1", map[string]any{
		"title":       "Office furniture supply",
		"description": "Desks and chairs",
		"category":    "furniture",
		"budget":      750000,
		"deadline":    deadline,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tender models.Tender
	require.NoError(t, json.Unmarshal(payload, &tender))
	require.Equal(t, models.DraftTender, tender.Status)

	resp, payload = doRequest(t, server, http.MethodPut, "/api/tenders/"+tender.ID+"/publish", "admin-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(payload, &tender))
	require.Equal(t, models.PublishedTender, tender.Status)

	resp, payload = doRequest(t, server, http.MethodPost, "/api/bids/new", "vendor-1", map[string]any{
		"tenderId": tender.ID,
		"amount":   680000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bid models.Bid
	require.NoError(t, json.Unmarshal(payload, &bid))
	require.Equal(t, models.PendingBid, bid.Status)

	resp, _ = doRequest(t, server, http.MethodPost, "/api/bids/new", "vendor-1", map[string]any{
		"tenderId": tender.ID,
		"amount":   670000,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodPut, "/api/tenders/"+tender.ID+"/evaluation?override=true", "admin-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	store.criteria[tender.ID] = []models.EvaluationCriterion{
		{ID: "c-price", TenderId: tender.ID, Name: "Price", Weight: 60},
		{ID: "c-tech", TenderId: tender.ID, Name: "Technical", Weight: 40},
	}
	resp, payload = doRequest(t, server, http.MethodPut, "/api/bids/"+bid.ID+"/score", "admin-1", map[string]any{
		"criterionScores": map[string]int{"c-price": 55, "c-tech": 33},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(payload, &bid))
	require.Equal(t, models.ReviewedBid, bid.Status)
	require.NotNil(t, bid.Score)
	require.Equal(t, 88, *bid.Score)

	resp, _ = doRequest(t, server, http.MethodPut, "/api/bids/"+bid.ID+"/shortlist", "admin-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload = doRequest(t, server, http.MethodPost, "/api/tenders/"+tender.ID+"/award", "admin-1", map[string]any{
		"bidId": bid.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(payload, &tender))
	require.Equal(t, models.AwardedTender, tender.Status)

	// Повторный award того же победителя идемпотентен.
	resp, _ = doRequest(t, server, http.MethodPost, "/api/tenders/"+tender.ID+"/award", "admin-1", map[string]any{
		"bidId": bid.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAwardRejectsLosingFinalistsOverHTTP(t *testing.T) {
	server, store := newTestServer(t)
	deadline := time.Now().UTC().Add(24 * time.Hour)

	resp, payload := doRequest(t, server, http.MethodPost, "/api/tenders/new", "admin-1", map[string]any{
		"title":       "Office furniture supply",
		"description": "Desks and chairs",
		"category":    "furniture",
		"budget":      750000,
		"deadline":    deadline,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tender models.Tender
	require.NoError(t, json.Unmarshal(payload, &tender))

	resp, _ = doRequest(t, server, http.MethodPut, "/api/tenders/"+tender.ID+"/publish", "admin-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bidIds := make(map[string]string)
	for vendor, amount := range map[string]int{"vendor-1": 680000, "vendor-2": 700000, "vendor-3": 720000} {
		resp, payload = doRequest(t, server, http.MethodPost, "/api/bids/new", vendor, map[string]any{
			"tenderId": tender.ID,
			"amount":   amount,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var bid models.Bid
		require.NoError(t, json.Unmarshal(payload, &bid))
		bidIds[vendor] = bid.ID
	}

	resp, _ = doRequest(t, server, http.MethodPut, "/api/tenders/"+tender.ID+"/evaluation?override=true", "admin-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	store.criteria[tender.ID] = []models.EvaluationCriterion{
		{ID: "c-price", TenderId: tender.ID, Name: "Price", Weight: 60},
		{ID: "c-tech", TenderId: tender.ID, Name: "Technical", Weight: 40},
	}
	scores := map[string]map[string]int{
		"vendor-1": {"c-price": 55, "c-tech": 32}, // 87
		"vendor-2": {"c-price": 50, "c-tech": 30}, // 80
		"vendor-3": {"c-price": 45, "c-tech": 30}, // 75
	}
	for vendor, bidId := range bidIds {
		resp, _ = doRequest(t, server, http.MethodPut, "/api/bids/"+bidId+"/score", "admin-1", map[string]any{
			"criterionScores": scores[vendor],
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doRequest(t, server, http.MethodPut, "/api/bids/"+bidId+"/shortlist", "admin-1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	winnerId := bidIds["vendor-1"]
	resp, payload = doRequest(t, server, http.MethodPost, "/api/tenders/"+tender.ID+"/award", "admin-1", map[string]any{
		"bidId": winnerId,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(payload, &tender))
	require.Equal(t, models.AwardedTender, tender.Status)

	resp, payload = doRequest(t, server, http.MethodGet, "/api/bids/"+tender.ID+"/list", "admin-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bids []models.Bid
	require.NoError(t, json.Unmarshal(payload, &bids))
	require.Len(t, bids, 3)
	for _, bid := range bids {
		if bid.ID == winnerId {
			require.Equal(t, models.AwardedBid, bid.Status)
			require.Equal(t, 87, *bid.Score)
			continue
		}
		require.Equal(t, models.RejectedBid, bid.Status)
		require.Equal(t, "another bid was awarded", bid.Notes)
	}
}

func TestAuthorizationOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)
	deadline := time.Now().UTC().Add(24 * time.Hour)

	resp, _ := doRequest(t, server, http.MethodPost, "/api/tenders/new", "", map[string]any{
		"title": "t", "description": "d", "category": "c", "budget": 100, "deadline": deadline,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodPost, "/api/tenders/new", "vendor-1", map[string]any{
		"title": "t", "description": "d", "category": "c", "budget": 100, "deadline": deadline,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodGet, "/api/tenders/unknown-id", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegistrationOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)

	resp, payload := doRequest(t, server, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":           "new@example.com",
		"password":        "s3cret-pass",
		"passwordConfirm": "s3cret-pass",
		"companyName":     "Acme Supplies",
		"categories":      []string{"furniture"},
		"termsAccepted":   true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var account models.Account
	require.NoError(t, json.Unmarshal(payload, &account))
	require.Equal(t, models.SupplierRole, account.Role)

	resp, _ = doRequest(t, server, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":           "new@example.com",
		"password":        "s3cret-pass",
		"passwordConfirm": "s3cret-pass",
		"companyName":     "Acme Supplies",
		"categories":      []string{"furniture"},
		"termsAccepted":   true,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, payload = doRequest(t, server, http.MethodGet, "/api/auth/email-taken?email=new@example.com", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"taken": true}`, string(payload))
}
