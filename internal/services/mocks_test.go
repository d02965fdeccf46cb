package services

import (
	"context"
	"errors"

	"github.com/tenderhub/procurement-service/internal/models"
)

// Моки репозиториев: каждый метод делегирует в поле-функцию,
// тест задаёт только то, что ему нужно.

var errUnexpectedCall = errors.New("unexpected repository call")

type mockTenderRepo struct {
	createTenderFunc  func(ctx context.Context, tenderReq models.TenderRequest, createdBy string) (*models.Tender, error)
	getTenderByIdFunc func(ctx context.Context, tenderId string) (*models.Tender, error)
	getTendersFunc    func(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error)
	updateTenderFunc  func(ctx context.Context, tender *models.Tender, expectedVersion int) error
	closeTenderTxFunc func(ctx context.Context, tenderId string, from, to models.TenderStatus, sweepReason string, expectedVersion int) (*models.Tender, error)
	awardTenderTxFunc func(ctx context.Context, tenderId, winningBidId string, expectedVersion int) (*models.Tender, error)
}

func (m *mockTenderRepo) CreateTender(ctx context.Context, tenderReq models.TenderRequest, createdBy string) (*models.Tender, error) {
	if m.createTenderFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.createTenderFunc(ctx, tenderReq, createdBy)
}

func (m *mockTenderRepo) GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error) {
	if m.getTenderByIdFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getTenderByIdFunc(ctx, tenderId)
}

func (m *mockTenderRepo) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	if m.getTendersFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getTendersFunc(ctx, limit, offset, statuses)
}

func (m *mockTenderRepo) UpdateTender(ctx context.Context, tender *models.Tender, expectedVersion int) error {
	if m.updateTenderFunc == nil {
		return errUnexpectedCall
	}
	return m.updateTenderFunc(ctx, tender, expectedVersion)
}

func (m *mockTenderRepo) CloseTenderTx(ctx context.Context, tenderId string, from, to models.TenderStatus, sweepReason string, expectedVersion int) (*models.Tender, error) {
	if m.closeTenderTxFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.closeTenderTxFunc(ctx, tenderId, from, to, sweepReason, expectedVersion)
}

func (m *mockTenderRepo) AwardTenderTx(ctx context.Context, tenderId, winningBidId string, expectedVersion int) (*models.Tender, error) {
	if m.awardTenderTxFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.awardTenderTxFunc(ctx, tenderId, winningBidId, expectedVersion)
}

type mockBidRepo struct {
	createBidFunc      func(ctx context.Context, bidReq models.BidRequest, vendorId string) (*models.Bid, error)
	getBidByIdFunc     func(ctx context.Context, bidId string) (*models.Bid, error)
	getTenderBidsFunc  func(ctx context.Context, tenderId string, limit, offset int) ([]models.Bid, error)
	getVendorBidsFunc  func(ctx context.Context, vendorId string, limit, offset int) ([]models.Bid, error)
	countTenderBids    func(ctx context.Context, tenderId string) (int, error)
	findAwardedBidFunc func(ctx context.Context, tenderId string) (*models.Bid, error)
	updateBidFunc      func(ctx context.Context, bid *models.Bid, expectedVersion int) error
}

func (m *mockBidRepo) CreateBid(ctx context.Context, bidReq models.BidRequest, vendorId string) (*models.Bid, error) {
	if m.createBidFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.createBidFunc(ctx, bidReq, vendorId)
}

func (m *mockBidRepo) GetBidById(ctx context.Context, bidId string) (*models.Bid, error) {
	if m.getBidByIdFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getBidByIdFunc(ctx, bidId)
}

func (m *mockBidRepo) GetTenderBids(ctx context.Context, tenderId string, limit, offset int) ([]models.Bid, error) {
	if m.getTenderBidsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getTenderBidsFunc(ctx, tenderId, limit, offset)
}

func (m *mockBidRepo) GetVendorBids(ctx context.Context, vendorId string, limit, offset int) ([]models.Bid, error) {
	if m.getVendorBidsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getVendorBidsFunc(ctx, vendorId, limit, offset)
}

func (m *mockBidRepo) CountTenderBids(ctx context.Context, tenderId string) (int, error) {
	if m.countTenderBids == nil {
		return 0, errUnexpectedCall
	}
	return m.countTenderBids(ctx, tenderId)
}

func (m *mockBidRepo) FindAwardedBid(ctx context.Context, tenderId string) (*models.Bid, error) {
	if m.findAwardedBidFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.findAwardedBidFunc(ctx, tenderId)
}

func (m *mockBidRepo) UpdateBid(ctx context.Context, bid *models.Bid, expectedVersion int) error {
	if m.updateBidFunc == nil {
		return errUnexpectedCall
	}
	return m.updateBidFunc(ctx, bid, expectedVersion)
}

type mockAccountRepo struct {
	createAccountFunc  func(ctx context.Context, account *models.Account) error
	getAccountByIdFunc func(ctx context.Context, accountId string) (*models.Account, error)
	emailExistsFunc    func(ctx context.Context, email string) (bool, error)
}

func (m *mockAccountRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	if m.createAccountFunc == nil {
		return errUnexpectedCall
	}
	return m.createAccountFunc(ctx, account)
}

func (m *mockAccountRepo) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	if m.getAccountByIdFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getAccountByIdFunc(ctx, accountId)
}

func (m *mockAccountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFunc == nil {
		return false, errUnexpectedCall
	}
	return m.emailExistsFunc(ctx, email)
}

type mockCriteriaRepo struct {
	getTenderCriteriaFunc func(ctx context.Context, tenderId string) ([]models.EvaluationCriterion, error)
}

func (m *mockCriteriaRepo) GetTenderCriteria(ctx context.Context, tenderId string) ([]models.EvaluationCriterion, error) {
	if m.getTenderCriteriaFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getTenderCriteriaFunc(ctx, tenderId)
}

var (
	adminCaller    = models.Caller{ID: "admin-1", Role: models.AdminRole}
	supplierCaller = models.Caller{ID: "vendor-1", Role: models.SupplierRole}
)
