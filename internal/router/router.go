package router

import (
	"net/http"

	"github.com/tenderhub/procurement-service/internal/handlers"
)

func InitRoutes(tenderHandler *handlers.TenderHandler, bidHandler *handlers.BidHandler, accountHandler *handlers.AccountHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/auth/register", accountHandler.Register)
	mux.HandleFunc("GET /api/auth/email-taken", accountHandler.EmailTaken)

	mux.HandleFunc("GET /api/tenders", tenderHandler.GetTenders)
	mux.HandleFunc("POST /api/tenders/new", tenderHandler.CreateTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", tenderHandler.GetTender)
	mux.HandleFunc("PATCH /api/tenders/{tenderId}/edit", tenderHandler.EditTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/publish", tenderHandler.PublishTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/evaluation", tenderHandler.BeginEvaluation)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/withdraw", tenderHandler.WithdrawTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/close", tenderHandler.CloseTender)
	mux.HandleFunc("POST /api/tenders/{tenderId}/award", tenderHandler.AwardTender)

	mux.HandleFunc("POST /api/bids/new", bidHandler.CreateBid)
	mux.HandleFunc("GET /api/bids/my", bidHandler.GetUserBids)
	mux.HandleFunc("GET /api/bids/{tenderId}/list", bidHandler.GetTenderBids)
	mux.HandleFunc("PUT /api/bids/{bidId}/qualify", bidHandler.QualifyBid)
	mux.HandleFunc("PUT /api/bids/{bidId}/score", bidHandler.ScoreBid)
	mux.HandleFunc("PUT /api/bids/{bidId}/shortlist", bidHandler.ShortlistBid)
	mux.HandleFunc("PUT /api/bids/{bidId}/reject", bidHandler.RejectBid)
	mux.HandleFunc("PUT /api/bids/{bidId}/disqualify", bidHandler.DisqualifyBid)

	return mux
}
