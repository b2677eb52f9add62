package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Natsgol/Seilor.fun/internal/domain"
)

type mintRequest struct {
	ID             string `json:"id,omitempty"`
	Creator        string `json:"creator"`
	RoyaltyPercent uint32 `json:"royalty_percent"`
	Name           string `json:"name"`
	Backstory      string `json:"backstory,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
}

type tokenResponse struct {
	domain.Token
	BuyPrice  string `json:"buy_price"`
	SellPrice string `json:"sell_price"`
}

type quoteRequest struct {
	Trader      string `json:"trader"`
	Direction   string `json:"direction"`
	Quantity    uint64 `json:"quantity"`
	SlippageBps uint32 `json:"slippage_bps"`
}

type quoteResponse struct {
	domain.Quote
	GrossDisplay string `json:"gross_display"`
}

type executeRequest struct {
	QuoteID        string `json:"quote_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

type tradeResponse struct {
	domain.Trade
	GrossDisplay string `json:"gross_display"`
	NetDisplay   string `json:"net_display"`
}

func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Creator == "" {
		writeError(w, http.StatusBadRequest, "creator is required")
		return
	}

	token, err := s.ledger.Mint(r.Context(), domain.Token{
		ID:             req.ID,
		Creator:        req.Creator,
		RoyaltyPercent: req.RoyaltyPercent,
		Name:           req.Name,
		Backstory:      req.Backstory,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.tokenView(token))
}

func (s *Server) handleListTokens(w http.ResponseWriter, _ *http.Request) {
	tokens := s.ledger.Tokens()
	out := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, s.tokenView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.ledger.Token(chi.URLParam(r, "tokenID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tokenView(token))
}

func (s *Server) handleGetSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.ledger.Supply(chi.URLParam(r, "tokenID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"supply": supply})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := s.quoter.Quote(chi.URLParam(r, "tokenID"), req.Trader, dir, req.Quantity, req.SlippageBps)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.quotes.put(quote)

	writeJSON(w, http.StatusCreated, quoteResponse{
		Quote:        *quote,
		GrossDisplay: quote.GrossMicros.String(),
	})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IdempotencyKey == "" {
		writeError(w, http.StatusBadRequest, "idempotency_key is required")
		return
	}

	quote, ok := s.quotes.take(req.QuoteID)
	if !ok {
		// The quote may already be consumed; retries under the same
		// idempotency key replay the stored terminal result.
		stored, err := s.exec.Lookup(r.Context(), req.IdempotencyKey)
		if err == nil && stored != nil {
			writeJSON(w, http.StatusOK, tradeView(stored))
			return
		}
		writeError(w, http.StatusNotFound, "quote not found or expired")
		return
	}

	trade, err := s.exec.Execute(r.Context(), quote, req.IdempotencyKey)
	if trade == nil && err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if trade.Status == domain.StatusRejected {
		status = http.StatusConflict
	}
	writeJSON(w, status, tradeView(trade))
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IdempotencyKey == "" {
		writeError(w, http.StatusBadRequest, "idempotency_key is required")
		return
	}

	quote, ok := s.quotes.take(req.QuoteID)
	if !ok {
		writeError(w, http.StatusNotFound, "quote not found or expired")
		return
	}
	trade, err := s.exec.Abandon(r.Context(), quote, req.IdempotencyKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeView(trade))
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.ledger.StoredTrade(r.Context(), chi.URLParam(r, "idempotencyKey"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if trade == nil {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	writeJSON(w, http.StatusOK, tradeView(trade))
}

func (s *Server) tokenView(t domain.Token) tokenResponse {
	resp := tokenResponse{Token: t}
	if buy, err := s.model.BuyPrice(t.Supply); err == nil {
		resp.BuyPrice = buy.String()
	}
	if sell, err := s.model.SellPrice(t.Supply); err == nil {
		resp.SellPrice = sell.String()
	}
	return resp
}

func tradeView(tr *domain.Trade) tradeResponse {
	return tradeResponse{
		Trade:        *tr,
		GrossDisplay: tr.ExecGrossMicros.String(),
		NetDisplay:   tr.NetMicros.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateToken),
		errors.Is(err, domain.ErrQuoteConsumed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidRoyalty),
		errors.Is(err, domain.ErrInvalidPercentage),
		errors.Is(err, domain.ErrQuantityOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientSupply),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSlippageExceeded),
		errors.Is(err, domain.ErrInvalidSupply):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrSettlementTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, domain.ErrSettlementRejected):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("Unhandled error", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
