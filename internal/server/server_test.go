package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natsgol/Seilor.fun/internal/curve"
	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/internal/engine"
	"github.com/Natsgol/Seilor.fun/internal/ledger"
	"github.com/Natsgol/Seilor.fun/internal/settlement"
)

func newTestServer(t *testing.T) (*Server, *settlement.Sim) {
	t.Helper()
	l := ledger.NewSupplyLedger(nil, 10_000_000)
	m, err := curve.NewModel(curve.DefaultParams())
	require.NoError(t, err)

	sim := settlement.NewSim("admin")
	sim.Fund("alice", 1_000_000_000)

	quoter := engine.NewQuoter(l, m, 1000)
	exec := engine.NewExecutor(l, m, sim, 100)
	return New(":0", l, m, quoter, exec), sim
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_MintAndGetToken(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tokens", mintRequest{
		ID:             "tok-1",
		Creator:        "carol",
		RoyaltyPercent: 5,
		Name:           "Sea Breeze",
		Backstory:      "born on the docks",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	tok := decode[tokenResponse](t, rec)
	assert.Equal(t, "tok-1", tok.ID)
	assert.Equal(t, uint64(0), tok.Supply)
	assert.Equal(t, "0.001000", tok.BuyPrice)
	assert.Equal(t, "0.000000", tok.SellPrice)

	rec = doJSON(t, h, http.MethodGet, "/tokens/tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[tokenResponse](t, rec)
	assert.Equal(t, "Sea Breeze", got.Name)

	// Duplicate mint conflicts.
	rec = doJSON(t, h, http.MethodPost, "/tokens", mintRequest{ID: "tok-1", Creator: "carol"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Royalty above the cap is a bad request.
	rec = doJSON(t, h, http.MethodPost, "/tokens", mintRequest{
		ID: "tok-2", Creator: "carol", RoyaltyPercent: 21,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UnknownTokenIs404(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodGet, "/tokens/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/tokens/nope/supply", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_QuoteAndExecute(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tokens", mintRequest{ID: "tok-1", Creator: "carol", RoyaltyPercent: 5})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/tokens/tok-1/quote", quoteRequest{
		Trader:      "alice",
		Direction:   "buy",
		Quantity:    3,
		SlippageBps: 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	quote := decode[quoteResponse](t, rec)
	require.NotEmpty(t, quote.ID)
	assert.Equal(t, domain.DirectionBuy, quote.Direction)

	rec = doJSON(t, h, http.MethodPost, "/trades", executeRequest{
		QuoteID:        quote.ID,
		IdempotencyKey: "key-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	trade := decode[tradeResponse](t, rec)
	assert.Equal(t, domain.StatusConfirmed, trade.Status)
	assert.NotEmpty(t, trade.SettlementRef)

	rec = doJSON(t, h, http.MethodGet, "/tokens/tok-1/supply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	supply := decode[map[string]uint64](t, rec)
	assert.Equal(t, uint64(3), supply["supply"])

	// Retrying the same key replays the confirmed trade even though the
	// quote itself is consumed.
	rec = doJSON(t, h, http.MethodPost, "/trades", executeRequest{
		QuoteID:        quote.ID,
		IdempotencyKey: "key-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	replay := decode[tradeResponse](t, rec)
	assert.Equal(t, trade.SettlementRef, replay.SettlementRef)
}

func TestServer_ExecuteUnknownQuote(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/trades", executeRequest{
		QuoteID:        "nope",
		IdempotencyKey: "key-1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_QuoteValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tokens", mintRequest{ID: "tok-1", Creator: "carol"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Selling into zero supply cannot be quoted.
	rec = doJSON(t, h, http.MethodPost, "/tokens/tok-1/quote", quoteRequest{
		Trader: "alice", Direction: "sell", Quantity: 1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/tokens/tok-1/quote", quoteRequest{
		Trader: "alice", Direction: "sideways", Quantity: 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/tokens/tok-1/quote", quoteRequest{
		Trader: "alice", Direction: "buy", Quantity: 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_InsufficientFundsRejected(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tokens", mintRequest{ID: "tok-1", Creator: "carol"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/tokens/tok-1/quote", quoteRequest{
		Trader: "broke-bob", Direction: "buy", Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	quote := decode[quoteResponse](t, rec)

	// The executor surfaces the rejection as a terminal trade, so the
	// handler answers 409 with the rejected body rather than a bare error.
	rec = doJSON(t, h, http.MethodPost, "/trades", executeRequest{
		QuoteID:        quote.ID,
		IdempotencyKey: "key-broke",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	trade := decode[tradeResponse](t, rec)
	assert.Equal(t, domain.StatusRejected, trade.Status)
	assert.Equal(t, domain.ErrInsufficientFunds.Error(), trade.Reason)
}

func TestServer_Abandon(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tokens", mintRequest{ID: "tok-1", Creator: "carol"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/tokens/tok-1/quote", quoteRequest{
		Trader: "alice", Direction: "buy", Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	quote := decode[quoteResponse](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/trades/abandon", executeRequest{
		QuoteID:        quote.ID,
		IdempotencyKey: "key-walk",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	trade := decode[tradeResponse](t, rec)
	assert.Equal(t, domain.StatusExpired, trade.Status)

	rec = doJSON(t, h, http.MethodGet, "/tokens/tok-1/supply", nil)
	supply := decode[map[string]uint64](t, rec)
	assert.Equal(t, uint64(0), supply["supply"])
}

func TestServer_Healthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
