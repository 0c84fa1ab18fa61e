package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/dashboard"
	"github.com/rustyeddy/spreads/impexp"
	"github.com/rustyeddy/spreads/report"
	"github.com/rustyeddy/spreads/risk"
	"github.com/rustyeddy/spreads/spread"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 5 << 20
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error      string   `json:"error"`
	Problems   []string `json:"problems,omitempty"`
	MaxAllowed *float64 `json:"maxAllowed,omitempty"`
}

// writeJSON encodes v before touching the response, so an unencodable
// value becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody{Error: fmt.Sprintf("encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	var ie *dashboard.InputError
	if errors.As(err, &ie) {
		body.Problems = ie.Problems
	}
	var ee *risk.ExceededError
	if errors.As(err, &ee) {
		v := ee.MaxAllowed
		body.MaxAllowed = &v
	}
	writeJSON(w, status, body)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, risk.ErrRiskExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, account.ErrTradeNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrTradeAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, spread.ErrInvalidInput),
		errors.Is(err, account.ErrInvalidRecord),
		errors.Is(err, impexp.ErrInvalidSync),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, err)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	sum := s.svc.Summary()
	writeJSON(w, http.StatusOK, struct {
		account.Positions
		RiskLevel risk.Level      `json:"riskLevel"`
		RiskClass string          `json:"riskClass"`
		Trades    []account.Trade `json:"trades"`
	}{sum.Positions, sum.RiskLevel, sum.RiskClass, sum.OpenTrades})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Metrics())
}

func (s *Server) handleTiming(w http.ResponseWriter, r *http.Request) {
	dte := 0
	if v := r.URL.Query().Get("dte"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, fmt.Errorf("%w: dte must be a positive integer", errBadRequest))
			return
		}
		dte = n
	}
	writeJSON(w, http.StatusOK, s.svc.Timing(r.Context(), dte))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Market(r.Context()))
}

// tradeInput decodes a proposed trade, stripping markup from free text.
func (s *Server) tradeInput(r *http.Request) (dashboard.TradeInput, error) {
	var in dashboard.TradeInput
	if err := decode(r, &in); err != nil {
		return in, err
	}
	in.Underlying = strings.TrimSpace(s.strict.Sanitize(in.Underlying))
	return in, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	in, err := s.tradeInput(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.svc.Analyze(in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.svc.Trades()
	status := r.URL.Query().Get("status")
	if status == "" {
		writeJSON(w, http.StatusOK, trades)
		return
	}
	out := make([]account.Trade, 0, len(trades))
	for _, t := range trades {
		if strings.EqualFold(string(t.Status), status) {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	in, err := s.tradeInput(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.svc.AddTrade(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Trade(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PnL *float64 `json:"pnl"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.PnL == nil {
		s.fail(w, r, fmt.Errorf("%w: pnl is required", errBadRequest))
		return
	}
	t, err := s.svc.CloseTrade(r.Context(), chi.URLParam(r, "id"), *body.PnL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.svc.Export()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rec, err := s.svc.Import(r.Context(), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance": rec.Balance,
		"trades":  len(rec.Trades),
	})
}

// handleReport renders the dashboard page. ?market=1 adds the market
// panel, which calls the data provider.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	d := report.Data{
		Generated: s.svc.Now(),
		Summary:   s.svc.Summary(),
		Timing:    s.svc.Timing(r.Context(), 0),
	}
	if r.URL.Query().Get("market") == "1" {
		o := s.svc.Market(r.Context())
		d.Market = &o
	}

	md, err := report.Markdown(d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := report.HTML(md)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
