package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aaelony/dx-fintools-fs/pkg/fv"
	"github.com/aaelony/dx-fintools-fs/pkg/storage"
)

const (
	defaultPrincipal   = "1000.00"
	defaultYears       = "7.0"
	defaultRatePercent = 3.875

	historyPageSize = 20
)

type computeRequest struct {
	Principal     string  `json:"principal"`
	Years         string  `json:"years"`
	RatePercent   float64 `json:"rate_percent"`
	Compounding   string  `json:"compounding"`
	CustomPeriods float64 `json:"custom_periods"`
}

type computeResponse struct {
	Value       float64 `json:"value"`
	Formatted   string  `json:"formatted"`
	Description string  `json:"description"`
}

type errorResponse struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// parseComputeRequest validates the request the same way the form does:
// every invalid field gets its own message.
func parseComputeRequest(req computeRequest) (principal, years float64, comp fv.Compounding, errs map[string]string) {
	errs = map[string]string{}

	principal, err := fv.ParseAmount("Principal amount", req.Principal)
	if err != nil {
		errs["principal"] = err.Error()
	}

	years, err = fv.ParseAmount("Number of years", req.Years)
	if err != nil {
		errs["years"] = err.Error()
	}

	if req.RatePercent < 0 {
		errs["rate_percent"] = "Interest rate must be zero or greater"
	}

	if req.Compounding == "custom" {
		comp, err = fv.Custom(req.CustomPeriods)
	} else {
		comp, err = fv.ParseCompounding(req.Compounding)
	}
	if err != nil {
		errs["compounding"] = err.Error()
	}

	return principal, years, comp, errs
}

type computeFunc func(amount, rate float64, comp fv.Compounding, years float64) (float64, error)

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request, kind, noun string, compute computeFunc) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Errors: map[string]string{
			"body": "request body must be a JSON object",
		}})
		return
	}

	principal, years, comp, errs := parseComputeRequest(req)
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: errs})
		return
	}

	result, err := compute(principal, req.RatePercent/100, comp, years)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: map[string]string{
			"result": err.Error(),
		}})
		return
	}

	response := computeResponse{
		Value:     result,
		Formatted: fv.FormatUSD(result),
		Description: fmt.Sprintf("%s %s of %s at %.3f%% for %g years",
			comp, noun, fv.FormatUSD(principal), req.RatePercent, years),
	}

	entry := storage.Entry{
		Kind:        kind,
		Principal:   principal,
		RatePercent: req.RatePercent,
		Years:       years,
		Compounding: comp.String(),
		Result:      result,
		Formatted:   response.Formatted,
	}
	if err := s.history.Append(entry); err != nil {
		Log(r.Context()).Warn().Err(err).Msg("failed to record calculation")
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleFutureValue(w http.ResponseWriter, r *http.Request) {
	s.handleCompute(w, r, "fv", "future value", fv.FutureValue)
}

func (s *Server) handlePresentValue(w http.ResponseWriter, r *http.Request) {
	s.handleCompute(w, r, "pv", "present value", fv.PresentValue)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.Recent(historyPageSize)
	if err != nil {
		Log(r.Context()).Error().Err(err).Msg("failed to read history")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Errors: map[string]string{
			"history": "failed to read history",
		}})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

type indexData struct {
	Options     []fv.Option
	Selected    string
	Principal   string
	Years       string
	RatePercent float64
	Result      computeResponse
	History     []storage.Entry
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	principal, _ := fv.ParseAmount("Principal amount", defaultPrincipal)
	years, _ := fv.ParseAmount("Number of years", defaultYears)

	result, err := fv.FutureValue(principal, defaultRatePercent/100, fv.Annual, years)
	if err != nil {
		Log(r.Context()).Error().Err(err).Msg("failed to compute default result")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	history, err := s.history.Recent(5)
	if err != nil {
		Log(r.Context()).Warn().Err(err).Msg("failed to read history")
	}

	data := indexData{
		Options:     fv.Options(),
		Selected:    "annual",
		Principal:   defaultPrincipal,
		Years:       defaultYears,
		RatePercent: defaultRatePercent,
		Result: computeResponse{
			Value:     result,
			Formatted: fv.FormatUSD(result),
			Description: fmt.Sprintf("%s future value of %s at %.3f%% for %g years",
				fv.Annual, "$1,000.00", defaultRatePercent, years),
		},
		History: history,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.render(w, "index.html.tmpl", data); err != nil {
		Log(r.Context()).Error().Err(err).Msg("failed to render index")
	}
}
