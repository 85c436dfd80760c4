package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ratehistory/internal/api/middleware"
	"ratehistory/internal/service"
)

const (
	msgInvalidDatetime = "Invalid datetime format. Use YYYY-MM-DD HH:00:00."
	msgRateNotFound    = "Exchange rate not found."
	msgDuplicateRate   = "This currency pair (or its inverse) already exists."
	msgInternal        = "Internal error"
)

// CodeResponse is one entry of the currency code listing
type CodeResponse struct {
	Code string `json:"code" example:"EUR"`
}

// PairResponse is one entry of the stored pair listing
type PairResponse struct {
	Pair string `json:"pair" example:"EURUSD"`
}

// RateResponse represents a resolved exchange rate
type RateResponse struct {
	CurrencyPair string      `json:"currency_pair" example:"USD/EUR"`
	ExchangeRate json.Number `json:"exchange_rate" swaggertype:"number" example:"0.8333"`
}

// RateRequest is a single observation submitted for storage
type RateRequest struct {
	CurrencyFrom string          `json:"currency_from" example:"USD"`
	CurrencyTo   string          `json:"currency_to" example:"EUR"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" swaggertype:"number" example:"0.9215"`
	Datetime     string          `json:"datetime" example:"2024-11-21 14:00:00"`
}

// BatchRequest carries observations for asynchronous ingestion
type BatchRequest struct {
	Rates []RateRequest `json:"rates"`
}

// BatchResponse reports how many ingestion tasks were queued
type BatchResponse struct {
	Enqueued int `json:"enqueued" example:"24"`
}

// CreatedResponse echoes a stored observation
type CreatedResponse struct {
	CurrencyPair string `json:"currency_pair" example:"USD/EUR"`
	Datetime     string `json:"datetime" example:"2024-11-21 14:00:00"`
}

func (req RateRequest) candidate() (service.RateCandidate, error) {
	ts, err := service.ParseHour(req.Datetime)
	if err != nil {
		return service.RateCandidate{}, err
	}
	return service.RateCandidate{
		From:      req.CurrencyFrom,
		To:        req.CurrencyTo,
		Rate:      req.ExchangeRate,
		Timestamp: ts,
	}, nil
}

// HandleListCurrencies godoc
// @Summary List currency codes or stored pairs
// @Description Without parameters returns every currency code seen in either position, sorted. With pairs=true returns each stored canonical pair as a concatenated six-letter string.
// @Tags currency
// @Produce json
// @Param pairs query string false "Set to 'true' to list pairs instead of codes"
// @Success 200 {array} CodeResponse "Currency codes"
// @Success 200 {array} PairResponse "Currency pairs (pairs=true)"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currency/ [get]
func HandleListCurrencies(svc service.RateServiceInterface, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pairs") == "true" {
			pairs, err := svc.ListPairs(r.Context())
			if err != nil {
				logger.Errorw("List pairs failed", "request_id", middleware.RequestIDFromContext(r.Context()), "error", err)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
				return
			}
			resp := make([]PairResponse, 0, len(pairs))
			for _, p := range pairs {
				resp = append(resp, PairResponse{Pair: p})
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		codes, err := svc.ListCurrencyCodes(r.Context())
		if err != nil {
			logger.Errorw("List currency codes failed", "request_id", middleware.RequestIDFromContext(r.Context()), "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
			return
		}
		resp := make([]CodeResponse, 0, len(codes))
		for _, c := range codes {
			resp = append(resp, CodeResponse{Code: c})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleGetRate godoc
// @Summary Get the exchange rate for a currency pair
// @Description Returns the latest stored rate for the pair in either direction, or the rate at exactly the given hour. A rate stored in the opposite direction is inverted and truncated to the stored precision.
// @Tags currency
// @Produce json
// @Param from path string true "Currency to convert from" minlength(3) maxlength(3)
// @Param to path string true "Currency to convert to" minlength(3) maxlength(3)
// @Param datetime query string false "Exact hour, format YYYY-MM-DD HH:00:00"
// @Success 200 {object} RateResponse "Rate found"
// @Failure 400 {object} ErrorResponse "Invalid datetime format"
// @Failure 404 {object} ErrorResponse "Exchange rate not found"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currency/{from}/{to}/ [get]
func HandleGetRate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := chi.URLParam(r, "from")
		to := chi.URLParam(r, "to")

		var at *time.Time
		if dt := r.URL.Query().Get("datetime"); dt != "" {
			ts, err := service.ParseHour(dt)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidDatetime})
				return
			}
			at = &ts
		}

		rate, err := svc.Resolve(r.Context(), from, to, at)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msgRateNotFound})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
			}
			return
		}

		writeJSON(w, http.StatusOK, RateResponse{
			CurrencyPair: from + "/" + to,
			ExchangeRate: rateNumber(rate.Rate),
		})
	}
}

// HandleCreateRate godoc
// @Summary Store an exchange rate observation
// @Description Stores one hourly observation. A pair given against canonical order is stored swapped with the exact reciprocal rate. A pair may hold only one rate per hour in either direction.
// @Tags currency
// @Accept json
// @Produce json
// @Param request body RateRequest true "Observation"
// @Success 201 {object} CreatedResponse "Rate stored"
// @Failure 400 {object} ErrorResponse "Invalid observation"
// @Failure 409 {object} ErrorResponse "Pair already has a rate for this hour"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currency/ [post]
func HandleCreateRate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}

		c, err := req.candidate()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidDatetime})
			return
		}

		if err := svc.Insert(r.Context(), c); err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrDuplicateRate):
				writeJSON(w, http.StatusConflict, ErrorResponse{Error: msgDuplicateRate})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
			}
			return
		}

		writeJSON(w, http.StatusCreated, CreatedResponse{
			CurrencyPair: strings.ToUpper(req.CurrencyFrom) + "/" + strings.ToUpper(req.CurrencyTo),
			Datetime:     req.Datetime,
		})
	}
}

// HandleEnqueueBatch godoc
// @Summary Queue observations for asynchronous ingestion
// @Description Validates every observation and queues one ingestion task per item. Nothing is queued if any item is invalid.
// @Tags currency
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Observations"
// @Success 202 {object} BatchResponse "Observations queued"
// @Failure 400 {object} ErrorResponse "Invalid batch"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currency/batch [post]
func HandleEnqueueBatch(svc service.RateServiceInterface, maxBatchSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}
		if len(req.Rates) == 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "rates is required"})
			return
		}
		if len(req.Rates) > maxBatchSize {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "too many rates in one batch"})
			return
		}

		cs := make([]service.RateCandidate, 0, len(req.Rates))
		for i, item := range req.Rates {
			c, err := item.candidate()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "item " + strconv.Itoa(i) + ": " + msgInvalidDatetime})
				return
			}
			cs = append(cs, c)
		}

		n, err := svc.EnqueueIngest(r.Context(), cs)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
			}
			return
		}

		writeJSON(w, http.StatusAccepted, BatchResponse{Enqueued: n})
	}
}
