package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ratehistory/internal/service"
)

func withPair(req *http.Request, from, to string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("from", from)
	rctx.URLParams.Add("to", to)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func resolvedRate(pair, rate string, inverted bool) *service.ResolvedRate {
	return &service.ResolvedRate{Pair: pair, Rate: decimal.RequireFromString(rate), Inverted: inverted}
}

func TestHandleListCurrencies(t *testing.T) {
	svc := &mockRateService{
		listCodesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"EUR", "GBP", "PLN", "USD"}, nil
		},
		listPairsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"EURUSD", "GBPPLN"}, nil
		},
	}
	handler := HandleListCurrencies(svc, zap.NewNop().Sugar())

	t.Run("codes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/currency/", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		expected := `[{"code":"EUR"},{"code":"GBP"},{"code":"PLN"},{"code":"USD"}]` + "\n"
		if w.Body.String() != expected {
			t.Errorf("Expected body %s, got %s", expected, w.Body.String())
		}
	})

	t.Run("pairs", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/currency/?pairs=true", nil))

		expected := `[{"pair":"EURUSD"},{"pair":"GBPPLN"}]` + "\n"
		if w.Body.String() != expected {
			t.Errorf("Expected body %s, got %s", expected, w.Body.String())
		}
	})

	t.Run("pairs flag other than true lists codes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/currency/?pairs=1", nil))

		var resp []CodeResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp) != 4 {
			t.Errorf("Expected 4 codes, got %d", len(resp))
		}
	})

	t.Run("empty store returns empty array", func(t *testing.T) {
		empty := &mockRateService{
			listCodesFunc: func(ctx context.Context) ([]string, error) { return nil, nil },
		}
		w := httptest.NewRecorder()
		HandleListCurrencies(empty, zap.NewNop().Sugar()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/currency/", nil))

		if w.Body.String() != "[]\n" {
			t.Errorf("Expected empty array, got %s", w.Body.String())
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		failing := &mockRateService{
			listCodesFunc: func(ctx context.Context) ([]string, error) { return nil, service.ErrInternal },
		}
		w := httptest.NewRecorder()
		HandleListCurrencies(failing, zap.NewNop().Sugar()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/currency/", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestHandleGetRate(t *testing.T) {
	t.Run("latest rate", func(t *testing.T) {
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
				if at != nil {
					t.Errorf("Expected latest lookup, got at=%v", at)
				}
				return resolvedRate("EUR/USD", "1.5", false), nil
			},
		}

		req := withPair(httptest.NewRequest(http.MethodGet, "/currency/EUR/USD/", nil), "EUR", "USD")
		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		expected := `{"currency_pair":"EUR/USD","exchange_rate":1.5}` + "\n"
		if w.Body.String() != expected {
			t.Errorf("Expected body %s, got %s", expected, w.Body.String())
		}
	})

	t.Run("inverted rate", func(t *testing.T) {
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
				return resolvedRate("USD/EUR", "0.6", true), nil
			},
		}

		req := withPair(httptest.NewRequest(http.MethodGet, "/currency/USD/EUR/", nil), "USD", "EUR")
		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, req)

		expected := `{"currency_pair":"USD/EUR","exchange_rate":0.6}` + "\n"
		if w.Body.String() != expected {
			t.Errorf("Expected body %s, got %s", expected, w.Body.String())
		}
	})

	t.Run("whole rate is rendered as float", func(t *testing.T) {
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
				return resolvedRate("USD/PLN", "4", true), nil
			},
		}

		req := withPair(httptest.NewRequest(http.MethodGet, "/currency/USD/PLN/", nil), "USD", "PLN")
		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, req)

		expected := `{"currency_pair":"USD/PLN","exchange_rate":4.0}` + "\n"
		if w.Body.String() != expected {
			t.Errorf("Expected body %s, got %s", expected, w.Body.String())
		}
	})

	t.Run("exact hour is passed through", func(t *testing.T) {
		want := time.Date(2024, 11, 19, 14, 0, 0, 0, time.UTC)
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
				if at == nil || !at.Equal(want) {
					t.Errorf("Expected at=%v, got %v", want, at)
				}
				return resolvedRate("EUR/USD", "1.2", false), nil
			},
		}

		req := withPair(httptest.NewRequest(http.MethodGet, "/currency/EUR/USD/?datetime=2024-11-19%2014:00:00", nil), "EUR", "USD")
		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("malformed datetime returns 400", func(t *testing.T) {
		for _, dt := range []string{"2024-11-21%2014:00", "2024-11-21%2014:30:00", "2024-11-21T14:00:00", "yesterday"} {
			req := withPair(httptest.NewRequest(http.MethodGet, "/currency/EUR/USD/?datetime="+dt, nil), "EUR", "USD")
			w := httptest.NewRecorder()
			HandleGetRate(&mockRateService{}).ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: expected status 400, got %d", dt, w.Code)
			}
			expected := `{"error":"Invalid datetime format. Use YYYY-MM-DD HH:00:00."}` + "\n"
			if w.Body.String() != expected {
				t.Errorf("%s: expected body %s, got %s", dt, expected, w.Body.String())
			}
		}
	})

	t.Run("unknown pair returns 404", func(t *testing.T) {
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
				return nil, service.ErrNotFound
			},
		}

		req := withPair(httptest.NewRequest(http.MethodGet, "/currency/JPY/AUD/", nil), "JPY", "AUD")
		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
		expected := `{"error":"Exchange rate not found."}` + "\n"
		if w.Body.String() != expected {
			t.Errorf("Expected body %s, got %s", expected, w.Body.String())
		}
	})

	t.Run("internal error returns 500", func(t *testing.T) {
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
				return nil, service.ErrInternal
			},
		}

		req := withPair(httptest.NewRequest(http.MethodGet, "/currency/EUR/USD/", nil), "EUR", "USD")
		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestHandleCreateRate(t *testing.T) {
	t.Run("stores observation", func(t *testing.T) {
		svc := &mockRateService{
			insertFunc: func(ctx context.Context, c service.RateCandidate) error {
				if c.From != "USD" || c.To != "EUR" || c.Rate.String() != "0.9215" {
					t.Errorf("Unexpected candidate %+v", c)
				}
				if !c.Timestamp.Equal(time.Date(2024, 11, 21, 14, 0, 0, 0, time.UTC)) {
					t.Errorf("Unexpected timestamp %v", c.Timestamp)
				}
				return nil
			},
		}

		body := bytes.NewBufferString(`{"currency_from":"USD","currency_to":"EUR","exchange_rate":0.9215,"datetime":"2024-11-21 14:00:00"}`)
		w := httptest.NewRecorder()
		HandleCreateRate(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/currency/", body))

		if w.Code != http.StatusCreated {
			t.Errorf("Expected status 201, got %d", w.Code)
		}
		var resp CreatedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.CurrencyPair != "USD/EUR" {
			t.Errorf("Expected USD/EUR, got %s", resp.CurrencyPair)
		}
	})

	t.Run("rate given as string keeps its scale", func(t *testing.T) {
		svc := &mockRateService{
			insertFunc: func(ctx context.Context, c service.RateCandidate) error {
				if c.Rate.Exponent() != -4 {
					t.Errorf("Expected exponent -4, got %d", c.Rate.Exponent())
				}
				return nil
			},
		}

		body := bytes.NewBufferString(`{"currency_from":"EUR","currency_to":"USD","exchange_rate":"1.2000","datetime":"2024-11-21 14:00:00"}`)
		w := httptest.NewRecorder()
		HandleCreateRate(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/currency/", body))

		if w.Code != http.StatusCreated {
			t.Errorf("Expected status 201, got %d", w.Code)
		}
	})

	tests := []struct {
		name      string
		body      string
		insertErr error
		status    int
		message   string
	}{
		{
			name:    "invalid JSON",
			body:    `{`,
			status:  http.StatusBadRequest,
			message: "invalid JSON",
		},
		{
			name:    "malformed datetime",
			body:    `{"currency_from":"EUR","currency_to":"USD","exchange_rate":1.2,"datetime":"2024-11-21 14:00"}`,
			status:  http.StatusBadRequest,
			message: "Invalid datetime format. Use YYYY-MM-DD HH:00:00.",
		},
		{
			name:      "validation failure",
			body:      `{"currency_from":"EURO","currency_to":"USD","exchange_rate":1.2,"datetime":"2024-11-21 14:00:00"}`,
			insertErr: fmt.Errorf("%w: currency_from must be a 3-letter code", service.ErrValidation),
			status:    http.StatusBadRequest,
			message:   "invalid exchange rate: currency_from must be a 3-letter code",
		},
		{
			name:      "duplicate in either direction",
			body:      `{"currency_from":"USD","currency_to":"EUR","exchange_rate":1.3,"datetime":"2024-11-21 14:00:00"}`,
			insertErr: service.ErrDuplicateRate,
			status:    http.StatusConflict,
			message:   "This currency pair (or its inverse) already exists.",
		},
		{
			name:      "store failure",
			body:      `{"currency_from":"EUR","currency_to":"USD","exchange_rate":1.2,"datetime":"2024-11-21 14:00:00"}`,
			insertErr: service.ErrInternal,
			status:    http.StatusInternalServerError,
			message:   "Internal error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRateService{
				insertFunc: func(ctx context.Context, c service.RateCandidate) error { return tc.insertErr },
			}
			w := httptest.NewRecorder()
			HandleCreateRate(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/currency/", bytes.NewBufferString(tc.body)))

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error != tc.message {
				t.Errorf("Expected error '%s', got '%s'", tc.message, resp.Error)
			}
		})
	}
}

func TestHandleEnqueueBatch(t *testing.T) {
	const item = `{"currency_from":"EUR","currency_to":"USD","exchange_rate":1.2,"datetime":"2024-11-21 14:00:00"}`

	t.Run("queues every item", func(t *testing.T) {
		svc := &mockRateService{
			enqueueIngestFunc: func(ctx context.Context, cs []service.RateCandidate) (int, error) {
				return len(cs), nil
			},
		}

		body := bytes.NewBufferString(`{"rates":[` + item + `,` + item + `]}`)
		w := httptest.NewRecorder()
		HandleEnqueueBatch(svc, 10).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/currency/batch", body))

		if w.Code != http.StatusAccepted {
			t.Errorf("Expected status 202, got %d", w.Code)
		}
		var resp BatchResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Enqueued != 2 {
			t.Errorf("Expected 2 enqueued, got %d", resp.Enqueued)
		}
	})

	tests := []struct {
		name       string
		body       string
		enqueueErr error
		status     int
	}{
		{"empty batch", `{"rates":[]}`, nil, http.StatusBadRequest},
		{"over the limit", `{"rates":[` + item + `,` + item + `,` + item + `]}`, nil, http.StatusBadRequest},
		{"bad datetime", `{"rates":[{"currency_from":"EUR","currency_to":"USD","exchange_rate":1.2,"datetime":"bad"}]}`, nil, http.StatusBadRequest},
		{"invalid item", `{"rates":[` + item + `]}`, fmt.Errorf("item 0: %w", service.ErrValidation), http.StatusBadRequest},
		{"queue unavailable", `{"rates":[` + item + `]}`, service.ErrInternalQueue, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRateService{
				enqueueIngestFunc: func(ctx context.Context, cs []service.RateCandidate) (int, error) {
					return 0, tc.enqueueErr
				},
			}
			w := httptest.NewRecorder()
			HandleEnqueueBatch(svc, 2).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/currency/batch", bytes.NewBufferString(tc.body)))

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
		})
	}
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HandleHealthz()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestHandleReadyz(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	t.Run("all dependencies reachable", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleReadyz(stubPinger{}, cache, cache).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("store down", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleReadyz(stubPinger{err: errUnreachable}, cache, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	t.Run("cache down", func(t *testing.T) {
		down := miniredis.RunT(t)
		downClient := redis.NewClient(&redis.Options{Addr: down.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = downClient.Close() })
		down.Close()

		w := httptest.NewRecorder()
		HandleReadyz(stubPinger{}, downClient, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Error != "Cache not ready" {
			t.Errorf("Expected 'Cache not ready', got '%s'", resp.Error)
		}
	})
}

func TestOpenAPISpecHandler(t *testing.T) {
	w := httptest.NewRecorder()
	OpenAPISpecHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("Expected status 307, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/swagger/doc.json" {
		t.Errorf("Expected redirect to /swagger/doc.json, got %s", loc)
	}
}
