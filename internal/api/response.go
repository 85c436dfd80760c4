// Package api implements HTTP handlers for the exchange rate history service.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Exchange rate not found."`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// rateNumber renders a rate as a JSON number with its significant digits.
// Whole values keep a ".0" so clients always see a float.
func rateNumber(d decimal.Decimal) json.Number {
	s := d.String()
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return json.Number(s)
}
