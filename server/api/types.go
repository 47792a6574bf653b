package api

import (
	"strconv"

	"github.com/kbukum/tashkeel/arabic"
	apperrors "github.com/kbukum/tashkeel/errors"
	"github.com/kbukum/tashkeel/tashkeel"
)

// DiacritizeRequest is the body of POST /api/v1/diacritize.
type DiacritizeRequest struct {
	Text string `json:"text" validate:"required,utf8"`
	// FallbackOnError answers with the heuristic instead of 502 when the
	// selected backend fails.
	FallbackOnError bool `json:"fallback_on_error"`
}

// DiacritizeResponse is a Result with the share of vocalized letters.
type DiacritizeResponse struct {
	tashkeel.Result
	Coverage float64 `json:"coverage"`
	// Fallback is set when the heuristic answered after a backend failure.
	Fallback bool `json:"fallback,omitempty"`
}

func newDiacritizeResponse(res tashkeel.Result, fallback bool) *DiacritizeResponse {
	return &DiacritizeResponse{Result: res, Coverage: arabic.Coverage(res.Text), Fallback: fallback}
}

// BatchRequest is the body of POST /api/v1/diacritize/batch.
type BatchRequest struct {
	Texts           []string `json:"texts" validate:"required,dive,utf8"`
	FallbackOnError bool     `json:"fallback_on_error"`
}

// BatchItem holds either a result or an error for one input, never both.
type BatchItem struct {
	Input  string               `json:"input"`
	Result *DiacritizeResponse  `json:"result,omitempty"`
	Error  *apperrors.ErrorBody `json:"error,omitempty"`
}

// BatchResponse lists items in request order.
type BatchResponse struct {
	Items  []BatchItem `json:"items"`
	Failed int         `json:"failed"`
}

// StripRequest is the body of POST /api/v1/strip.
type StripRequest struct {
	Text string `json:"text" validate:"required,utf8"`
}

type StripResponse struct {
	Text string `json:"text"`
}

// BackendResponse describes the selected backend and every candidate.
type BackendResponse struct {
	Active     tashkeel.BackendInfo       `json:"active"`
	Candidates []tashkeel.CandidateStatus `json:"candidates"`
}

func fieldIndex(field string, i int) string {
	return field + "[" + strconv.Itoa(i) + "]"
}
