package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/server"
	servertest "github.com/kbukum/tashkeel/server/testutil"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/tashkeel/tashkeeltest"
	"github.com/kbukum/tashkeel/testutil"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestHandler(t *testing.T, backend *tashkeeltest.Backend, mutate func(*server.Config)) *servertest.Component {
	t.Helper()
	reg := tashkeel.NewRegistry()
	reg.RegisterFactory(backend.Name(), func(map[string]any) (tashkeel.Backend, error) { return backend, nil })

	c := tashkeel.NewComponent(tashkeel.Config{Priority: []string{backend.Name()}},
		tashkeel.WithLogger(logger.NewNop()), tashkeel.WithRegistry(reg))
	testutil.T(t).Setup(c)

	return newHandlerFor(t, c, mutate)
}

func newHandlerFor(t *testing.T, engines EngineSource, mutate func(*server.Config)) *servertest.Component {
	t.Helper()
	cfg := server.Config{}
	cfg.ApplyDefaults()
	if mutate != nil {
		mutate(&cfg)
	}
	srv := servertest.NewComponent(cfg)
	Register(srv.Server(), engines, logger.NewNop())
	testutil.T(t).Setup(srv)
	return srv
}

// send sends body to the test server and returns the raw response.
func send(t *testing.T, srv *servertest.Component, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.BaseURL()+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func do(t *testing.T, srv *servertest.Component, method, path string, body any) (int, envelope) {
	t.Helper()
	resp := send(t, srv, method, path, body)
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("invalid JSON %q: %v", raw, err)
	}
	return resp.StatusCode, env
}

func failOn(input string) func(context.Context, string) (string, error) {
	return func(_ context.Context, text string) (string, error) {
		if text == input {
			return "", errors.New("model crashed")
		}
		return tashkeeltest.MarkAll(text), nil
	}
}

func TestDiacritize(t *testing.T) {
	h := newTestHandler(t, tashkeeltest.New("model"), nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/diacritize", DiacritizeRequest{Text: "كتب"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp DiacritizeResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Text != tashkeeltest.MarkAll("كتب") {
		t.Errorf("expected marked text, got %q", resp.Text)
	}
	if resp.ModelName != "model-model" || !resp.UsedModel {
		t.Errorf("unexpected result %+v", resp.Result)
	}
	if resp.Coverage != 1 {
		t.Errorf("expected full coverage, got %v", resp.Coverage)
	}
	if resp.Fallback {
		t.Error("expected no fallback")
	}
}

func TestDiacritize_FailureKeepsInput(t *testing.T) {
	model := tashkeeltest.New("model")
	model.Fn = failOn("درس")
	h := newTestHandler(t, model, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/diacritize", DiacritizeRequest{Text: "درس"})
	if code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", code)
	}
	if env.Error == nil || env.Error.Code != "DIACRITIZATION_FAILED" {
		t.Fatalf("unexpected error %+v", env.Error)
	}
	if env.Error.Details["input"] != "درس" {
		t.Errorf("expected input in details, got %v", env.Error.Details["input"])
	}
}

func TestDiacritize_FallbackOnError(t *testing.T) {
	model := tashkeeltest.New("model")
	model.Fn = failOn("درس")
	h := newTestHandler(t, model, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/diacritize",
		DiacritizeRequest{Text: "درس", FallbackOnError: true})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp DiacritizeResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Fallback || resp.UsedModel {
		t.Errorf("expected heuristic fallback, got %+v", resp)
	}
	if resp.Backend != "heuristic" {
		t.Errorf("expected heuristic backend, got %q", resp.Backend)
	}
}

func TestDiacritize_InvalidRequests(t *testing.T) {
	h := newTestHandler(t, tashkeeltest.New("model"), func(c *server.Config) {
		c.MaxTextLength = 5
		c.MaxBodySize = "64B"
	})

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"malformed", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing text", map[string]any{}, http.StatusBadRequest, "INVALID_INPUT"},
		{"too long", DiacritizeRequest{Text: "كتب كتب"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"body too large", DiacritizeRequest{Text: string(bytes.Repeat([]byte("a"), 200))}, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, "/api/v1/diacritize", tt.body)
			if code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, code)
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("expected %s, got %+v", tt.wantErr, env.Error)
			}
		})
	}
}

func TestDiacritizeBatch(t *testing.T) {
	model := tashkeeltest.New("model")
	model.Fn = failOn("درس")
	h := newTestHandler(t, model, nil)

	texts := []string{"كتب", "درس", "", "قرأ"}
	code, env := do(t, h, http.MethodPost, "/api/v1/diacritize/batch", BatchRequest{Texts: texts})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp BatchResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != len(texts) {
		t.Fatalf("expected %d items, got %d", len(texts), len(resp.Items))
	}
	if resp.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", resp.Failed)
	}
	for i, item := range resp.Items {
		if item.Input != texts[i] {
			t.Errorf("item %d: expected input %q, got %q", i, texts[i], item.Input)
		}
	}
	if resp.Items[1].Error == nil || resp.Items[1].Result != nil {
		t.Errorf("expected error only for item 1, got %+v", resp.Items[1])
	}
	if resp.Items[0].Result == nil || resp.Items[0].Result.Text != tashkeeltest.MarkAll("كتب") {
		t.Errorf("unexpected item 0 %+v", resp.Items[0])
	}
	if resp.Items[2].Result == nil || resp.Items[2].Result.Text != "" {
		t.Errorf("expected empty input to pass through, got %+v", resp.Items[2])
	}
}

func TestDiacritizeBatch_FallbackOnError(t *testing.T) {
	model := tashkeeltest.New("model")
	model.Fn = failOn("درس")
	h := newTestHandler(t, model, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/diacritize/batch",
		BatchRequest{Texts: []string{"درس", "كتب"}, FallbackOnError: true})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp BatchResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Failed != 0 {
		t.Errorf("expected no failures, got %d", resp.Failed)
	}
	if r := resp.Items[0].Result; r == nil || !r.Fallback {
		t.Errorf("expected fallback result, got %+v", resp.Items[0])
	}
	if r := resp.Items[1].Result; r == nil || r.Fallback || !r.UsedModel {
		t.Errorf("expected model result, got %+v", resp.Items[1])
	}
}

func TestDiacritizeBatch_Limits(t *testing.T) {
	h := newTestHandler(t, tashkeeltest.New("model"), func(c *server.Config) {
		c.MaxBatchSize = 2
	})

	tests := []struct {
		name  string
		texts []string
	}{
		{"empty", []string{}},
		{"too many", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, "/api/v1/diacritize/batch", BatchRequest{Texts: tt.texts})
			if code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
			if env.Error == nil {
				t.Error("expected error body")
			}
		})
	}
}

func TestStrip(t *testing.T) {
	h := newTestHandler(t, tashkeeltest.New("model"), nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/strip", StripRequest{Text: tashkeeltest.MarkAll("كتب")})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp StripResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Text != "كتب" {
		t.Errorf("expected %q, got %q", "كتب", resp.Text)
	}
}

func TestBackend(t *testing.T) {
	h := newTestHandler(t, tashkeeltest.New("model"), nil)

	code, env := do(t, h, http.MethodGet, "/api/v1/backend", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp BackendResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Active.Name != "model" || !resp.Active.UsedModel {
		t.Errorf("unexpected active backend %+v", resp.Active)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Name != "model" {
		t.Errorf("unexpected candidates %+v", resp.Candidates)
	}
}

type noEngine struct{}

func (noEngine) Engine() *tashkeel.Engine { return nil }

func TestEngineNotStarted(t *testing.T) {
	h := newHandlerFor(t, noEngine{}, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/diacritize", DiacritizeRequest{Text: "كتب"})
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("unexpected error %+v", env.Error)
	}
}
