package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mikey/exam-grader/internal/adapters/cache"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

func newService(t *testing.T) *core.GradingService {
	t.Helper()
	logger := zap.NewNop()
	key, err := core.NewAnswerKey([]core.Question{
		{ID: "Q1", Steps: []core.Step{{Text: "x+1=2", Weight: 0.5}, {Text: "x=1", Weight: 0.5}}},
	})
	if err != nil {
		t.Fatalf("NewAnswerKey: %v", err)
	}
	strategies, err := core.NewStrategies(core.DefaultStrategies, 0.85, nil, logger)
	if err != nil {
		t.Fatalf("NewStrategies: %v", err)
	}
	service, err := core.NewGradingService(key, core.NewMatchCache(cache.NewMemoryStore(logger), logger), strategies, logger, 6.0)
	if err != nil {
		t.Fatalf("NewGradingService: %v", err)
	}
	if err := service.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return service
}

func newServer(t *testing.T, maxRequestSize int64) *httptest.Server {
	t.Helper()
	f := NewHTTPFrontend(newService(t), config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ShutdownTimeout: time.Second,
		MaxRequestSize:  maxRequestSize,
	}, zap.NewNop())
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, URL, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, URL, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, URL, err)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestHTTPGrade(t *testing.T) {
	srv := newServer(t, 1<<20)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantGrade  float64
		wantResult string
	}{
		{name: "full match", body: `{"student_id": "ana", "text": "\\(x+1=2\\) logo \\(x=1\\)"}`, wantStatus: http.StatusOK, wantGrade: 10, wantResult: "pass"},
		{name: "partial", body: `{"student_id": "bia", "text": "\\(x+1=2\\)"}`, wantStatus: http.StatusOK, wantGrade: 5, wantResult: "fail"},
		{name: "missing id", body: `{"text": "x=1"}`, wantStatus: http.StatusBadRequest},
		{name: "bad json", body: `{"student_id": `, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := doRequest(t, http.MethodPost, srv.URL+"/v1/grade", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", resp.StatusCode, tt.wantStatus, out)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if out["final_grade"] != tt.wantGrade || out["status"] != tt.wantResult {
				t.Errorf("unexpected report %v", out)
			}
			if _, ok := out["per_question_scores"]; !ok {
				t.Errorf("report missing per_question_scores: %v", out)
			}
		})
	}
}

func TestHTTPBatchAndKey(t *testing.T) {
	srv := newServer(t, 1<<20)

	resp, out := doRequest(t, http.MethodPost, srv.URL+"/v1/grade/batch",
		`{"submissions": [{"student_id": "ana", "text": "\\(x=1\\)"}, {"text": "nada"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("batch status = %d", resp.StatusCode)
	}
	results, _ := out["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("results = %v", out["results"])
	}
	second, _ := results[1].(map[string]interface{})
	if second["student_id"] != "submission-2" {
		t.Errorf("unnamed submission id = %v", second["student_id"])
	}

	resp, out = doRequest(t, http.MethodGet, srv.URL+"/v1/answer-key", "")
	if resp.StatusCode != http.StatusOK || out["total_weight"] != 1.0 {
		t.Errorf("answer key response %d %v", resp.StatusCode, out)
	}

	resp, out = doRequest(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || out["status"] != "ok" {
		t.Errorf("health response %d %v", resp.StatusCode, out)
	}

	resp, _ = doRequest(t, http.MethodDelete, srv.URL+"/v1/cache", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("clear cache status = %d", resp.StatusCode)
	}
}

func TestHTTPRequestTooLarge(t *testing.T) {
	srv := newServer(t, 64)
	body := `{"student_id": "ana", "text": "` + strings.Repeat("x", 256) + `"}`
	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/v1/grade", body)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[error]int{
		core.ErrMalformedAnswerKey: http.StatusUnprocessableEntity,
		core.ErrServiceClosed:      http.StatusServiceUnavailable,
		context.Canceled:           http.StatusRequestTimeout,
	}
	for err, want := range tests {
		if got := statusFor(err); got != want {
			t.Errorf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestCliFrontend(t *testing.T) {
	logger := zap.NewNop()
	fs := afs.New()
	f, err := NewCliFrontend(newService(t), fs, logger, true)
	if err != nil {
		t.Fatalf("NewCliFrontend: %v", err)
	}
	var out bytes.Buffer
	f.SetOutput(&out)

	report, err := f.ProcessSubmission(context.Background(), core.Submission{StudentID: "ana", Text: `\(x+1=2\) \(x=1\)`})
	if err != nil {
		t.Fatalf("ProcessSubmission: %v", err)
	}
	if report.Status != core.StatusPass {
		t.Errorf("status = %s", report.Status)
	}
	if !strings.Contains(out.String(), "Final grade: 10.00") {
		t.Errorf("missing summary in output:\n%s", out.String())
	}

	results := f.ProcessBatch(context.Background(), []core.Submission{
		{StudentID: "bia", Text: `\(x+1=2\)`},
		{StudentID: "caio", Text: "em branco"},
	})
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	path := filepath.Join(t.TempDir(), "reports.json")
	URL, _ := utils.NormalizeLocation(path)
	if err := f.WriteReports(context.Background(), URL, results); err != nil {
		t.Fatalf("WriteReports: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read reports: %v", err)
	}
	var written []map[string]interface{}
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("decode reports: %v", err)
	}
	if len(written) != 2 || written[0]["student_id"] != "bia" {
		t.Errorf("unexpected reports %v", written)
	}
}

func TestCliFrontendPreviewKeepsRunes(t *testing.T) {
	f, err := NewCliFrontend(newService(t), afs.New(), zap.NewNop(), true)
	if err != nil {
		t.Fatalf("NewCliFrontend: %v", err)
	}
	var out bytes.Buffer
	f.SetOutput(&out)

	// 499 ASCII bytes put the 500-byte cut inside the two-byte "ç"
	text := strings.Repeat("a", previewSize-1) + "ção"
	if _, err := f.ProcessSubmission(context.Background(), core.Submission{StudentID: "davi", Text: text}); err != nil {
		t.Fatalf("ProcessSubmission: %v", err)
	}
	if !utf8.Valid(out.Bytes()) {
		t.Errorf("preview produced invalid UTF-8")
	}
	if !strings.Contains(out.String(), "[... truncated ...]") {
		t.Errorf("long text was not truncated:\n%s", out.String())
	}
}
