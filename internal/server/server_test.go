package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/config"
	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/pipeline"
	"github.com/sells-group/lead-cli/internal/scorer"
	"github.com/sells-group/lead-cli/internal/suggest"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:        0,
		CORSOrigins: []string{"*"},
		MaxUploadMB: 1,
		RateLimit:   config.RateLimitConfig{Requests: 1000, Interval: time.Minute},
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig) (*httptest.Server, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	p := pipeline.New(scorer.NewDefault(),
		pipeline.WithClock(func() time.Time { return fixedNow }),
		pipeline.WithLocation(time.UTC),
		pipeline.WithRecorder(m),
	)
	s := New(cfg, Deps{
		Pipeline: p,
		Selector: suggest.NewDefaultSelector(),
		Metrics:  m,
		Gatherer: reg,
	})

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestScore_JSON(t *testing.T) {
	t.Parallel()

	ts, reg := newTestServer(t, testConfig())
	body := `{"leads": [
		{"name": "A", "contact": "9876543210", "product_interest": "Insurance", "lead_source": "Referral", "last_contact_date": "2024-03-15"},
		{"name": "B", "contact": "9876543211", "product_interest": "Other", "lead_source": "Cold Call", "last_contact_date": "2023-12-06"}
	]}`
	resp := postJSON(t, ts.URL+"/v1/leads/score", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[ScoreResponse](t, resp)
	assert.Equal(t, intake.ValidatedMessage, got.Message)
	require.Len(t, got.Leads, 2)
	assert.Equal(t, 95, *got.Leads[0].Score)
	assert.Equal(t, model.StatusHot, got.Leads[0].Status)
	assert.Equal(t, 30, *got.Leads[1].Score)
	assert.Equal(t, model.StatusCold, got.Leads[1].Status)
	assert.Contains(t, got.Columns, model.ColStatus)
	assert.Equal(t, 1, got.Summary.Hot)
	assert.Equal(t, 1, got.Summary.Cold)
	assert.Len(t, got.Summary.Recommendations, 2)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(families, "leads_batches_total", "outcome", "scored"))
	assert.Equal(t, 1.0, counterValue(families, "leads_scored_total", "status", "Hot"))
}

func TestScore_Rejected(t *testing.T) {
	t.Parallel()

	ts, reg := newTestServer(t, testConfig())
	body := `[{"name": "John Doe", "contact": "9876543210"}, {"name": "Jane Smith", "contact": "jane@example.com"}]`
	resp := postJSON(t, ts.URL+"/v1/leads/score", body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	got := decode[RejectionResponse](t, resp)
	assert.Equal(t, intake.KindInvalidContact, got.Kind)
	assert.Equal(t, 1, got.Invalid)
	assert.Contains(t, got.Message, "Invalid phone number format for 1 leads")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(families, "leads_batches_total", "outcome", "rejected"))
}

func TestScore_MissingColumn(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp := postJSON(t, ts.URL+"/v1/leads/score", `[{"name": "A"}]`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	got := decode[RejectionResponse](t, resp)
	assert.Equal(t, intake.KindMissingField, got.Kind)
	assert.Equal(t, "Missing required column: Contact", got.Message)
}

func TestScore_EmptyBatch(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp := postJSON(t, ts.URL+"/v1/leads/score", `{"leads": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	// An empty array has no columns at all.
	assert.Equal(t, intake.KindMissingField, decode[RejectionResponse](t, resp).Kind)
}

func TestScore_BadJSON(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp := postJSON(t, ts.URL+"/v1/leads/score", `{"leads": [`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], "Error processing file")
}

func multipartUpload(t *testing.T, url, filename, content string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func TestScore_MultipartCSV(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	csv := "Name,Contact,Lead Source,Agent\nA,9876543210,Website,Ravi\nB,Ph 9876543210,,Sita\n"
	resp := multipartUpload(t, ts.URL+"/v1/leads/score", "leads.csv", csv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[ScoreResponse](t, resp)
	assert.Equal(t, []string{"Name", "Contact", "Lead Source", "Agent", "Score", "Status"}, got.Columns)
	require.Len(t, got.Leads, 2)
	// Nothing is known about recency or product: 50 + 15 website.
	assert.Equal(t, 65, *got.Leads[0].Score)
	assert.Equal(t, "Ravi", got.Leads[0].Extra["Agent"])
	assert.Equal(t, intake.DefaultLeadSource, got.Leads[1].LeadSource)
}

func TestScore_MultipartUnsupported(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp := multipartUpload(t, ts.URL+"/v1/leads/score", "leads.pdf", "%PDF")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestManual(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp := postJSON(t, ts.URL+"/v1/leads/manual",
		`{"name": "Jane Smith", "contact": "jane@example.com", "product_interest": "Mutual Funds", "lead_source": "Referral"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[struct {
		Message string     `json:"message"`
		Lead    model.Lead `json:"lead"`
	}](t, resp)
	assert.Equal(t, "Jane Smith", got.Lead.Name)
	assert.Equal(t, "2024-03-15", got.Lead.LastContactDate)
	assert.Equal(t, 95, *got.Lead.Score)
	assert.Equal(t, model.StatusHot, got.Lead.Status)
}

func TestManual_Errors(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())

	resp := postJSON(t, ts.URL+"/v1/leads/manual", `{"name": "A"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fe := decode[intake.FormError](t, resp)
	assert.Equal(t, intake.RequiredFieldsMessage, fe.Message)
	assert.Equal(t, "required", fe.Fields["contact"])

	resp = postJSON(t, ts.URL+"/v1/leads/manual", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuggestions(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/v1/suggestions")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[SuggestionsResponse](t, resp)
	assert.Equal(t, "2024-03-15", got.Date)
	require.Len(t, got.Suggestions, 5)
	assert.Equal(t, "Travel Insurance", got.Suggestions[0].Product)
	assert.Equal(t, "Tax-saving ELSS Funds", got.Suggestions[1].Product)
	assert.Equal(t, "Vince Lombardi", got.Quote.Author)

	resp2, err := http.Get(ts.URL + "/v1/suggestions?date=2024-01-01")
	require.NoError(t, err)
	defer resp2.Body.Close() //nolint:errcheck
	got = decode[SuggestionsResponse](t, resp2)
	assert.Equal(t, "Accident Insurance", got.Suggestions[0].Product)
	assert.Len(t, got.Suggestions, 4)
}

func TestSuggestions_BadDate(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/v1/suggestions?date=15-03-2024")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/v1/options")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	got := decode[OptionsResponse](t, resp)
	assert.Equal(t, intake.ProductOptions, got.ProductInterests)
	assert.Equal(t, intake.SourceOptions, got.LeadSources)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	postJSON(t, ts.URL+"/v1/leads/score", `[{"name": "A", "contact": "9876543210"}]`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `leads_batches_total{outcome="scored"} 1`)
	assert.Contains(t, string(body), `leads_request_duration_seconds_count{route="/v1/leads/score"} 1`)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Requests: 2, Interval: time.Hour}
	ts, _ := newTestServer(t, cfg)

	for range 2 {
		resp, err := http.Get(ts.URL + "/v1/options")
		require.NoError(t, err)
		resp.Body.Close() //nolint:errcheck
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/v1/options")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Health checks are not limited.
	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRequestID_Preserved(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t, testConfig())
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/leads/score", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
