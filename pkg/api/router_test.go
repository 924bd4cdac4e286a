package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lmt321/lmt321/pkg/core/model"
	"github.com/lmt321/lmt321/pkg/core/services"
	"github.com/lmt321/lmt321/pkg/db"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	jobs := services.NewJobs(db.NewMemoryJobStore(), zap.NewNop())
	return newTestServerWith(t, jobs)
}

func newTestServerWith(t *testing.T, jobs JobService) *httptest.Server {
	t.Helper()
	router := NewRouter(jobs, Options{ServiceName: "LMT321", Version: "v1", RequestTimeout: 5 * time.Second}, zap.NewNop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func fieldNames(t *testing.T, body map[string]any) []string {
	t.Helper()
	fields, ok := body["fields"].([]any)
	require.True(t, ok, "expected fields in %v", body)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.(map[string]any)["field"].(string))
	}
	return names
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LMT321 live", body["status"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "LMT321", body["service"])
	assert.Equal(t, "v1", body["version"])

	ts, err := time.Parse(time.RFC3339Nano, body["ts"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
	assert.True(t, strings.HasSuffix(body["ts"].(string), "Z"))
}

func TestEnginePing(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/engine/ping", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"engine": "ok"}, body)
}

func TestIntakeThenGet(t *testing.T) {
	srv := newTestServer(t)

	status, created := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake",
		`{"client_name":"Jane Doe","headcount":3,"roles_needed":["A1","LD"]}`)
	require.Equal(t, http.StatusOK, status)

	jobID, ok := created["job_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, jobID)
	assert.NotEmpty(t, created["received_at"])

	data := created["data"].(map[string]any)
	assert.Equal(t, "Jane Doe", data["client_name"])
	assert.Equal(t, float64(3), data["headcount"])
	assert.Equal(t, []any{"A1", "LD"}, data["roles_needed"])
	assert.Contains(t, data, "client_email")
	assert.Nil(t, data["client_email"])

	status, got := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs/"+jobID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, jobID, got["job_id"])
	assert.Equal(t, created["received_at"], got["received_at"])
	assert.Equal(t, created["data"], got["data"])
}

func TestIntake_UniqueIDs(t *testing.T) {
	srv := newTestServer(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", fmt.Sprintf(`{"client_name":"Client %d"}`, i))
		require.Equal(t, http.StatusOK, status)
		id := body["job_id"].(string)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestIntake_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"blank client name", `{"client_name":"  "}`, "client_name"},
		{"missing client name", `{"headcount":2}`, "client_name"},
		{"zero headcount", `{"client_name":"Jane","headcount":0}`, "headcount"},
		{"negative headcount", `{"client_name":"Jane","headcount":-1}`, "headcount"},
		{"fractional headcount", `{"client_name":"Jane","headcount":2.5}`, "headcount"},
		{"unknown role", `{"client_name":"Jane","roles_needed":["Juggler"]}`, "roles_needed[0]"},
		{"bad email", `{"client_name":"Jane","client_email":"jane.example.com"}`, "client_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)

			status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.Equal(t, "validation_failed", body["error"])
			assert.Contains(t, fieldNames(t, body), tt.field)

			// Nothing may have been stored
			_, list := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
			assert.Equal(t, float64(0), list["count"])
		})
	}
}

func TestIntake_InvalidJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"truncated object", `{"client_name":`, ""},
		{"empty body", "", "request body is required"},
		{"trailing garbage", `{"client_name":"x"} trailing`, "request body must contain a single JSON object"},
		{"second object", `{"client_name":"x"} {"client_name":"y"}`, "request body must contain a single JSON object"},
		{"array body", `[{"client_name":"x"}]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)

			status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "invalid_json", body["error"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}

			_, list := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
			assert.Equal(t, float64(0), list["count"])
		})
	}
}

func TestIntake_TrailingWhitespaceAccepted(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", "{\"client_name\":\"x\"}\n  \n")
	assert.Equal(t, http.StatusOK, status)
}

func TestIntake_KeysMatchExactly(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", `{"CLIENT_NAME":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, fieldNames(t, body), "client_name")

	// Unknown keys are ignored rather than rejected
	status, body = doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", `{"client_name":"x","Client_Company":"Acme","extra":1}`)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["data"].(map[string]any)["client_company"])

	_, list := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
	assert.Equal(t, float64(1), list["count"])
}

func TestIntake_BodyTooLarge(t *testing.T) {
	jobs := services.NewJobs(db.NewMemoryJobStore(), zap.NewNop())
	router := NewRouter(jobs, Options{ServiceName: "LMT321", Version: "v1"}, zap.NewNop())

	payload := `{"client_name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/intake", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "body_too_large", body["error"])

	summaries, err := jobs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestGetJob_EscapedID(t *testing.T) {
	store := db.NewMemoryJobStore()
	require.NoError(t, store.InsertJob(context.Background(), &model.JobRecord{
		JobID:      "a/b",
		ReceivedAt: time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC),
		Data:       model.JobRequest{ClientName: "Jane", RolesNeeded: []model.Role{}},
	}))
	srv := newTestServerWith(t, services.NewJobs(store, zap.NewNop()))

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs/a%2Fb", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "a/b", body["job_id"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/v1/jobs/c%2Fd", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "c/d", body["job_id"])
}

func TestGetJob_NotFound(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs/does-not-exist", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{
		"ok":     false,
		"error":  "job_not_found",
		"job_id": "does-not-exist",
	}, body)
}

func TestListJobs(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["jobs"])

	var ids []string
	for _, name := range []string{"First", "Second"} {
		_, created := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", fmt.Sprintf(`{"client_name":%q}`, name))
		ids = append(ids, created["job_id"].(string))
	}

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
	assert.Equal(t, float64(2), body["count"])

	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 2)
	for i, j := range jobs {
		entry := j.(map[string]any)
		assert.Equal(t, ids[i], entry["job_id"])
		assert.NotEmpty(t, entry["received_at"])
		assert.NotContains(t, entry, "data")
	}
}

func TestRequestTech(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/request-tech", `{"client_name":"Jane","roles_needed":["Rigger"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["received"])
	assert.True(t, strings.HasPrefix(body["request_id"].(string), "req_"))
	assert.Equal(t, "Jane", body["payload"].(map[string]any)["client_name"])

	// The legacy endpoint never touches the job store
	_, list := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
	assert.Equal(t, float64(0), list["count"])
}

func TestRequestTech_ValidationError(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/request-tech", `{"client_name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, fieldNames(t, body), "client_name")
}

func TestAvailability(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/availability",
		`{"tech_name":"Sam","roles":["A2","Camera Op"],"date":"2025-06-14"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["received"])

	payload := body["payload"].(map[string]any)
	assert.Equal(t, "Sam", payload["tech_name"])
	assert.Equal(t, "2025-06-14", payload["date"])
	assert.Equal(t, true, payload["available"], "available defaults to true")
	assert.Equal(t, []any{"A2", "Camera Op"}, payload["roles"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/availability",
		`{"tech_name":"Sam","date":"2025-06-14","available":false}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["payload"].(map[string]any)["available"])
}

func TestAvailability_ValidationError(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/availability", `{"tech_name":"Sam","date":"June 14"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, fieldNames(t, body), "date")
}

func TestConfirm(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/confirm",
		`{"request_id":"req_unknown","tech_name":"Sam","confirmed":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["received"])

	payload := body["payload"].(map[string]any)
	assert.Equal(t, "req_unknown", payload["request_id"])
	assert.Equal(t, true, payload["confirmed"])
}

func TestConfirm_MissingConfirmed(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/confirm", `{"request_id":"req_1","tech_name":"Sam"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, fieldNames(t, body), "confirmed")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/jobs/intake/extra", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, http.MethodDelete, srv.URL+"/confirm", "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "method_not_allowed", body["error"])
}

// failingJobs implements JobService with a store that always errors
type failingJobs struct {
	panicOnList bool
}

func (f *failingJobs) Intake(ctx context.Context, req model.JobRequest) (*model.JobRecord, error) {
	return nil, fmt.Errorf("failed to store job: connection refused to 10.0.0.5")
}

func (f *failingJobs) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	return nil, fmt.Errorf("failed to query job record: timeout")
}

func (f *failingJobs) List(ctx context.Context) ([]model.JobSummary, error) {
	if f.panicOnList {
		panic("nil map")
	}
	return nil, fmt.Errorf("failed to list jobs: timeout")
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	srv := newTestServerWith(t, &failingJobs{})

	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/jobs/intake", `{"client_name":"Jane"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "internal_error"}, body)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/v1/jobs/abc", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "internal_error"}, body)
}

func TestPanicRecovered(t *testing.T) {
	srv := newTestServerWith(t, &failingJobs{panicOnList: true})

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/jobs", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "internal_error"}, body)
}
