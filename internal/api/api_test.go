// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/features"
	"github.com/tomtom215/fleetids/internal/ingest"
	"github.com/tomtom215/fleetids/internal/live"
	"github.com/tomtom215/fleetids/internal/modeldir"
	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/taxonomy"
	ws "github.com/tomtom215/fleetids/internal/websocket"
)

// payloads per category: legal values first, then intrusions from index 2.
var payloads = map[taxonomy.SourceCategory][]string{
	taxonomy.CategoryGenerator:       {"1", "2", "1000", "1200"},
	taxonomy.CategoryColour:          {"10,10,10", "20,20,20", "255,0,0"},
	taxonomy.CategoryPoseCountryCode: {"DE", "FR", "ZZ"},
	taxonomy.CategoryPosePOI:         {"bank,success", "cafe,success", "police,closed"},
	taxonomy.CategoryPoseTSP:         {"1,1,2,2", "3,3,4,4", "5,5,5,5"},
}

var intrusionLabel = map[taxonomy.SourceCategory]models.Label{
	taxonomy.CategoryGenerator:       "huge-error",
	taxonomy.CategoryColour:          "red",
	taxonomy.CategoryPoseCountryCode: "jump",
	taxonomy.CategoryPosePOI:         "illegaltype",
	taxonomy.CategoryPoseTSP:         "routetoself",
}

type testServer struct {
	handler http.Handler
	engine  *classifier.Engine
	tax     *taxonomy.Taxonomy
	alerts  string
}

func newTestServer(t *testing.T, opts ...HandlerOption) *testServer {
	t.Helper()
	tax, err := taxonomy.Default()
	if err != nil {
		t.Fatal(err)
	}
	store, err := modeldir.NewFileDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	provider := classifier.NewOptionsProvider(classifier.Options{Taxonomy: tax, Store: store})
	engine, err := provider.Engine(context.Background())
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	alerts := filepath.Join(t.TempDir(), "log")
	d := live.NewDispatcher(provider, live.Config{Dir: alerts})
	h, err := NewHandler(provider, d, opts...)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true
	return &testServer{handler: NewRouter(h, cfg), engine: engine, tax: tax, alerts: alerts}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp models.APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s response: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, resp
}

func entry(appID, payload string, c taxonomy.SourceCategory) models.LogEntry {
	e := models.LogEntry{
		VIN:        "A123456",
		AppID:      appID,
		Level:      models.LevelDefault,
		LogMessage: payload,
		TimeUnix:   1514764800,
	}
	if c.IsPose() {
		e.GPSPosition = models.StringPtr("10,20")
	}
	return e
}

func trainingSet(tax *taxonomy.Taxonomy) []models.LogEntry {
	var entries []models.LogEntry
	for _, id := range tax.SourceIDs() {
		c, _ := tax.Category(id)
		p := payloads[c]
		for i, payload := range p {
			e := entry(id+"_1", payload, c)
			label := models.Label("normal")
			if i >= 2 {
				label = intrusionLabel[c]
			}
			e.Intrusion = models.LabelPtr(label)
			entries = append(entries, e)
		}
	}
	return entries
}

func decodeData(t *testing.T, resp models.APIResponse, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatal(err)
	}
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	t.Parallel()
	d := live.NewDispatcher(nil, live.Config{Dir: t.TempDir()})
	if _, err := NewHandler(nil, d); err == nil {
		t.Error("expected error for nil engine source")
	}
	if _, err := NewHandler(classifier.NewProvider(nil), nil); err == nil {
		t.Error("expected error for nil dispatcher")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health models.HealthResponse
	decodeData(t, resp, &health)
	if health.Status != "healthy" || health.Learner {
		t.Errorf("health = %+v, want healthy without learner", health)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestHealth_DegradedWhenEngineFails(t *testing.T) {
	t.Parallel()
	provider := classifier.NewProvider(func(context.Context) (*classifier.Engine, error) {
		return nil, classifier.ErrIntegrity
	})
	h, err := NewHandler(provider, live.NewDispatcher(provider, live.Config{Dir: t.TempDir()}))
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(h, DefaultConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Errorf("body = %s, want degraded", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), ErrCodeIntegrity) {
		t.Errorf("status: %d %s, want 500 %s", rec.Code, rec.Body.String(), ErrCodeIntegrity)
	}
}

func TestResetModels_RecoversAfterFailedBuild(t *testing.T) {
	t.Parallel()
	tax, err := taxonomy.Default()
	if err != nil {
		t.Fatal(err)
	}
	store, err := modeldir.NewFileDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	builds := 0
	provider := classifier.NewProvider(func(ctx context.Context) (*classifier.Engine, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("store temporarily unavailable")
		}
		return classifier.NewEngine(ctx, classifier.Options{Taxonomy: tax, Store: store})
	})
	h, err := NewHandler(provider, live.NewDispatcher(provider, live.Config{Dir: t.TempDir()}))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true
	s := &testServer{handler: NewRouter(h, cfg), tax: tax}

	rec, _ := s.do(t, http.MethodPost, "/api/v1/models/reset", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("first reset: status = %d, want 503 (%s)", rec.Code, rec.Body.String())
	}
	rec, resp := s.do(t, http.MethodPost, "/api/v1/models/reset", nil)
	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("second reset: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if builds != 2 {
		t.Errorf("builds = %d, want 2", builds)
	}
}

func TestClassify_WithoutModels(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	errEntry := entry("GAUSSIAN_1", "3.5", taxonomy.CategoryGenerator)
	errEntry.Level = models.LevelError
	rec, resp := s.do(t, http.MethodPost, "/api/v1/classify", errEntry)
	if rec.Code != http.StatusOK {
		t.Fatalf("ERROR level: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result models.IdsResult
	decodeData(t, resp, &result)
	if result.Classification != models.ClassificationIntrusion || result.Confidence != 100 {
		t.Errorf("result = %+v, want intrusion 100", result)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/v1/classify", entry("GAUSSIAN_1", "3.5", taxonomy.CategoryGenerator))
	if rec.Code != http.StatusConflict || resp.Error == nil || resp.Error.Code != ErrCodePrecondition {
		t.Errorf("DEFAULT level without learner: %d %+v, want 409 %s", rec.Code, resp.Error, ErrCodePrecondition)
	}
}

func TestClassify_BadRequests(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
		code string
	}{
		{"malformed json", `{"vin":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"invalid vin", func() models.LogEntry {
			e := entry("GAUSSIAN_1", "1", taxonomy.CategoryGenerator)
			e.VIN = "X"
			return e
		}(), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad level", `{"vin":"A123456","app_id":"GAUSSIAN_1","level":"WARN","log_message":"1"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := s.do(t, http.MethodPost, "/api/v1/classify", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.code)
			}
		})
	}
}

func TestTrainScoreClassifyReset(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	entries := trainingSet(s.tax)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/train", models.TrainRequest{Entries: entries})
	if rec.Code != http.StatusOK {
		t.Fatalf("train: %d %s", rec.Code, rec.Body.String())
	}
	var train models.TrainResponse
	decodeData(t, resp, &train)
	if train.ModelType != models.ModelTypeTwoClass || len(train.Sources) != len(s.tax.SourceIDs()) {
		t.Errorf("train = %+v", train)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/train", models.TrainRequest{Entries: entries})
	if rec.Code != http.StatusConflict {
		t.Errorf("second train without extend: status = %d, want 409", rec.Code)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/v1/score", models.ScoreRequest{Entries: entries})
	if rec.Code != http.StatusOK {
		t.Fatalf("score: %d %s", rec.Code, rec.Body.String())
	}
	var score models.ScoreResponse
	decodeData(t, resp, &score)
	if score.Accuracy != 1.0 {
		t.Errorf("accuracy = %v, want 1.0 (%v)", score.Accuracy, score.PerSource)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/v1/classify", entry("GAUSSIAN_1", "1100", taxonomy.CategoryGenerator))
	if rec.Code != http.StatusOK {
		t.Fatalf("classify: %d %s", rec.Code, rec.Body.String())
	}
	var result models.IdsResult
	decodeData(t, resp, &result)
	if result.Classification != models.ClassificationIntrusion || result.Confidence != 70 {
		t.Errorf("classify = %+v, want intrusion 70", result)
	}

	rec, resp = s.do(t, http.MethodGet, "/api/v1/status", nil)
	var status models.StatusResponse
	decodeData(t, resp, &status)
	if rec.Code != http.StatusOK || status.StoreStatus != models.StoreStatusAll || status.Loaded != len(s.tax.SourceIDs()) {
		t.Errorf("status = %d %+v", rec.Code, status)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/v1/models/reset", nil)
	var msg models.MessageResponse
	decodeData(t, resp, &msg)
	if rec.Code != http.StatusOK || !strings.HasPrefix(msg.Message, "Models: deleted") {
		t.Errorf("reset = %d %+v", rec.Code, msg)
	}
	if s.engine.HasLearner() {
		t.Error("engine still has a learner after reset")
	}
}

func TestLogs_WritesAlertsAndResets(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	errEntry := entry("COLOUR_2", "255,0,0", taxonomy.CategoryColour)
	errEntry.Level = models.LevelError
	rec, resp := s.do(t, http.MethodPost, "/api/v1/logs", models.LogsRequest{Entries: []models.LogEntry{errEntry}})
	if rec.Code != http.StatusOK {
		t.Fatalf("logs: %d %s", rec.Code, rec.Body.String())
	}
	var logs models.LogsResponse
	decodeData(t, resp, &logs)
	if logs.Processed != 1 || len(logs.Alerts) != 1 {
		t.Fatalf("logs = %+v, want one alert", logs)
	}
	if _, err := os.Stat(logs.Alerts[0]); err != nil {
		t.Errorf("alert file: %v", err)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/v1/alerts/reset", nil)
	var msg models.MessageResponse
	decodeData(t, resp, &msg)
	if rec.Code != http.StatusOK || !strings.HasPrefix(msg.Message, "Intrusion logs: Moved 1 file to ") {
		t.Errorf("alerts reset = %d %q", rec.Code, msg.Message)
	}
}

func TestLogs_PublishesWhenConfigured(t *testing.T) {
	t.Parallel()
	source := ingest.NewGoChannelSource(nil)
	t.Cleanup(func() { _ = source.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	msgs, err := source.Subscriber.Subscribe(ctx, "fleet_logs")
	if err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t, WithPublisher(ingest.NewPublisher(source.Publisher, "fleet_logs")))
	e := entry("ZIPF_3", "7", taxonomy.CategoryGenerator)
	rec, resp := s.do(t, http.MethodPost, "/api/v1/logs", models.LogsRequest{Entries: []models.LogEntry{e}})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("logs: %d %s", rec.Code, rec.Body.String())
	}
	var logs models.LogsResponse
	decodeData(t, resp, &logs)
	if logs.Queued != 1 {
		t.Errorf("queued = %d, want 1", logs.Queued)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		got, err := ingest.DecodeEntry(msg.Payload)
		if err != nil || got.AppID != "ZIPF_3" {
			t.Errorf("published entry = %+v, %v", got, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("entry was not published")
	}
}

func TestAlertStream(t *testing.T) {
	t.Parallel()
	tax, err := taxonomy.Default()
	if err != nil {
		t.Fatal(err)
	}
	store, err := modeldir.NewFileDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	provider := classifier.NewOptionsProvider(classifier.Options{Taxonomy: tax, Store: store})

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Serve(ctx) }()

	d := live.NewDispatcher(provider, live.Config{Dir: filepath.Join(t.TempDir(), "log")}, live.WithNotifiers(hub))
	h, err := NewHandler(provider, d, WithAlertStream(hub, []string{"*"}))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true
	server := httptest.NewServer(NewRouter(h, cfg))
	t.Cleanup(server.Close)

	header := http.Header{"Origin": []string{"http://dashboard.local"}}
	conn, resp, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/api/v1/alerts/stream", header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("stream client not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	read := func() ws.Message {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error: %v", err)
		}
		return msg
	}

	errEntry := entry("COLOUR_2", "255,0,0", taxonomy.CategoryColour)
	errEntry.Level = models.LevelError
	body, _ := json.Marshal(models.LogsRequest{Entries: []models.LogEntry{errEntry}})
	post, err := http.Post(server.URL+"/api/v1/logs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	_ = post.Body.Close()
	if post.StatusCode != http.StatusOK {
		t.Fatalf("logs status = %d", post.StatusCode)
	}
	if msg := read(); msg.Type != ws.MessageTypeAlert {
		t.Errorf("first frame type = %q, want alert", msg.Type)
	}

	post, err = http.Post(server.URL+"/api/v1/alerts/reset", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = post.Body.Close()
	msg := read()
	data, _ := msg.Data.(map[string]any)
	text, _ := data["message"].(string)
	if msg.Type != ws.MessageTypeAlertsReset || !strings.HasPrefix(text, "Intrusion logs: Moved 1 file") {
		t.Errorf("reset frame = %+v", msg)
	}
}

func TestRouting(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/train", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/status/requests", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/alerts/stream", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec, _ := s.do(t, tt.method, tt.path, nil)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()
	tax, _ := taxonomy.Default()
	store, _ := modeldir.NewFileDirectory(t.TempDir())
	provider := classifier.NewOptionsProvider(classifier.Options{Taxonomy: tax, Store: store})
	h, err := NewHandler(provider, live.NewDispatcher(provider, live.Config{Dir: t.TempDir()}))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 16
	router := NewRouter(h, cfg)

	body, _ := json.Marshal(entry("GAUSSIAN_1", "1", taxonomy.CategoryGenerator))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/classify", bytes.NewReader(body)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{classifier.ErrTrainingInProgress, http.StatusConflict, ErrCodeTrainingInProgress},
		{classifier.ErrModelsExist, http.StatusConflict, ErrCodePrecondition},
		{classifier.ErrNotImplemented, http.StatusNotImplemented, ErrCodeNotImplemented},
		{features.ErrInvalidVIN, http.StatusUnprocessableEntity, ErrCodeEncoding},
		{classifier.ErrIntegrity, http.StatusInternalServerError, ErrCodeIntegrity},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		status, code := classifyError(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("classifyError(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}
