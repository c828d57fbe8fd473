package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/user/classifier-service/internal/delivery/http/handler"
	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/internal/usecase"
	"github.com/user/classifier-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakeSubmitter struct {
	submitted []string
	forced    bool
	err       error
}

func (s *fakeSubmitter) Submit(_ context.Context, job *entity.Job, force bool) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, job.ProductID)
	s.forced = force
	return nil
}

func (s *fakeSubmitter) Status(_ context.Context, productID string) (string, error) {
	for _, id := range s.submitted {
		if id == productID {
			return "submitted", nil
		}
	}
	return "not_found", nil
}

type fakeInspector struct {
	lastLimit int
}

func (i *fakeInspector) Image(_ context.Context, id int64) (*entity.Image, error) {
	if id != 7 {
		return nil, repository.ErrNotFound
	}
	return &entity.Image{ID: 7, ProductID: "P1", ClassCode: "2", ObjectIDs: []int64{1, 2}, CreatedAt: time.Unix(0, 0)}, nil
}

func (i *fakeInspector) Orphans(_ context.Context, limit int) ([]*entity.Object, error) {
	i.lastLimit = limit
	return []*entity.Object{{ID: 3, ProductID: "P2", ClassCode: "4", StorageKey: "dev/4/x.jpg"}}, nil
}

type fakeQueue struct{ size int64 }

func (q *fakeQueue) Pop(context.Context, string) ([]byte, error) { return nil, errors.New("not used") }
func (q *fakeQueue) Push(context.Context, string, []byte) error { return nil }
func (q *fakeQueue) Size(context.Context, string) (int64, error) { return q.size, nil }

func newTestRouter(submitter *fakeSubmitter, inspector *fakeInspector, checks map[string]handler.HealthCheck) http.Handler {
	state := usecase.NewRunState("worker-1", "index", "v3")
	state.Beat()
	h := handler.NewHandler(submitter, inspector, state, &fakeQueue{size: 4}, "intake", checks)
	return New(h)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSubmitClassify(t *testing.T) {
	submitter := &fakeSubmitter{}
	h := newTestRouter(submitter, &fakeInspector{}, nil)

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"accepted", `{"product":{"id":"P1","main_image":"https://shop.test/p1.jpg"},"force":true}`, nil, http.StatusAccepted},
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"invalid job", `{"product":{"id":"P1"}}`, nil, http.StatusBadRequest},
		{"duplicate", `{"product":{"id":"P2","main_image":"https://shop.test/p2.jpg"}}`, usecase.ErrProductRecentlySubmitted, http.StatusConflict},
		{"queue down", `{"product":{"id":"P3","main_image":"https://shop.test/p3.jpg"}}`, errors.New("redis down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter.err = tt.err
			rec := do(t, h, http.MethodPost, "/api/classify", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if len(submitter.submitted) != 1 || !submitter.forced {
		t.Errorf("submitted = %v forced = %v", submitter.submitted, submitter.forced)
	}
	rec := do(t, h, http.MethodGet, "/api/classify/P1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"current_status":"submitted"`) {
		t.Errorf("status of P1 = %d body = %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/api/classify/P9", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status of P9 = %d", rec.Code)
	}
}

func TestWorkerStatus(t *testing.T) {
	h := newTestRouter(&fakeSubmitter{}, &fakeInspector{}, nil)
	rec := do(t, h, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["worker_id"] != "worker-1" || got["version_id"] != "v3" || got["heartbeat"] != true || got["queue_length"] != float64(4) {
		t.Errorf("body = %v", got)
	}
}

func TestImageAndOrphans(t *testing.T) {
	inspector := &fakeInspector{}
	h := newTestRouter(&fakeSubmitter{}, inspector, nil)

	if rec := do(t, h, http.MethodGet, "/api/images/7", ""); rec.Code != http.StatusOK {
		t.Errorf("image 7 status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/images/8", ""); rec.Code != http.StatusNotFound {
		t.Errorf("image 8 status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/images/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("image abc status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/objects/orphans?limit=5", "")
	if rec.Code != http.StatusOK || inspector.lastLimit != 5 {
		t.Fatalf("orphans status = %d limit = %d", rec.Code, inspector.lastLimit)
	}
	var orphans []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &orphans); err != nil || len(orphans) != 1 {
		t.Errorf("orphans = %s", rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/api/objects/orphans?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	checks := map[string]handler.HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return nil },
	}
	h := newTestRouter(&fakeSubmitter{}, &fakeInspector{}, checks)
	if rec := do(t, h, http.MethodGet, "/api/health", ""); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
	rec := do(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), `"redis":"unhealthy"`) {
		t.Errorf("unhealthy status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&fakeSubmitter{}, &fakeInspector{}, nil)
	do(t, h, http.MethodGet, "/api/status", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
