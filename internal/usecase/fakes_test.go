package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// testJPEG returns an 800x600 JPEG.
func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 800; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func det(class string, score float64) entity.Detection {
	return entity.Detection{
		ClassCode: class,
		Score:     score,
		Box:       entity.Box{Left: 10, Right: 110, Top: 20, Bottom: 120},
		Feature:   []float32{0.1, 0.2, 0.3},
	}
}

// eventLog records the order of writes across fakes.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

type fakeQueue struct {
	mu    sync.Mutex
	lists map[string][][]byte
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{lists: make(map[string][][]byte)}
}

func (q *fakeQueue) Push(_ context.Context, queue string, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lists[queue] = append(q.lists[queue], payload)
	return nil
}

// Pop returns immediately when an item is queued and otherwise waits for ctx.
func (q *fakeQueue) Pop(ctx context.Context, queue string) ([]byte, error) {
	q.mu.Lock()
	items := q.lists[queue]
	if len(items) > 0 {
		q.lists[queue] = items[1:]
		q.mu.Unlock()
		return items[0], nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (q *fakeQueue) Size(_ context.Context, queue string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.lists[queue])), nil
}

func (q *fakeQueue) items(queue string) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([][]byte(nil), q.lists[queue]...)
}

type fakeFetcher struct {
	images map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f.images[url]
	if !ok {
		return nil, fmt.Errorf("fetch %s: status 404", url)
	}
	return data, nil
}

type detectCall struct {
	detections []entity.Detection
	err        error
}

// fakeDetector answers calls in order; calls past the script find nothing.
type fakeDetector struct {
	script []detectCall
	calls  int
}

func (d *fakeDetector) Detect(context.Context, []byte) ([]entity.Detection, error) {
	d.calls++
	if d.calls > len(d.script) {
		return []entity.Detection{}, nil
	}
	c := d.script[d.calls-1]
	return append([]entity.Detection(nil), c.detections...), c.err
}

type fakeStorage struct {
	log  *eventLog
	keys []string
	err  error
}

func (s *fakeStorage) Store(_ context.Context, _ []byte, bucket, key string, _ bool) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	if s.log != nil {
		s.log.add("store %s", key)
	}
	return "https://storage.test/" + bucket + "/" + key, nil
}

type fakeImages struct {
	log    *eventLog
	nextID int64
	byID   map[int64]*entity.Image
	err    error
}

func newFakeImages(log *eventLog) *fakeImages {
	return &fakeImages{log: log, nextID: 100, byID: make(map[int64]*entity.Image)}
}

func (r *fakeImages) Create(_ context.Context, img *entity.Image) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	stored := *img
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	r.log.add("image %d", stored.ID)
	return stored.ID, nil
}

func (r *fakeImages) FindByID(_ context.Context, id int64) (*entity.Image, error) {
	img, ok := r.byID[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return img, nil
}

type fakeObjects struct {
	log    *eventLog
	nextID int64
	byID   map[int64]*entity.Object
	order  []int64
}

func newFakeObjects(log *eventLog) *fakeObjects {
	return &fakeObjects{log: log, byID: make(map[int64]*entity.Object)}
}

func (r *fakeObjects) Create(_ context.Context, obj *entity.Object) (int64, error) {
	r.nextID++
	stored := *obj
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	r.log.add("object %d", stored.ID)
	return stored.ID, nil
}

func (r *fakeObjects) SetImageID(_ context.Context, objectID, imageID int64) error {
	obj, ok := r.byID[objectID]
	if !ok {
		return errors.New("record not found")
	}
	id := imageID
	obj.ImageID = &id
	r.log.add("backfill %d->%d", objectID, imageID)
	return nil
}

func (r *fakeObjects) FindOrphans(_ context.Context, limit int) ([]*entity.Object, error) {
	var out []*entity.Object
	for _, id := range r.order {
		if obj := r.byID[id]; obj.ImageID == nil && len(out) < limit {
			out = append(out, obj)
		}
	}
	return out, nil
}

// fakeFeatures rejects features whose object does not exist yet.
type fakeFeatures struct {
	log     *eventLog
	objects *fakeObjects
	created []entity.Feature
}

func (r *fakeFeatures) Create(_ context.Context, f *entity.Feature) (int64, error) {
	if _, ok := r.objects.byID[f.ObjectID]; !ok {
		return 0, fmt.Errorf("feature references missing object %d", f.ObjectID)
	}
	r.created = append(r.created, *f)
	r.log.add("feature %d", f.ObjectID)
	return int64(len(r.created)), nil
}

type fakeProducts struct {
	patches map[string][]entity.ProductPatch
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{patches: make(map[string][]entity.ProductPatch)}
}

func (r *fakeProducts) Update(_ context.Context, productID string, patch entity.ProductPatch) error {
	r.patches[productID] = append(r.patches[productID], patch)
	return nil
}

// flags folds every patch of a product into its final classified/available values.
func (r *fakeProducts) flags(productID string) (classified, available *bool) {
	for _, p := range r.patches[productID] {
		if p.IsClassified != nil {
			classified = p.IsClassified
		}
		if p.IsAvailable != nil {
			available = p.IsAvailable
		}
	}
	return classified, available
}

type fakePool struct {
	mu       sync.Mutex
	requests []string
	err      error
}

func (p *fakePool) RequestSelfTermination(_ context.Context, namespace, workerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, namespace+"/"+workerID)
	return p.err
}

type fakeVersions struct {
	id  string
	err error
}

func (v *fakeVersions) Latest(context.Context) (string, error) {
	return v.id, v.err
}

type fakeSubmissions struct {
	marked map[string]time.Duration
	err    error
}

func newFakeSubmissions() *fakeSubmissions {
	return &fakeSubmissions{marked: make(map[string]time.Duration)}
}

func (s *fakeSubmissions) MarkSubmitted(_ context.Context, productID string, expiry time.Duration) error {
	s.marked[productID] = expiry
	return nil
}

func (s *fakeSubmissions) IsSubmitted(_ context.Context, productID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.marked[productID]
	return ok, nil
}

func (s *fakeSubmissions) RemoveSubmitted(_ context.Context, productID string) error {
	delete(s.marked, productID)
	return nil
}
