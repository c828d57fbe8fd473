package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, NewProxyManager(nil))
	data, err := f.Fetch(context.Background(), srv.URL+"/a.jpg")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("Fetch() = %q", data)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(time.Second, NewProxyManager(nil))
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("Fetch() error = nil, want status error")
	}
}

func TestProxyRotation(t *testing.T) {
	m := NewProxyManager([]string{"http://p1:8000", "not a url", "http://p2:8000"})

	var hosts []string
	for i := 0; i < 3; i++ {
		u, err := m.Proxy(nil)
		if err != nil || u == nil {
			t.Fatalf("Proxy() = %v, %v", u, err)
		}
		hosts = append(hosts, u.Host)
	}
	want := []string{"p1:8000", "p2:8000", "p1:8000"}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("rotation = %v, want %v", hosts, want)
			break
		}
	}

	if u, _ := NewProxyManager(nil).Proxy(nil); u != nil {
		t.Errorf("Proxy() with no proxies = %v, want nil", u)
	}
}
