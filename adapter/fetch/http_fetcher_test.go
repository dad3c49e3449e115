package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedsweep/adapter/fetch"
)

func TestFetch_ReturnsBodyAndSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<rss><channel></channel></rss>"))
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher(5*time.Second, "feedsweep-test/1.0")
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "<rss>") {
		t.Errorf("unexpected body: %q", body)
	}
	if gotUA != "feedsweep-test/1.0" {
		t.Errorf("user-agent not sent: got %q", gotUA)
	}
}

func TestFetch_NonSuccessStatusIsError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMovedPermanently} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		if _, err := fetch.NewHTTPFetcher(5*time.Second, "t").Fetch(context.Background(), srv.URL); err == nil {
			t.Errorf("expected error for HTTP %d", status)
		}
		srv.Close()
	}
}

func TestFetch_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := fetch.NewHTTPFetcher(5*time.Second, "t").Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error on context timeout")
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	if _, err := fetch.NewHTTPFetcher(time.Second, "t").Fetch(context.Background(), "http://127.0.0.1:1"); err == nil {
		t.Fatal("expected error on connection refused")
	}
}
