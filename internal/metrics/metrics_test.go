package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/rooms/1", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if scraperPagesTotal == nil || scraperFetchDurationSeconds == nil ||
		httpRequestsTotal == nil || scraperActiveWorkers == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObservePage(t *testing.T) {
	Init()

	before := testutil.ToFloat64(scraperPagesTotal.WithLabelValues("pages.test", OutcomeRendered))
	ObservePage("https://pages.test/rooms/1", OutcomeRendered)
	ObservePage("https://PAGES.test/rooms/2", OutcomeRendered)
	after := testutil.ToFloat64(scraperPagesTotal.WithLabelValues("pages.test", OutcomeRendered))
	if after-before != 2 {
		t.Errorf("expected 2 rendered pages, got %f", after-before)
	}
}

func TestObserveFetch(t *testing.T) {
	Init()

	before := testutil.ToFloat64(scraperBytesTotal.WithLabelValues("bytes.test"))
	ObserveFetch("https://bytes.test/rooms/1", 120*time.Millisecond, 2048)
	ObserveFetch("https://bytes.test/rooms/2", time.Millisecond, 0)
	if got := testutil.ToFloat64(scraperBytesTotal.WithLabelValues("bytes.test")) - before; got != 2048 {
		t.Errorf("expected 2048 bytes recorded, got %f", got)
	}
	if n := testutil.CollectAndCount(scraperFetchDurationSeconds); n == 0 {
		t.Error("expected fetch duration to be observed")
	}
}

func TestActiveWorkersGauge(t *testing.T) {
	Init()

	before := testutil.ToFloat64(scraperActiveWorkers)
	IncActiveWorkers()
	if got := testutil.ToFloat64(scraperActiveWorkers); got != before+1 {
		t.Errorf("expected gauge %f, got %f", before+1, got)
	}
	DecActiveWorkers()
	if got := testutil.ToFloat64(scraperActiveWorkers); got != before {
		t.Errorf("expected gauge %f, got %f", before, got)
	}
}

func TestObserveRunAndRetry(t *testing.T) {
	Init()

	runs := testutil.ToFloat64(scraperRunsTotal)
	ObserveRun(3 * time.Second)
	if got := testutil.ToFloat64(scraperRunsTotal); got != runs+1 {
		t.Errorf("expected runs %f, got %f", runs+1, got)
	}

	retries := testutil.ToFloat64(scraperRetriesTotal.WithLabelValues("retry.test"))
	ObserveRetry("https://retry.test/x")
	if got := testutil.ToFloat64(scraperRetriesTotal.WithLabelValues("retry.test")); got != retries+1 {
		t.Errorf("expected retries %f, got %f", retries+1, got)
	}
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://www.airbnb.co.uk/rooms/1", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
