package scraper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatchesSentinelForKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("map listing: %w", NewError(KindMissingName, nil))
	require.ErrorIs(t, err, ErrMissingName)
	require.NotErrorIs(t, err, ErrMissingListing)
	require.Equal(t, KindMissingName, KindOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := &Error{Kind: KindTransport, URL: "https://example.com", Err: cause}
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrTransport)
	require.Equal(t, "TransportFailure: connection reset", err.Error())
	require.Equal(t, "connection reset", err.Detail())
}

func TestErrorFormatsStatus(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindFetch, URL: "https://example.com", Status: 404}
	require.Equal(t, "FetchFailure (status 404)", err.Error())
	require.Equal(t, "status 404", err.Detail())
}

func TestErrorDetailPrefersStatusOverCause(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindFetch, Status: 503, Err: errors.New("Service Unavailable")}
	require.Equal(t, "status 503", err.Detail())
	require.Equal(t, "FetchFailure (status 503): Service Unavailable", err.Error())
}

func TestKindOfUnknown(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestWithURLDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	orig := NewError(KindMarkerNotFound, nil)
	annotated := WithURL(orig, "https://example.com/rooms/1")

	var se *Error
	require.ErrorAs(t, annotated, &se)
	require.Equal(t, "https://example.com/rooms/1", se.URL)
	require.Empty(t, orig.URL)

	plain := errors.New("plain")
	require.Same(t, plain, WithURL(plain, "https://example.com"))
}

func TestStatsMerge(t *testing.T) {
	t.Parallel()

	var total Stats
	a := Stats{Attempted: 3, Rendered: 2}
	a.RecordFailure(KindFetch)
	b := Stats{Attempted: 2}
	b.RecordFailure(KindFetch)
	b.RecordFailure(KindMissingName)

	total.Merge(a)
	total.Merge(b)

	require.Equal(t, 5, total.Attempted)
	require.Equal(t, 2, total.Rendered)
	require.Equal(t, 3, total.Failed)
	require.Equal(t, map[Kind]int{KindFetch: 2, KindMissingName: 1}, total.Failures)
}

func TestNewSummaryDefaults(t *testing.T) {
	t.Parallel()

	s := NewSummary("Flat")
	require.Equal(t, NotFound, s.PropertyType)
	require.Equal(t, NotFound, s.Rooms)
	require.Equal(t, NotFound, s.Bathrooms)
	require.Empty(t, s.GeneralAmenities)
	require.NotNil(t, s.FamilyAmenities)
}

func TestEveryKindHasSentinel(t *testing.T) {
	t.Parallel()

	kinds := []Kind{
		KindTransport, KindFetch, KindMarkerNotFound, KindMalformedPayload,
		KindMissingListing, KindMissingName, KindOutput,
	}
	for _, kind := range kinds {
		sentinel, ok := sentinels[kind]
		require.True(t, ok, kind)
		require.ErrorIs(t, NewError(kind, nil), sentinel)
	}
	require.NotErrorIs(t, NewError(KindUnknown, nil), ErrTransport)
}
