package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldCatalogRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]StreamSchema{
			{Stream: "default", Fields: []FieldDescriptor{
				{Name: "status", StreamAlias: "default"},
				{Name: "duration_ms", StreamAlias: "default"},
			}},
			{Stream: "k8s", Fields: []FieldDescriptor{
				{Name: "k8s_namespace", StreamAlias: "k8s"},
			}},
		})
	}))
	defer srv.Close()

	fc := NewFieldCatalog(srv.URL)
	require.True(t, fc.Empty())
	require.NoError(t, fc.Refresh())

	assert.False(t, fc.Empty())
	assert.ElementsMatch(t, []string{"default", "k8s"}, fc.Streams())
	assert.Len(t, fc.Fields("default"), 2)
	assert.True(t, fc.HasField("k8s_namespace"))
	assert.False(t, fc.HasField("nonexistent"))
}

func TestFieldCatalogBreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unavailable", 503)
	}))
	defer srv.Close()

	fc := NewFieldCatalog(srv.URL)
	fc.breaker = NewCircuitBreaker(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.Error(t, fc.Refresh())
	}
	// Breaker is open now; the upstream must not be hit again.
	err := fc.Refresh()
	assert.ErrorContains(t, err, "circuit breaker open")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFieldCatalogRefreshDisabledWithoutURL(t *testing.T) {
	fc := NewFieldCatalog("")
	assert.NoError(t, fc.Refresh())
	assert.True(t, fc.Empty())
}
