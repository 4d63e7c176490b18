package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// FieldCatalog holds the read-only field lists of the streams a dashboard can
// query. The builder core only consults it to validate extracted field names
// on cross-axis moves; everything else reads it for display.
//
// The catalog refreshes from the upstream stream-schema service behind a
// circuit breaker, and can be seeded from a JSON file for air-gapped setups.
type FieldCatalog struct {
	mu      sync.RWMutex
	streams map[string][]FieldDescriptor

	upstreamURL string
	client      *http.Client
	breaker     *CircuitBreaker
}

// NewFieldCatalog creates a catalog that refreshes from upstreamURL. An empty
// URL disables refresh; the catalog then serves only seeded data.
func NewFieldCatalog(upstreamURL string) *FieldCatalog {
	return &FieldCatalog{
		streams:     make(map[string][]FieldDescriptor),
		upstreamURL: upstreamURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		breaker:     NewCircuitBreaker(5, 30*time.Second),
	}
}

// SeedFromFile loads stream schemas from a JSON file of []StreamSchema
func (fc *FieldCatalog) SeedFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var schemas []StreamSchema
	if err := json.Unmarshal(data, &schemas); err != nil {
		return fmt.Errorf("invalid catalog seed file: %w", err)
	}
	fc.mu.Lock()
	for _, s := range schemas {
		fc.streams[s.Stream] = s.Fields
	}
	fc.mu.Unlock()
	LogInfo("Field catalog seeded", map[string]interface{}{
		"path":    path,
		"streams": len(schemas),
	})
	return nil
}

// SetStream replaces one stream's field list
func (fc *FieldCatalog) SetStream(stream string, fields []FieldDescriptor) {
	fc.mu.Lock()
	fc.streams[stream] = fields
	fc.mu.Unlock()
}

// Fields returns a copy of one stream's field list
func (fc *FieldCatalog) Fields(stream string) []FieldDescriptor {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	fields := fc.streams[stream]
	result := make([]FieldDescriptor, len(fields))
	copy(result, fields)
	return result
}

// Streams returns the known stream names
func (fc *FieldCatalog) Streams() []string {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	names := make([]string, 0, len(fc.streams))
	for name := range fc.streams {
		names = append(names, name)
	}
	return names
}

// HasField reports whether any known stream carries the named field. Used by
// sessions as the cross-axis move validator.
func (fc *FieldCatalog) HasField(name string) bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	for _, fields := range fc.streams {
		for _, f := range fields {
			if f.Name == name {
				return true
			}
		}
	}
	return false
}

// Empty reports whether no stream schema is loaded yet
func (fc *FieldCatalog) Empty() bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.streams) == 0
}

// Refresh fetches the stream schemas from the upstream service. Skipped
// while the breaker is open.
func (fc *FieldCatalog) Refresh() error {
	if fc.upstreamURL == "" {
		return nil
	}
	if !fc.breaker.Allow() {
		catalogRefreshTotal.WithLabelValues("skipped").Inc()
		return fmt.Errorf("catalog refresh skipped: circuit breaker open")
	}

	resp, err := fc.client.Get(fc.upstreamURL)
	if err != nil {
		fc.breaker.RecordFailure()
		catalogRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("catalog refresh failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fc.breaker.RecordFailure()
		catalogRefreshTotal.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog refresh failed: status %d: %s", resp.StatusCode, string(body))
	}

	var schemas []StreamSchema
	if err := json.NewDecoder(resp.Body).Decode(&schemas); err != nil {
		fc.breaker.RecordFailure()
		catalogRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("catalog refresh failed: %w", err)
	}

	fc.mu.Lock()
	for _, s := range schemas {
		fc.streams[s.Stream] = s.Fields
	}
	fc.mu.Unlock()

	fc.breaker.RecordSuccess()
	catalogRefreshTotal.WithLabelValues("ok").Inc()
	return nil
}

// RefreshLoop refreshes the catalog on an interval until stop is closed
func (fc *FieldCatalog) RefreshLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := fc.Refresh(); err != nil {
				LogWarn("Field catalog refresh failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		case <-stop:
			return
		}
	}
}
