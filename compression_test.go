package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressLZ4RoundTrip(t *testing.T) {
	snap := PanelState{Type: "panel_state", SessionID: "s1", ChartType: ChartBar}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	// Pad so the payload is actually compressible.
	data = append(data, bytes.Repeat([]byte(" "), 4096)...)

	framed := compressLZ4(data)
	require.True(t, bytes.HasPrefix(framed, []byte(COMPRESSION_HEADER)))
	assert.Less(t, len(framed), len(data))

	got, err := decompressLZ4(framed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDecompressLZ4PassesThroughUnframedData(t *testing.T) {
	raw := []byte(`{"type":"drag_end"}`)
	got, err := decompressLZ4(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestCompressLZ4SkipsIncompressiblePayloads(t *testing.T) {
	short := []byte("ab")
	assert.Equal(t, short, compressLZ4(short))
}
