package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int     `json:"id"`
	Area int64   `json:"area"`
	Mean float64 `json:"mean"`
}

func TestJSONWriter_Compact(t *testing.T) {
	w := NewJSONWriter[[]record]()
	var buf bytes.Buffer

	require.NoError(t, w.Write([]record{{ID: 1, Area: 9, Mean: 1.5}}, &buf))

	assert.Equal(t, `[{"id":1,"area":9,"mean":1.5}]`, strings.TrimSpace(buf.String()))
}

func TestJSONWriter_Pretty(t *testing.T) {
	w := NewPrettyJSONWriter[record]()
	var buf bytes.Buffer

	require.NoError(t, w.Write(record{ID: 2}, &buf))
	assert.Contains(t, buf.String(), "\n  \"id\": 2")
}

func TestJSONWriter_File(t *testing.T) {
	w := NewJSONWriter[record]()
	path := t.TempDir() + "/nodes.json"

	require.NoError(t, w.WriteToFile(record{ID: 3, Area: 4}, path))

	var back record
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, record{ID: 3, Area: 4}, back)
}

func TestGzipJSONWriter_RoundTrip(t *testing.T) {
	w := NewGzipJSONWriter[[]record]()
	var buf bytes.Buffer

	in := []record{{ID: 1, Area: 100}, {ID: 2, Area: 50}}
	require.NoError(t, w.Write(in, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer gz.Close()

	var back []record
	require.NoError(t, json.NewDecoder(gz).Decode(&back))
	assert.Equal(t, in, back)
}

func TestGzipJSONWriter_File(t *testing.T) {
	w := NewGzipJSONWriter[record]()
	path := t.TempDir() + "/nodes.json.gz"

	require.NoError(t, w.WriteToFile(record{ID: 9}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	var back record
	require.NoError(t, json.NewDecoder(gz).Decode(&back))
	assert.Equal(t, 9, back.ID)
}
