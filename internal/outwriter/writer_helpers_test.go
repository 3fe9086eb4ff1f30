package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{
			name:      "precision 1",
			precision: 1,
			value:     3.14159,
			expected:  "3.1",
		},
		{
			name:      "precision 4",
			precision: 4,
			value:     3.14159,
			expected:  "3.1416",
		},
		{
			name:      "negative value",
			precision: 2,
			value:     -42.567,
			expected:  "-42.57",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestFmtOptFloat(t *testing.T) {
	fmtFloat, _ := createFormatters(1)

	t.Run("present", func(t *testing.T) {
		v := 230.17
		assert.Equal(t, "230.2", fmtOptFloat(&v, fmtFloat))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Equal(t, "", fmtOptFloat(nil, fmtFloat))
	})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]any{"device_id": "hcmc-q1-0", "usage": 4.5}

	require.NoError(t, writeJSON(&buf, payload))

	// Indented output round-trips back to the same values.
	assert.Contains(t, buf.String(), "  \"device_id\"")
	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hcmc-q1-0", decoded["device_id"])
	assert.Equal(t, 4.5, decoded["usage"])
}

func TestWriteCSVWithHeader(t *testing.T) {
	t.Run("header then rows", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"date_part", "daily_usage"}, func(w *csv.Writer) error {
			return w.Write([]string{"2025-06-01", "4.5"})
		})
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "date_part,daily_usage", lines[0])
		assert.Equal(t, "2025-06-01,4.5", lines[1])
	})

	t.Run("row error propagates", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"a"}, func(*csv.Writer) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout passthrough", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(w io.Writer) error {
			called = true
			return nil
		}, "Wrote results")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("writes to named file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		err := writeWithFile(path, func(w io.Writer) error {
			_, err := w.Write([]byte("payload\n"))
			return err
		}, "Wrote results")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "payload\n", string(content))
	})
}
