package outwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

func TestPrintCSVResultsForForecast(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	points := []schema.ForecastPoint{
		{DatePart: "2025-06-01", DailyUsage: 4.5},
		{DatePart: "2025-06-02", DailyUsage: 5.25},
	}

	outputFile := filepath.Join(t.TempDir(), "forecast.csv")
	cfg := &contract.Config{OutputFile: outputFile}
	require.NoError(t, printCSVResultsForForecast(points, cfg, fmtFloat))

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date_part,daily_usage", lines[0])
	assert.Equal(t, "2025-06-01,4.5", lines[1])
	assert.Equal(t, "2025-06-02,5.2", lines[2])
}
