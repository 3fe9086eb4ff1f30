package outwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

func chartFixture() schema.ChartResult {
	voltage := 230.1
	current := 3.25
	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	return schema.ChartResult{
		DeviceID: "hcmc-q1-0",
		Data: []schema.ChartPoint{
			{X: first.UnixMilli(), XUTCTimestamp: first, ElectricityUsage: 5.25, Voltage: &voltage, Current: &current},
			{X: second.UnixMilli(), XUTCTimestamp: second, ElectricityUsage: 8.0},
		},
	}
}

func TestWriteCSVResultsForChart(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	require.NoError(t, writeCSVResultsForChart(writer, chartFixture(), fmtFloat))
	writer.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "device_id,x,x_utc_timestamp,electricity_usage,voltage,current", lines[0])
	assert.Equal(t, "hcmc-q1-0,1748772000000,2025-06-01T10:00:00Z,5.3,230.1,3.3", lines[1])

	// Missing voltage and current render as empty fields, not zeros.
	assert.Equal(t, "hcmc-q1-0,1748775600000,2025-06-01T11:00:00Z,8.0,,", lines[2])
}

func TestPrintChartResultParquetRequiresFile(t *testing.T) {
	cfg := &contract.Config{Output: schema.ParquetOut, Precision: 1}
	err := PrintChartResult(chartFixture(), cfg, time.Second)
	assert.ErrorContains(t, err, "requires an output file")
}
