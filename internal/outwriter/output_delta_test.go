package outwriter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meterflow/meterflow/schema"
)

func TestUsageCSVRow(t *testing.T) {
	fmtFloat, _ := createFormatters(1)

	t.Run("complete window", func(t *testing.T) {
		result := schema.UsageResult{
			Usage:      4.25,
			StartValue: 10.0,
			EndValue:   14.25,
			StartTime:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		}

		row := usageCSVRow("hcmc-q1-0", result, fmtFloat)
		assert.Equal(t, []string{
			"hcmc-q1-0", "4.2", "10.0", "14.2",
			"2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z", "",
		}, row)
	})

	t.Run("insufficient data leaves times blank", func(t *testing.T) {
		result := schema.UsageResult{Reason: "no readings in range"}

		row := usageCSVRow("hcmc-q1-0", result, fmtFloat)
		assert.Equal(t, []string{
			"hcmc-q1-0", "0.0", "0.0", "0.0", "", "", "no readings in range",
		}, row)
	})
}
