package smoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeAllPassed(t *testing.T) {
	report, ok := Summarize([]CheckOutcome{
		{Name: "templates_crud", Status: StatusOK},
		{Name: "tickets_crud", Status: StatusOK},
	})

	assert.True(t, ok)
	assert.Contains(t, report, "templates_crud")
	assert.Contains(t, report, "2/2 scenarios passed")
	assert.Contains(t, report, "All scenarios passed")
}

func TestSummarizeWithFailure(t *testing.T) {
	report, ok := Summarize([]CheckOutcome{
		{Name: "templates_crud", Status: StatusOK},
		{Name: "sla_breach_check", Status: StatusFail, Detail: "expected SLA breach record"},
	})

	assert.False(t, ok)
	assert.Contains(t, report, "1/2 scenarios passed")
	assert.Contains(t, report, "expected SLA breach record")
	assert.Contains(t, report, "Some scenarios failed")
}

func TestSummarizeEmpty(t *testing.T) {
	report, ok := Summarize(nil)
	assert.True(t, ok)
	assert.Contains(t, report, "0/0 scenarios passed")
}
