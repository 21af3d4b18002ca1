package production

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentAssignment_SingleOpen(t *testing.T) {
	end := date(2023, 12, 31)
	history := []OperatorAssignment{
		{TurbineID: "wt-01", FundID: "fund-a", Start: date(2020, 1, 1), End: &end},
		{TurbineID: "wt-01", FundID: "fund-b", Start: date(2024, 1, 1)},
	}

	current, err := CurrentAssignment(history)
	require.NoError(t, err)
	assert.Equal(t, "fund-b", current.FundID)
}

func TestCurrentAssignment_NoneOpen(t *testing.T) {
	end := date(2024, 6, 30)
	history := []OperatorAssignment{
		{TurbineID: "wt-01", FundID: "fund-a", Start: date(2020, 1, 1), End: &end},
	}

	_, err := CurrentAssignment(history)
	assert.ErrorIs(t, err, ErrNoCurrentAssignment)
}

func TestCurrentAssignment_EmptyHistory(t *testing.T) {
	_, err := CurrentAssignment(nil)
	assert.ErrorIs(t, err, ErrNoCurrentAssignment)
}

func TestCurrentAssignment_MultipleOpen(t *testing.T) {
	history := []OperatorAssignment{
		{TurbineID: "wt-01", FundID: "fund-a", Start: date(2020, 1, 1)},
		{TurbineID: "wt-01", FundID: "fund-b", Start: date(2024, 1, 1)},
	}

	_, err := CurrentAssignment(history)
	assert.ErrorIs(t, err, ErrMultipleCurrentAssignments)
}
