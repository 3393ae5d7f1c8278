package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestScheduleValidate(t *testing.T) {
	t.Run("once requires start date", func(t *testing.T) {
		require.ErrorIs(t, (&Schedule{ScheduleType: ScheduleOnce}).Validate(), ErrInvalidSchedule)
		start := ts("2026-09-01T09:00:00Z")
		require.NoError(t, (&Schedule{ScheduleType: ScheduleOnce, StartDate: &start}).Validate())
	})

	t.Run("cron expression", func(t *testing.T) {
		require.NoError(t, (&Schedule{ScheduleType: ScheduleCron, CronExpression: "0 9 * * 1"}).Validate())
		require.NoError(t, (&Schedule{ScheduleType: ScheduleCron, CronExpression: "@daily"}).Validate())
		require.ErrorIs(t,
			(&Schedule{ScheduleType: ScheduleCron, CronExpression: "not a cron"}).Validate(),
			ErrInvalidCronExpression)
	})

	t.Run("interval", func(t *testing.T) {
		require.NoError(t, (&Schedule{ScheduleType: ScheduleInterval, IntervalValue: 4, IntervalUnit: IntervalHours}).Validate())
		require.ErrorIs(t,
			(&Schedule{ScheduleType: ScheduleInterval, IntervalValue: 0, IntervalUnit: IntervalHours}).Validate(),
			ErrInvalidInterval)
		require.ErrorIs(t,
			(&Schedule{ScheduleType: ScheduleInterval, IntervalValue: 2, IntervalUnit: "fortnights"}).Validate(),
			ErrInvalidInterval)
	})

	t.Run("unknown type", func(t *testing.T) {
		require.ErrorIs(t, (&Schedule{}).Validate(), ErrInvalidSchedule)
	})
}

func TestScheduleInterval(t *testing.T) {
	assert.Equal(t, 30*time.Minute, (&Schedule{IntervalValue: 30, IntervalUnit: IntervalMinutes}).Interval())
	assert.Equal(t, 48*time.Hour, (&Schedule{IntervalValue: 2, IntervalUnit: IntervalDays}).Interval())
	assert.Equal(t, 7*24*time.Hour, (&Schedule{IntervalValue: 1, IntervalUnit: IntervalWeeks}).Interval())
	assert.Equal(t, time.Duration(0), (&Schedule{}).Interval())
}

func TestScheduleNextRun(t *testing.T) {
	t.Run("once fires at the start date then never again", func(t *testing.T) {
		start := ts("2026-09-01T09:00:00Z")
		s := &Schedule{ScheduleType: ScheduleOnce, StartDate: &start}

		assert.Equal(t, start, s.NextRun(ts("2026-08-31T00:00:00Z")))
		assert.True(t, s.NextRun(ts("2026-09-01T09:00:00Z")).IsZero())
		assert.True(t, s.NextRun(ts("2026-09-02T00:00:00Z")).IsZero())
	})

	t.Run("cron fires at the matching instant", func(t *testing.T) {
		s := &Schedule{ScheduleType: ScheduleCron, CronExpression: "0 9 * * *"}
		next := s.NextRun(ts("2026-09-01T10:00:00Z"))
		assert.Equal(t, ts("2026-09-02T09:00:00Z"), next.UTC())
	})

	t.Run("cron honors start date", func(t *testing.T) {
		start := ts("2026-09-10T00:00:00Z")
		s := &Schedule{ScheduleType: ScheduleCron, CronExpression: "0 9 * * *", StartDate: &start}
		next := s.NextRun(ts("2026-09-01T00:00:00Z"))
		assert.Equal(t, ts("2026-09-10T09:00:00Z"), next.UTC())
	})

	t.Run("cron respects timezone", func(t *testing.T) {
		s := &Schedule{ScheduleType: ScheduleCron, CronExpression: "0 9 * * *", Timezone: "America/New_York"}
		next := s.NextRun(ts("2026-09-01T00:00:00Z"))
		// 09:00 in New York is 13:00 UTC during daylight saving.
		assert.Equal(t, ts("2026-09-01T13:00:00Z"), next.UTC())
	})

	t.Run("interval steps from the last run", func(t *testing.T) {
		last := ts("2026-09-01T08:00:00Z")
		s := &Schedule{
			ScheduleType:  ScheduleInterval,
			IntervalValue: 2,
			IntervalUnit:  IntervalHours,
			LastRunAt:     &last,
		}
		assert.Equal(t, ts("2026-09-01T10:00:00Z"), s.NextRun(ts("2026-09-01T09:00:00Z")).UTC())
		// Missed windows skip forward instead of firing in the past.
		assert.Equal(t, ts("2026-09-01T16:00:00Z"), s.NextRun(ts("2026-09-01T15:30:00Z")).UTC())
	})

	t.Run("end date caps the schedule", func(t *testing.T) {
		end := ts("2026-09-01T12:00:00Z")
		s := &Schedule{
			ScheduleType:  ScheduleInterval,
			IntervalValue: 1,
			IntervalUnit:  IntervalDays,
			EndDate:       &end,
		}
		assert.True(t, s.NextRun(ts("2026-09-01T00:00:00Z")).IsZero())
	})

	t.Run("max runs exhausts the schedule", func(t *testing.T) {
		s := &Schedule{
			ScheduleType:   ScheduleCron,
			CronExpression: "@hourly",
			MaxRuns:        3,
			RunCount:       3,
		}
		assert.True(t, s.NextRun(ts("2026-09-01T00:00:00Z")).IsZero())
	})
}
