package flow

import (
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleType enumerates trigger configurations.
type ScheduleType string

const (
	ScheduleOnce     ScheduleType = "once"
	ScheduleCron     ScheduleType = "cron"
	ScheduleInterval ScheduleType = "interval"
)

// IntervalUnit enumerates interval granularity.
type IntervalUnit string

const (
	IntervalMinutes IntervalUnit = "minutes"
	IntervalHours   IntervalUnit = "hours"
	IntervalDays    IntervalUnit = "days"
	IntervalWeeks   IntervalUnit = "weeks"
)

// Schedule is the trigger configuration consumed by an external
// scheduler daemon. Run bookkeeping fields (RunCount, LastRunAt,
// NextRunAt) are read-only from the flow's point of view; the trigger
// maintains them.
type Schedule struct {
	ScheduleType      ScheduleType   `json:"scheduleType"`
	CronExpression    string         `json:"cronExpression,omitempty"`
	IntervalValue     int            `json:"intervalValue,omitempty"`
	IntervalUnit      IntervalUnit   `json:"intervalUnit,omitempty"`
	Timezone          string         `json:"timezone,omitempty"`
	StartDate         *time.Time     `json:"startDate,omitempty"`
	EndDate           *time.Time     `json:"endDate,omitempty"`
	MaxRuns           int            `json:"maxRuns,omitempty"`
	RetryOnFailure    bool           `json:"retryOnFailure,omitempty"`
	MaxRetries        int            `json:"maxRetries,omitempty"`
	RetryDelayMinutes int            `json:"retryDelayMinutes,omitempty"`
	DefaultInput      map[string]any `json:"defaultInput,omitempty"`

	RunCount  int        `json:"runCount,omitempty"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	NextRunAt *time.Time `json:"nextRunAt,omitempty"`
}

// cron parser matching the standard 5-field format with descriptors
// (@daily etc.), shared by Validate and NextRun.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the schedule configuration for internal consistency.
func (s *Schedule) Validate() error {
	switch s.ScheduleType {
	case ScheduleOnce:
		if s.StartDate == nil {
			return ErrInvalidSchedule
		}
	case ScheduleCron:
		if _, err := cronParser.Parse(s.CronExpression); err != nil {
			return ErrInvalidCronExpression
		}
	case ScheduleInterval:
		if s.IntervalValue <= 0 {
			return ErrInvalidInterval
		}
		switch s.IntervalUnit {
		case IntervalMinutes, IntervalHours, IntervalDays, IntervalWeeks:
		default:
			return ErrInvalidInterval
		}
	default:
		return ErrInvalidSchedule
	}
	return nil
}

// Interval returns the configured interval as a duration. Zero for
// non-interval schedules.
func (s *Schedule) Interval() time.Duration {
	v := time.Duration(s.IntervalValue)
	switch s.IntervalUnit {
	case IntervalMinutes:
		return v * time.Minute
	case IntervalHours:
		return v * time.Hour
	case IntervalDays:
		return v * 24 * time.Hour
	case IntervalWeeks:
		return v * 7 * 24 * time.Hour
	}
	return 0
}

// NextRun computes the next fire time strictly after the given instant,
// honoring timezone, start/end bounds and the max-run cap. The zero
// time is returned when the schedule will not fire again.
func (s *Schedule) NextRun(after time.Time) time.Time {
	if s.MaxRuns > 0 && s.RunCount >= s.MaxRuns {
		return time.Time{}
	}
	loc := time.UTC
	if s.Timezone != "" {
		if l, err := time.LoadLocation(s.Timezone); err == nil {
			loc = l
		}
	}
	after = after.In(loc)

	var next time.Time
	switch s.ScheduleType {
	case ScheduleOnce:
		if s.StartDate == nil || !s.StartDate.After(after) {
			return time.Time{}
		}
		next = *s.StartDate
	case ScheduleCron:
		sched, err := cronParser.Parse(s.CronExpression)
		if err != nil {
			return time.Time{}
		}
		from := after
		if s.StartDate != nil && s.StartDate.After(from) {
			from = s.StartDate.In(loc)
		}
		next = sched.Next(from)
	case ScheduleInterval:
		iv := s.Interval()
		if iv <= 0 {
			return time.Time{}
		}
		base := after
		if s.LastRunAt != nil {
			base = *s.LastRunAt
		}
		next = base.Add(iv)
		for !next.After(after) {
			next = next.Add(iv)
		}
	default:
		return time.Time{}
	}

	if s.ScheduleType == ScheduleInterval && s.StartDate != nil && next.Before(*s.StartDate) {
		next = *s.StartDate
	}
	if s.EndDate != nil && next.After(*s.EndDate) {
		return time.Time{}
	}
	return next
}
