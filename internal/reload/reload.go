package reload

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sandeepkv93/tomatod/internal/dates"
)

// Trigger fires at most once per calendar day.
type Trigger struct {
	mu   sync.Mutex
	last int
}

// Fire reports whether day is later than the last day it fired for, and
// records day if so.
func (t *Trigger) Fire(day dates.Date) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if day.Ordinal() <= t.last {
		return false
	}
	t.last = day.Ordinal()
	return true
}

// Mark records day as handled without firing, for reloads done elsewhere.
func (t *Trigger) Mark(day dates.Date) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = max(t.last, day.Ordinal())
}

// Ticker runs a job whenever a periodic check, or the midnight entry, sees
// a new day.
type Ticker struct {
	cron    *cron.Cron
	trigger *Trigger
	loc     *time.Location
	now     func() time.Time
}

func NewTicker(loc *time.Location, trigger *Trigger) *Ticker {
	if loc == nil {
		loc = time.Local
	}
	if trigger == nil {
		trigger = &Trigger{}
	}
	return &Ticker{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		trigger: trigger,
		loc:     loc,
		now:     time.Now,
	}
}

func (t *Ticker) Schedule(interval time.Duration, onNewDay func(dates.Date)) error {
	if onNewDay == nil {
		return errors.New("reload: nil job")
	}
	spec, err := intervalSpec(interval)
	if err != nil {
		return err
	}
	job := func() { t.check(onNewDay) }
	if _, err := t.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	// cron format: second minute hour dom month dow
	if _, err := t.cron.AddFunc("1 0 0 * * *", job); err != nil {
		return fmt.Errorf("schedule midnight: %w", err)
	}
	return nil
}

func (t *Ticker) check(onNewDay func(dates.Date)) {
	today := dates.FromTime(t.now().In(t.loc))
	if t.trigger.Fire(today) {
		onNewDay(today)
	}
}

func (t *Ticker) Start() {
	t.cron.Start()
}

func (t *Ticker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

func intervalSpec(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("reload: interval must be positive, got %s", interval)
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds), nil
}
