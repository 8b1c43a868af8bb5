package cronjob

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

var ErrJobNotFound = errors.New("cron job not found")

// UpdateJobConfig changes the schedule or the suspend state of a job. Nil
// arguments keep the current value.
func (cm *CronJobManager) UpdateJobConfig(name string, spec *string, suspend *bool) error {
	cm.cronMutex.Lock()
	defer cm.cronMutex.Unlock()

	cur, ok := cm.jobs[name]
	if !ok {
		return fmt.Errorf("cron job %s: %w", name, ErrJobNotFound)
	}
	update := prepareUpdateConfig(cur, spec, suspend)

	switch {
	case update.suspend && !cur.suspend:
		cm.cron.Remove(cur.entryID)
		update.entryID = -1
	case !update.suspend && (cur.suspend || update.spec != cur.spec):
		entryID, err := cm.cron.AddFunc(update.spec, cm.wrap(update))
		if err != nil {
			return fmt.Errorf("schedule cron job %s with spec %q: %w", name, update.spec, err)
		}
		if !cur.suspend {
			cm.cron.Remove(cur.entryID)
		}
		update.entryID = entryID
	}

	cm.jobs[name] = update
	cm.log.Info("cron job updated", "name", name, "spec", update.spec, "suspend", update.suspend)
	return nil
}

// prepareUpdateConfig returns a copy of cur with the requested changes.
func prepareUpdateConfig(cur *job, spec *string, suspend *bool) *job {
	update := *cur
	if spec != nil && *spec != "" {
		update.spec = *spec
	}
	if suspend != nil {
		update.suspend = *suspend
	}
	return &update
}

// ValidateSpec reports whether spec is a standard five field cron expression.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}
