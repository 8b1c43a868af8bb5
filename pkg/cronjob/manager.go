package cronjob

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"

	"github.com/ppmlab/atlas/pkg/monitor"
)

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	spec    string
	run     JobFunc
	suspend bool
	entryID cron.EntryID
}

// JobStatus describes a registered job.
type JobStatus struct {
	Name    string     `json:"name"`
	Spec    string     `json:"spec"`
	Suspend bool       `json:"suspend"`
	Next    *time.Time `json:"next,omitempty"`
	Prev    *time.Time `json:"prev,omitempty"`
}

type CronJobManager struct {
	cron      *cron.Cron
	cronMutex sync.RWMutex
	jobs      map[string]*job
	timeout   time.Duration
	log       logr.Logger
}

func NewCronJobManager(log logr.Logger) *CronJobManager {
	return &CronJobManager{
		cron:    cron.New(cron.WithLocation(time.Local)),
		jobs:    map[string]*job{},
		timeout: 30 * time.Minute,
		log:     log,
	}
}

// AddCronJob registers a job and schedules it unless suspend is set.
func (cm *CronJobManager) AddCronJob(name, spec string, suspend bool, run JobFunc) error {
	cm.cronMutex.Lock()
	defer cm.cronMutex.Unlock()

	if _, ok := cm.jobs[name]; ok {
		return fmt.Errorf("cron job %s already registered", name)
	}
	j := &job{name: name, spec: spec, run: run, suspend: suspend, entryID: -1}
	if !suspend {
		entryID, err := cm.cron.AddFunc(spec, cm.wrap(j))
		if err != nil {
			return fmt.Errorf("schedule cron job %s with spec %q: %w", name, spec, err)
		}
		j.entryID = entryID
	}
	cm.jobs[name] = j
	cm.log.Info("cron job registered", "name", name, "spec", spec, "suspend", suspend)
	return nil
}

// wrap runs the job with a timeout and records the outcome.
func (cm *CronJobManager) wrap(j *job) cron.FuncJob {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), cm.timeout)
		defer cancel()
		_ = cm.execute(ctx, j)
	}
}

func (cm *CronJobManager) execute(ctx context.Context, j *job) error {
	start := time.Now()
	err := j.run(ctx)
	monitor.ObserveCron(j.name, err)
	if err != nil {
		cm.log.Error(err, "cron job failed", "name", j.name, "elapsed", time.Since(start))
		return err
	}
	cm.log.V(2).Info("cron job finished", "name", j.name, "elapsed", time.Since(start))
	return nil
}

// RunNow executes a registered job synchronously, suspended or not.
func (cm *CronJobManager) RunNow(ctx context.Context, name string) error {
	cm.cronMutex.RLock()
	j, ok := cm.jobs[name]
	cm.cronMutex.RUnlock()
	if !ok {
		return fmt.Errorf("cron job %s: %w", name, ErrJobNotFound)
	}
	return cm.execute(ctx, j)
}

// GetAllCronJobs lists registered jobs by name.
func (cm *CronJobManager) GetAllCronJobs() []JobStatus {
	cm.cronMutex.RLock()
	defer cm.cronMutex.RUnlock()

	out := make([]JobStatus, 0, len(cm.jobs))
	for _, j := range cm.jobs {
		s := JobStatus{Name: j.name, Spec: j.spec, Suspend: j.suspend}
		if !j.suspend {
			entry := cm.cron.Entry(j.entryID)
			next := entry.Next
			if next.IsZero() && entry.Schedule != nil {
				// not started yet
				next = entry.Schedule.Next(time.Now().In(cm.cron.Location()))
			}
			if !next.IsZero() {
				s.Next = &next
			}
			if !entry.Prev.IsZero() {
				s.Prev = &entry.Prev
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// Start runs the scheduler in its own goroutine.
func (cm *CronJobManager) Start() {
	cm.cronMutex.Lock()
	defer cm.cronMutex.Unlock()
	cm.cron.Start()
	cm.log.Info("cron scheduler started", "jobs", len(cm.jobs))
}

// StopCron stops the scheduler and returns a context done when running jobs finish.
func (cm *CronJobManager) StopCron() context.Context {
	cm.cronMutex.Lock()
	defer cm.cronMutex.Unlock()
	return cm.cron.Stop()
}
