package cron

import (
	"context"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/statflow/listrelay/interfaces"
	cron_config "github.com/statflow/listrelay/internal/cron/config"
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/internal/tracing"
)

const (
	// GroupRelay is the group for relay maintenance jobs
	GroupRelay = "relay"
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupRelay: new(sync.Mutex),
	},
}

type CronManager struct {
	log    logger.Logger
	cron   *cronv3.Cron
	stopCh chan struct{}
	jobIDs map[string]cronv3.EntryID
	dedup  interfaces.DedupService
}

func NewCronManager(log logger.Logger, dedup interfaces.DedupService) *CronManager {
	return &CronManager{
		log:    log,
		stopCh: make(chan struct{}),
		jobIDs: make(map[string]cronv3.EntryID),
		dedup:  dedup,
	}
}

// Start initializes and starts the cron scheduler. The dedup cache is
// process-local, so there is no cross-replica coordination to do.
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat, dedup cache holds %d entries", cm.dedup.Size())
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleDedupSweep != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleDedupSweep, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupRelay].Lock()
			defer jobLocks.locks[GroupRelay].Unlock()
			cm.sweepDedupCache()
		})
		if err != nil {
			cm.log.Fatalf("Could not add dedup sweep cron job: %v", err)
		}
		cm.jobIDs["dedup_sweep"] = id
		cm.log.Infof("Registered dedup sweep job with schedule: %s", cronConfig.CronScheduleDedupSweep)
	}
}

// sweepDedupCache evicts identity entries older than the suppression
// window so the cache stays bounded over long uptime.
func (cm *CronManager) sweepDedupCache() {
	span, _ := tracing.StartTracerSpan(context.Background(), "CronManager.sweepDedupCache")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	removed := cm.dedup.Sweep(time.Now())
	if removed > 0 {
		cm.log.Infof("Dedup sweep removed %d stale entries, %d remain", removed, cm.dedup.Size())
	}
}
