package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Dedup cache sweep, every minute
	CronScheduleDedupSweep string `env:"CRON_SCHEDULE_DEDUP_SWEEP" envDefault:"30 * * * * *"`
}
