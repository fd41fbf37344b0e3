package config

import "time"

type Worker struct {
	CanaryInterval   time.Duration `env:"CANARY_INTERVAL" envDefault:"1m"`
	QueueConcurrency int           `env:"QUEUE_CONCURRENCY" envDefault:"4"`
}
