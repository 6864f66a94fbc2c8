package pool

import "runtime"

const DefaultQueueCapacity = 1024

// Config sizes a pool.
type Config struct {
	// Workers is the number of long-lived workers. Defaults to runtime.NumCPU().
	Workers int `yaml:"workers" mapstructure:"workers"`
	// QueueCapacity bounds the number of accepted units waiting for a worker.
	QueueCapacity int `yaml:"queue_capacity" mapstructure:"queue_capacity"`
}

// DefaultConfig returns the sizing used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Workers:       runtime.NumCPU(),
		QueueCapacity: DefaultQueueCapacity,
	}
}

// normalize replaces non-positive values with defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = def.QueueCapacity
	}
	return c
}
