package zipsig

// Option configures Load and Read.
type Option func(*loadConfig)

type loadConfig struct {
	maxSize int64
}

func newLoadConfig(opts []Option) loadConfig {
	cfg := loadConfig{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMaxSize limits the size of archives read into memory.
// Set limit to 0 to disable the limit.
func WithMaxSize(limit int64) Option {
	return func(c *loadConfig) {
		if limit < 0 {
			limit = 0
		}
		c.maxSize = limit
	}
}
