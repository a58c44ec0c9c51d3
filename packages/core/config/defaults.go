package config

const (
	DefaultTimeout      = 30000 // 30 seconds
	DefaultMaxRedirects = 10
	DefaultMaxDepth     = 16
	DefaultCacheBackend = "file"
	DefaultLogFormat    = "console"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    DefaultMaxRedirects,
		ValidateSSL:     BoolPtr(true),
		CacheBackend:    DefaultCacheBackend,
		MaxDepth:        DefaultMaxDepth,
		LogFormat:       DefaultLogFormat,
	}
}
