package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:5080"

	DefaultStorageBackend = "badger"
	DefaultDataDir        = "/var/lib/gatewarden-server/data"
	DefaultGCInterval     = "10m"

	DefaultTokenTTL = 7 * 24 * time.Hour

	DefaultRequestsPerSecond = 50.0
	DefaultBurst             = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
		},
		Storage: StorageSection{
			Backend:    DefaultStorageBackend,
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
			SyncWrites: true,
		},
		Token: TokenSection{
			TTL: DefaultTokenTTL,
		},
		Limits: LimitsSection{
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
