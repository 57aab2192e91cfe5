package config

import "time"

// ServerConfig is the root configuration for gatewarden-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Token    TokenSection    `koanf:"token"`
	Security SecuritySection `koanf:"security"`
	Limits   LimitsSection   `koanf:"limits"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// StorageSection configures storage behavior.
type StorageSection struct {
	// Backend selects the storage engine: "badger" or "memory".
	Backend string `koanf:"backend"`

	// DataDir is the Badger storage directory. Ignored by the memory
	// backend.
	DataDir string `koanf:"data_dir"`

	// GCInterval is the interval between Badger value log GC runs.
	GCInterval string `koanf:"gc_interval"`

	// SyncWrites enables fsync after each write.
	SyncWrites bool `koanf:"sync_writes"`
}

// TokenSection configures token issuance.
type TokenSection struct {
	// TTL is the validity duration applied to new tokens.
	TTL time.Duration `koanf:"ttl"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// AdminToken guards the directory administration endpoints. The
	// endpoints are disabled when empty.
	AdminToken string `koanf:"admin_token"`

	// EncryptionKey enables at-rest sealing of stored records when set.
	EncryptionKey string `koanf:"encryption_key"`

	// EncryptionAlgorithm selects the sealing AEAD ("aes-gcm",
	// "chacha20-poly1305"). Empty picks the best fit for the hardware.
	EncryptionAlgorithm string `koanf:"encryption_algorithm"`
}

// LimitsSection configures request rate limiting.
type LimitsSection struct {
	// RequestsPerSecond is the sustained per-client request rate.
	// Zero disables rate limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Burst is the per-client burst allowance.
	Burst int `koanf:"burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
