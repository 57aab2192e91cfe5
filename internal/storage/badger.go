package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gatewarden/gatewarden-go/internal/core/domain"
)

// Key layout. Tokens are base64url and never contain ':', so the user
// index key can be split on the last separator.
const (
	tokenPrefix     = "tok:"
	userIndexPrefix = "uix:"
	dirPrefix       = "dir:"
	saltKey         = "sys:seal-salt"
)

// conflictRetries bounds transaction retries under badger.ErrConflict.
const conflictRetries = 3

// Config configures the Badger store.
type Config struct {
	// Dir is the storage directory.
	Dir string

	// SyncWrites enables fsync after each write.
	// Default: true.
	SyncWrites bool

	// GCInterval is the interval between value log GC runs.
	// Default: 10m.
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5.
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB.
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB.
	ValueLogFileSize int64

	// Passphrase enables at-rest sealing of records when non-empty.
	Passphrase []byte

	// Algorithm selects the sealing AEAD ("aes-gcm",
	// "chacha20-poly1305"). Empty picks the best fit for the hardware.
	Algorithm string
}

// DefaultConfig returns the default Badger store configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:              dir,
		SyncWrites:       true,
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        64 << 20,
		ValueLogFileSize: 256 << 20,
	}
}

// Stats contains storage engine statistics.
type Stats struct {
	TotalSize        uint64
	LSMSize          uint64
	ValueLogSize     uint64
	LastGCTime       int64
	GCBytesReclaimed uint64
}

// BadgerStore is the persistent store for token records and the user
// directory, backed by Badger v3.
//
// It implements service.TokenRepository and service.UserDirectory. All
// multi-key operations run inside a single Badger transaction, which is
// what makes Revoke's check-then-update atomic.
type BadgerStore struct {
	db     *badger.DB
	cfg    Config
	sealer *Sealer
	logger *slog.Logger

	lastGCTime       atomic.Int64
	gcBytesReclaimed atomic.Uint64

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsTotalSize    prometheus.Gauge
	metricsLastGCTime   prometheus.Gauge

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens the store at cfg.Dir.
//
// When cfg.Passphrase is set, the key-derivation salt is loaded from the
// database, or generated and persisted on first open.
func NewBadgerStore(cfg Config, logger *slog.Logger) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	opts.DetectConflicts = true
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if len(cfg.Passphrase) > 0 {
		if err := s.initSealer(); err != nil {
			db.Close()
			return nil, err
		}
	}

	go s.gcLoop()

	logger.Info("badger store opened",
		"dir", cfg.Dir,
		"sync_writes", cfg.SyncWrites,
		"sealed", s.sealer != nil)

	return s, nil
}

// initSealer loads or creates the salt and derives the sealing cipher.
func (s *BadgerStore) initSealer() error {
	var salt []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(saltKey))
		if err == nil {
			salt, err = item.ValueCopy(nil)
			return err
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		salt, err = GenerateSalt()
		if err != nil {
			return err
		}
		return txn.Set([]byte(saltKey), salt)
	})
	if err != nil {
		return fmt.Errorf("badger: seal salt: %w", err)
	}

	sealer, err := NewSealer(s.cfg.Passphrase, salt, s.cfg.Algorithm)
	if err != nil {
		return err
	}
	s.sealer = sealer
	return nil
}

func tokenKey(tok string) []byte {
	return []byte(tokenPrefix + tok)
}

func userIndexKey(user, tok string) []byte {
	return []byte(userIndexPrefix + user + ":" + tok)
}

func dirKey(user string) []byte {
	return []byte(dirPrefix + user)
}

func (s *BadgerStore) encode(v any, key []byte) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if s.sealer == nil {
		return data, nil
	}
	return s.sealer.Seal(data, key)
}

func (s *BadgerStore) decode(data, key []byte, v any) error {
	if s.sealer != nil {
		plain, err := s.sealer.Open(data, key)
		if err != nil {
			return err
		}
		data = plain
	}
	return json.Unmarshal(data, v)
}

// update runs fn in a read-write transaction, retrying on commit
// conflicts.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// Insert persists a new token record, maintaining the per-user index.
func (s *BadgerStore) Insert(ctx context.Context, rec *domain.TokenRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	key := tokenKey(rec.Token)
	err := s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return domain.ErrTokenConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		val, err := s.encode(rec, key)
		if err != nil {
			return err
		}
		if err := txn.Set(key, val); err != nil {
			return err
		}
		return txn.Set(userIndexKey(rec.User, rec.Token), nil)
	})

	if domain.IsDomainError(err, "") {
		return err
	}
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Get retrieves a token record by token value.
func (s *BadgerStore) Get(ctx context.Context, tok string) (*domain.TokenRecord, error) {
	key := tokenKey(tok)
	var rec domain.TokenRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return s.decode(val, key, &rec)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return &rec, nil
}

// ListByUser retrieves all token records owned by user.
func (s *BadgerStore) ListByUser(ctx context.Context, user string) ([]*domain.TokenRecord, error) {
	prefix := []byte(userIndexPrefix + user + ":")
	var recs []*domain.TokenRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			tok := string(it.Item().Key()[len(prefix):])
			key := tokenKey(tok)

			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Orphaned index entry, skip.
				continue
			}
			if err != nil {
				return err
			}

			var rec domain.TokenRecord
			if err := item.Value(func(val []byte) error {
				return s.decode(val, key, &rec)
			}); err != nil {
				return err
			}
			recs = append(recs, &rec)
		}
		return nil
	})

	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return recs, nil
}

// Revoke performs the conditional revoke of a token record as a single
// transaction: owner check, status transition, and history append either
// all apply or none do. An already-revoked record is returned unchanged.
func (s *BadgerStore) Revoke(ctx context.Context, tok string, entry domain.HistoryEntry) (*domain.TokenRecord, error) {
	key := tokenKey(tok)
	var rec domain.TokenRecord

	err := s.update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		rec = domain.TokenRecord{}
		if err := item.Value(func(val []byte) error {
			return s.decode(val, key, &rec)
		}); err != nil {
			return err
		}

		if rec.User != entry.OperatingUser {
			return domain.ErrNotOwner
		}
		if rec.IsRevoked() {
			return nil
		}

		rec.Status = domain.StatusRevoked
		rec.History = append(rec.History, entry)

		val, err := s.encode(&rec, key)
		if err != nil {
			return err
		}
		return txn.Set(key, val)
	})

	if domain.IsDomainError(err, "") {
		return nil, err
	}
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return &rec, nil
}

// GetUser retrieves a user directory record.
func (s *BadgerStore) GetUser(ctx context.Context, user string) (*domain.UserRecord, error) {
	key := dirKey(user)
	var rec domain.UserRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return s.decode(val, key, &rec)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return &rec, nil
}

// UpsertUser creates or replaces a user directory record.
func (s *BadgerStore) UpsertUser(ctx context.Context, rec *domain.UserRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	key := dirKey(rec.User)
	err := s.update(func(txn *badger.Txn) error {
		val, err := s.encode(rec, key)
		if err != nil {
			return err
		}
		return txn.Set(key, val)
	})
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// DeleteUser removes a user directory record.
func (s *BadgerStore) DeleteUser(ctx context.Context, user string) error {
	key := dirKey(user)
	err := s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// GC triggers value log garbage collection. Returns approximate bytes
// reclaimed.
func (s *BadgerStore) GC(ctx context.Context) (uint64, error) {
	start := time.Now()

	var reclaimed uint64
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return reclaimed, fmt.Errorf("badger: gc: %w", err)
		}
		// Badger does not report exact reclaim sizes.
		reclaimed += 1 << 20
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	s.gcBytesReclaimed.Add(reclaimed)

	s.logger.Debug("gc completed",
		"bytes_reclaimed", reclaimed,
		"elapsed", time.Since(start))

	return reclaimed, nil
}

// Stats returns storage statistics.
func (s *BadgerStore) Stats(ctx context.Context) (*Stats, error) {
	lsm, vlog := s.db.Size()
	return &Stats{
		TotalSize:        uint64(lsm + vlog),
		LSMSize:          uint64(lsm),
		ValueLogSize:     uint64(vlog),
		LastGCTime:       s.lastGCTime.Load(),
		GCBytesReclaimed: s.gcBytesReclaimed.Load(),
	}, nil
}

// Close stops background work and closes the database.
func (s *BadgerStore) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger store closed")
	return nil
}

// RegisterMetrics registers storage gauges with the Prometheus registry
// and starts the periodic updater. Call once during initialization.
func (s *BadgerStore) RegisterMetrics(registry *prometheus.Registry) *BadgerStore {
	s.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatewarden",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	s.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatewarden",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	s.metricsTotalSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatewarden",
		Subsystem: "badger",
		Name:      "total_size_bytes",
		Help:      "Badger total storage size in bytes",
	})
	s.metricsLastGCTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatewarden",
		Subsystem: "badger",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last value log GC run",
	})

	registry.MustRegister(
		s.metricsLSMSize,
		s.metricsValueLogSize,
		s.metricsTotalSize,
		s.metricsLastGCTime,
	)

	go s.metricsUpdateLoop()
	return s
}

func (s *BadgerStore) metricsUpdateLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := s.Stats(context.Background())
			if err != nil {
				continue
			}
			s.metricsLSMSize.Set(float64(stats.LSMSize))
			s.metricsValueLogSize.Set(float64(stats.ValueLogSize))
			s.metricsTotalSize.Set(float64(stats.TotalSize))
			if stats.LastGCTime > 0 {
				s.metricsLastGCTime.Set(float64(stats.LastGCTime) / 1000.0)
			}

		case <-s.stopCh:
			return
		}
	}
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	interval, err := time.ParseDuration(s.cfg.GCInterval)
	if err != nil || interval <= 0 {
		if s.cfg.GCInterval != "" {
			s.logger.Warn("invalid gc_interval, using default 10m", "value", s.cfg.GCInterval)
		}
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := s.GC(ctx); err != nil {
				s.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
