package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/shoplist/internal/list"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/store"
)

var (
	ErrDisabled = errors.New("backups disabled: no passphrase configured")
	ErrNotFound = errors.New("backup not found")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Source is what gets backed up and restored. session.Session implements it.
type Source interface {
	Snapshot() list.State
	Restore(ctx context.Context, st list.State) error
}

// Metrics records backup outcomes. metrics.Collector implements it.
type Metrics interface {
	Backup(err error)
}

// S3Config holds S3-compatible storage configuration. Off-site upload is
// skipped when Bucket or the keys are empty.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	Dir        string
	Passphrase string
	// Interval between scheduled backups; zero disables the schedule.
	Interval  time.Duration
	Retention time.Duration
	S3        S3Config
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"inProgress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

type Option func(*Manager)

func WithStatusCallback(cb StatusCallback) Option {
	return func(m *Manager) { m.callback = cb }
}

func WithMetrics(mt Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// Manager writes encrypted snapshots of the list state to a local directory
// and, when configured, to S3-compatible storage.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	metrics  Metrics
	logger   *slog.Logger

	backupStore *store.BackupStore
	src         Source
	client      s3Client

	// one backup or restore at a time
	runMu sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, bs *store.BackupStore, src Source, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:         cfg,
		backupStore: bs,
		src:         src,
		logger:      logger.With("component", "backup"),
		status:      Status{State: StateDisabled},
	}
	for _, opt := range opts {
		opt(m)
	}

	if cfg.Passphrase != "" {
		m.status.State = StateIdle
		if cfg.S3.enabled() {
			m.client = newS3Client(cfg.S3)
		}
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the scheduled backup loop. It is a no-op when backups are
// disabled or no interval is set.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 || m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	m.logger.Info("backup schedule started", "interval", interval)
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.runScheduled(ctx)
			}
		}
	}()
}

// Stop ends the schedule and waits for a running backup to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) runScheduled(ctx context.Context) {
	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}
	if m.cfg.Retention > 0 {
		if err := m.Cleanup(ctx, m.cfg.Retention); err != nil {
			m.logger.Error("backup cleanup failed", "error", err)
		}
	}
}

// List returns the most recent backup records.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backupStore.List(limit)
}

// RunNow snapshots the source, encrypts it and stores it.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	if m.Status().State == StateDisabled {
		return nil, ErrDisabled
	}
	m.runMu.Lock()
	defer m.runMu.Unlock()

	b, err := m.run(ctx)
	if m.metrics != nil {
		m.metrics.Backup(err)
	}
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}
	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup completed", "id", b.ID, "file", b.Filename, "bytes", b.SizeBytes, "items", b.ItemCount)
	return b, nil
}

func (m *Manager) run(ctx context.Context) (*model.Backup, error) {
	m.setStatus(Status{State: StateRunning, InProgress: true})

	snap := m.src.Snapshot()
	plaintext, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	filename := fmt.Sprintf("backup-%s.json.enc", time.Now().UTC().Format("2006-01-02T150405.000Z"))
	localPath := filepath.Join(m.cfg.Dir, filename)

	record, err := m.backupStore.Create(filename, localPath, snap.ItemCount())
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}
	fail := func(err error) (*model.Backup, error) {
		if uerr := m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Error("mark backup failed", "id", record.ID, "error", uerr)
		}
		return nil, err
	}
	if err := m.backupStore.UpdateStatus(record.ID, model.BackupStatusWriting, ""); err != nil {
		return fail(err)
	}

	sealed, err := Seal(plaintext, m.cfg.Passphrase)
	if err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}
	if err := os.MkdirAll(m.cfg.Dir, 0o700); err != nil {
		return fail(fmt.Errorf("create backup dir: %w", err))
	}
	if err := os.WriteFile(localPath, sealed, 0o600); err != nil {
		return fail(fmt.Errorf("write backup: %w", err))
	}

	var remoteKey string
	if m.client != nil {
		remoteKey = filename
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(m.cfg.S3.Bucket),
			Key:           aws.String(remoteKey),
			Body:          bytes.NewReader(sealed),
			ContentLength: aws.Int64(int64(len(sealed))),
		})
		if err != nil {
			return fail(fmt.Errorf("upload to s3: %w", err))
		}
	}

	size := int64(len(sealed))
	if err := m.backupStore.UpdateCompleted(record.ID, size, remoteKey); err != nil {
		return nil, err
	}
	record.Status = model.BackupStatusCompleted
	record.SizeBytes = size
	record.RemoteKey = remoteKey
	return record, nil
}

// Restore decrypts a backup and replaces the source's state with it. The
// local copy is used when present, otherwise the S3 object.
func (m *Manager) Restore(ctx context.Context, id int64) error {
	if m.Status().State == StateDisabled {
		return ErrDisabled
	}
	m.runMu.Lock()
	defer m.runMu.Unlock()

	record, err := m.backupStore.GetByID(id)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return ErrNotFound
	}

	sealed, err := m.read(ctx, record)
	if err != nil {
		return err
	}
	plaintext, err := Open(sealed, m.cfg.Passphrase)
	if err != nil {
		return err
	}

	var st list.State
	if err := json.Unmarshal(plaintext, &st); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := m.src.Restore(ctx, st); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	m.logger.Info("backup restored", "id", record.ID, "file", record.Filename)
	return nil
}

func (m *Manager) read(ctx context.Context, record *model.Backup) ([]byte, error) {
	data, err := os.ReadFile(record.LocalPath)
	if err == nil {
		return data, nil
	}
	if m.client == nil || record.RemoteKey == "" {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	m.logger.Warn("local backup missing, downloading", "file", record.Filename, "error", err)

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(record.RemoteKey),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()
	data, err = io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	return data, nil
}

// Cleanup deletes backups older than retention, locally and off-site.
func (m *Manager) Cleanup(ctx context.Context, retention time.Duration) error {
	before := time.Now().UTC().Add(-retention)
	old, err := m.backupStore.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, b := range old {
		if b.LocalPath != "" {
			if err := os.Remove(b.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				m.logger.Warn("remove backup file", "path", b.LocalPath, "error", err)
			}
		}
		if m.client != nil && b.RemoteKey != "" {
			if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(m.cfg.S3.Bucket),
				Key:    aws.String(b.RemoteKey),
			}); err != nil {
				m.logger.Warn("delete s3 object", "key", b.RemoteKey, "error", err)
			}
		}
	}
	if len(old) > 0 {
		m.logger.Info("old backups removed", "count", len(old))
	}
	return nil
}
