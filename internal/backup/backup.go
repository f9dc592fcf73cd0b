package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/store"
)

// Backup record statuses.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// s3Client is the subset of the S3 API the service uses, kept as an
// interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup service configuration.
type Config struct {
	S3         S3Config
	Bucket     string
	Passphrase string
	DBPath     string
}

// Status is the point-in-time view reported by the status endpoint.
type Status struct {
	Enabled    bool                 `json:"enabled"`
	InProgress bool                 `json:"in_progress"`
	LastBackup *time.Time           `json:"last_backup,omitempty"`
	Recent     []model.BackupRecord `json:"recent"`
}

// Service produces encrypted snapshots of the database and uploads them to
// S3-compatible storage. Disabled (nil client) when the bucket or passphrase
// is not configured.
type Service struct {
	mu         sync.Mutex
	inProgress bool
	lastBackup *time.Time

	cfg     Config
	db      *sql.DB
	backups *store.BackupStore
	client  s3Client
	logger  *slog.Logger
}

// NewService creates a backup service. The returned service is usable but
// reports disabled until the bucket, credentials, and passphrase are all set.
func NewService(cfg Config, db *sql.DB, backups *store.BackupStore, logger *slog.Logger) *Service {
	svc := &Service{
		cfg:     cfg,
		db:      db,
		backups: backups,
		logger:  logger,
	}

	if cfg.Bucket != "" && cfg.Passphrase != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		opts := s3.Options{
			Region:       cfg.S3.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			UsePathStyle: true,
		}
		if cfg.S3.Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		svc.client = s3.New(opts)
	}

	return svc
}

// Enabled reports whether backups are configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Status returns the current backup status with recent history.
func (s *Service) Status() (Status, error) {
	s.mu.Lock()
	st := Status{
		Enabled:    s.client != nil,
		InProgress: s.inProgress,
		LastBackup: s.lastBackup,
	}
	s.mu.Unlock()

	recent, err := s.backups.ListRecent(10)
	if err != nil {
		return Status{}, fmt.Errorf("list recent backups: %w", err)
	}
	st.Recent = recent
	return st, nil
}

// Run snapshots the database, encrypts it, and uploads it. One run at a time;
// a concurrent call returns an error rather than queueing.
func (s *Service) Run(ctx context.Context) (*model.BackupRecord, error) {
	if s.client == nil {
		return nil, fmt.Errorf("backups not configured")
	}

	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		return nil, fmt.Errorf("backup already in progress")
	}
	s.inProgress = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProgress = false
		s.mu.Unlock()
	}()

	filename := fmt.Sprintf("homekeep-%s.db.enc", time.Now().UTC().Format("2006-01-02T150405Z"))

	encrypted, err := s.snapshot(ctx)
	if err != nil {
		if _, serr := s.backups.Create(filename, 0, StatusFailed, err.Error()); serr != nil {
			s.logger.Error("record failed backup", "error", serr)
		}
		return nil, err
	}

	if err := s.upload(ctx, filename, encrypted); err != nil {
		if _, serr := s.backups.Create(filename, 0, StatusFailed, err.Error()); serr != nil {
			s.logger.Error("record failed backup", "error", serr)
		}
		return nil, err
	}

	record, err := s.backups.Create(filename, int64(len(encrypted)), StatusCompleted, "")
	if err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.lastBackup = &now
	s.mu.Unlock()

	s.logger.Info("backup completed", "filename", filename, "size_bytes", len(encrypted))
	return record, nil
}

// snapshot checkpoints the WAL, reads the database file, and encrypts it.
func (s *Service) snapshot(ctx context.Context) ([]byte, error) {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("wal checkpoint: %w", err)
	}

	raw, err := os.ReadFile(s.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}

	encrypted, err := Encrypt(raw, s.cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("encrypt snapshot: %w", err)
	}
	return encrypted, nil
}

// upload puts the encrypted snapshot to S3 with exponential backoff. Object
// storage hiccups are common enough that one transient failure should not
// fail the whole run.
func (s *Service) upload(ctx context.Context, key string, data []byte) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if err != nil {
			s.logger.Warn("backup upload attempt failed", "key", key, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upload backup: %w", err)
	}
	return nil
}
