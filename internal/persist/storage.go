// Package persist holds the write-behind scheduler and the backends that
// keep the board document between restarts.
package persist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

var (
	ErrNotFound       = errors.New("board document not found")
	ErrCorrupt        = errors.New("board document corrupt")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Storage keeps exactly one JSON document. Save overwrites it wholesale.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, b types.Board) error
	Close() error
}

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

type Options struct {
	Backend string

	File string

	RedisURL string
	RedisKey string

	DatabaseURL string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Object    string
	S3UseSSL    bool
}

// Open builds the backend named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStorage(opts.File), nil
	case BackendRedis:
		return NewRedisStorage(ctx, opts.RedisURL, opts.RedisKey)
	case BackendPostgres:
		return NewPostgresStorage(ctx, opts.DatabaseURL)
	case BackendS3:
		return NewObjectStorage(ctx, ObjectOptions{
			Endpoint:  opts.S3Endpoint,
			AccessKey: opts.S3AccessKey,
			SecretKey: opts.S3SecretKey,
			Bucket:    opts.S3Bucket,
			Object:    opts.S3Object,
			UseSSL:    opts.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// LoadOrSeed returns the stored board, normalized. Absent storage is seeded
// with the default board; an unreadable or malformed document falls back to
// the default without overwriting it.
func LoadOrSeed(ctx context.Context, s Storage, log *zap.Logger) types.Board {
	raw, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		seed := board.Default()
		if err := s.Save(ctx, seed); err != nil {
			log.Error("failed to seed board", zap.Error(err))
		} else {
			log.Info("seeded default board")
		}
		return seed
	}
	if err != nil {
		log.Warn("board storage unreadable, using default", zap.Error(fmt.Errorf("%w: %v", ErrCorrupt, err)))
		return board.Default()
	}

	res := board.Normalize(raw)
	if !res.OK() {
		log.Warn("board storage corrupt, using default", zap.Error(ErrCorrupt), zap.String("reason", res.Reason))
		return board.Default()
	}
	return res.Board
}
