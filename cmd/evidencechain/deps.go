package main

import (
	"context"
	"fmt"
	"time"

	"evidencechain/internal/custody"
	"evidencechain/internal/db"
	"evidencechain/internal/server"
	"evidencechain/internal/storage"
	"evidencechain/internal/store"
	"evidencechain/internal/store/sqlite"
	"evidencechain/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// ledgerStore is everything the commands need from a record store.
type ledgerStore interface {
	server.Ledger
	custody.ChainAppender
	custody.TamperRecorder
}

// openLedger connects to the configured record store. Migrations run when
// migrate is set.
func openLedger(ctx context.Context, cfg *types.Config, logger *logrus.Logger, migrate bool) (ledgerStore, func(), error) {
	switch cfg.DatabaseDriver {
	case types.DatabaseDriverSQLite:
		handle, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		sqliteStore := sqlite.New(handle)
		if migrate {
			if err := sqliteStore.Migrate(ctx, logger); err != nil {
				_ = handle.Close()
				return nil, nil, err
			}
		}

		return sqliteStore, func() { _ = handle.Close() }, nil

	default:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		if migrate {
			if err := store.Migrate(ctx, logger, pool, cfg.DatabaseSchema); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}

		return store.NewLedger(pool), pool.Close, nil
	}
}

func openStorage(ctx context.Context, cfg *types.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case types.StorageBackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceRoleKey == "" {
			return nil, fmt.Errorf("set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
		return storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.StorageBucket), nil

	case types.StorageBackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("set S3_BUCKET")
		}

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}

		return storage.NewS3Storage(s3.NewFromConfig(awsConfig), cfg.S3Bucket), nil

	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

type custodyServices struct {
	writer   *custody.Writer
	verifier *custody.Verifier
	auditor  *custody.ChainAuditor
}

func newCustodyServices(cfg *types.Config, logger *logrus.Logger, blobs storage.Backend, ledger ledgerStore) *custodyServices {
	backoff := time.Duration(cfg.TamperRecordBackoffMS) * time.Millisecond

	return &custodyServices{
		writer:   custody.NewWriter(logger, blobs, ledger),
		verifier: custody.NewVerifier(logger, blobs, ledger, ledger, cfg.TamperRecordAttempts, backoff),
		auditor:  custody.NewChainAuditor(logger, blobs, ledger),
	}
}
