package draft

import (
	"fmt"
	"os"

	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/db"
	"github.com/debemdeboas/archive-comments/internal/util/compression"
)

// Open builds the backend named by cfg. The sqlite backend uses database, or
// opens cfg.Path when database is nil. S3 credentials come from S3_ACCESS_KEY_ID
// and S3_ACCESS_KEY_SECRET. cfg.Compression applies to the sqlite and s3
// backends.
func Open(cfg config.StorageConfig, database db.DB) (Repository, error) {
	codec, err := compression.ForName(cfg.Compression)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.StorageMemory:
		return NewMemoryRepository(), nil
	case config.StorageFS:
		return NewFSRepository(cfg.Path)
	case config.StorageSQLite:
		if database == nil {
			sqlite := db.NewSQLite(cfg.Path)
			if err := sqlite.InitDB(); err != nil {
				return nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
			}
			database = sqlite
		}
		repo := NewDBRepository(database)
		repo.compressor = codec
		return repo, nil
	case config.StorageS3:
		repo, err := NewS3Repository(
			cfg.Bucket,
			cfg.Prefix,
			os.Getenv("S3_ACCESS_KEY_ID"),
			os.Getenv("S3_ACCESS_KEY_SECRET"),
			cfg.Endpoint,
		)
		if err != nil {
			return nil, err
		}
		repo.compressor = codec
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
