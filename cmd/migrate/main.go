// Command migrate copies composer slots from one storage backend to another.
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/repository/draft"
)

// main is the entry point of the script, parsing flags and orchestrating the migration.
func main() {
	from := config.StorageConfig{}
	to := config.StorageConfig{}

	flag.StringVar(&from.Backend, "from", config.StorageFS, "Source backend (memory, fs, sqlite, s3)")
	flag.StringVar(&from.Path, "from-path", ".composer", "Source directory or database file")
	flag.StringVar(&from.Bucket, "from-bucket", "", "Source S3 bucket")
	flag.StringVar(&to.Backend, "to", config.StorageSQLite, "Destination backend (memory, fs, sqlite, s3)")
	flag.StringVar(&to.Path, "to-path", "composer.db", "Destination directory or database file")
	flag.StringVar(&to.Bucket, "to-bucket", "", "Destination S3 bucket")
	flag.StringVar(&to.Compression, "codec", "zstd", "Compression for sqlite and s3 destinations (zstd, gzip, none)")
	prefix := flag.String("prefix", "composer/", "Object key prefix for S3 backends")
	endpoint := flag.String("endpoint", "", "Custom S3 endpoint")
	overwrite := flag.Bool("overwrite", false, "Replace slots that already exist at the destination")
	flag.Parse()

	from.Prefix, to.Prefix = *prefix, *prefix
	from.Endpoint, to.Endpoint = *endpoint, *endpoint

	if from.Backend == to.Backend && from.Path == to.Path && from.Bucket == to.Bucket {
		log.Fatal("Source and destination are the same backend")
	}

	src, err := draft.Open(from, nil)
	if err != nil {
		log.Fatalf("Error opening source backend %s: %v", from.Backend, err)
	}
	dst, err := draft.Open(to, nil)
	if err != nil {
		log.Fatalf("Error opening destination backend %s: %v", to.Backend, err)
	}

	copied, err := migrate(src, dst, *overwrite)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Copied %d slots from %s to %s", copied, from.Backend, to.Backend)
}

// migrate copies every slot in src into dst and returns how many were written.
// Existing destination slots are kept unless overwrite is set.
func migrate(src, dst draft.Repository, overwrite bool) (int, error) {
	keys, err := src.ListSlots()
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, key := range keys {
		if !overwrite {
			_, err := dst.GetSlot(key)
			if err == nil {
				log.Printf("Skipping existing slot %s", key)
				continue
			}
			if !errors.Is(err, draft.ErrSlotNotFound) {
				log.Printf("Error checking slot %s: %v", key, err)
				continue
			}
		}

		slot, err := src.GetSlot(key)
		if err != nil {
			log.Printf("Error reading slot %s: %v", key, err)
			continue
		}
		if err := dst.SaveSlot(key, slot.Content); err != nil {
			log.Printf("Error saving slot %s: %v", key, err)
			continue
		}
		log.Printf("Successfully copied slot: %s", key)
		copied++
	}
	return copied, nil
}
