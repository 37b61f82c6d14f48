package config

const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
	StorageS3     = "s3"
)

const (
	// DraftFileExt is appended to slot keys by the filesystem backend.
	DraftFileExt = ".slot"

	SlotsTable = "slots"
)
