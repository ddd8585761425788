package storage

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// StorageConfig selects where the conversation is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=file sqlite"`
	Dir     string `yaml:"dir" validate:"required"`
	Key     string `yaml:"key" validate:"required"`
}

func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend: BackendFile,
		Dir:     "~/.ait/history",
		Key:     "chat_messages",
	}
}
