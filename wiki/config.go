package wiki

// Config holds the file-based configuration loaded from config.yaml.
type Config struct {
	Store     StoreConfig   `yaml:"db"`
	Staging   StagingConfig `yaml:"staging"`
	Ingest    IngestConfig  `yaml:"ingest"`
	Host      string        `yaml:"host"`
	LogFormat string        `yaml:"log_format"`
	LogLevel  string        `yaml:"log_level"`
	LogFile   string        `yaml:"log_file"` // empty = stderr
}

// StoreConfig selects the backing database of the link store.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// StagingConfig controls where load sessions stage their records.
type StagingConfig struct {
	Dir         string `yaml:"dir"`
	Compression string `yaml:"compression"` // zstd or none
}

// IngestConfig controls dump ingestion.
type IngestConfig struct {
	Language string `yaml:"language"`
	Workers  int    `yaml:"workers"` // 0 = one per CPU
}
