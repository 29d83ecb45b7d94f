package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kaiwa/db/archive.db"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "/usr/local/var/kaiwa/data"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kaiwa/indices/bleve"
	}
	if cfg.Storage.VaultDir == "" {
		cfg.Storage.VaultDir = "/usr/local/var/kaiwa/vault/Concepts"
	}
	if cfg.Names.User == "" {
		cfg.Names.User = "User"
	}
	if cfg.Names.Assistant == "" {
		cfg.Names.Assistant = "Assistant"
	}
	if cfg.Names.System == "" {
		cfg.Names.System = "System"
	}
	if cfg.Analysis.MinSimilarity == 0 {
		cfg.Analysis.MinSimilarity = 0.3
	}
	if cfg.Analysis.MinTermOccurrences == 0 {
		cfg.Analysis.MinTermOccurrences = 3
	}
	if cfg.Analysis.SuggestionThreshold == 0 {
		cfg.Analysis.SuggestionThreshold = 5
	}
	if cfg.Analysis.MinInstructionLength == 0 {
		cfg.Analysis.MinInstructionLength = 10
	}
}
