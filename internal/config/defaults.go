package config

const (
	defaultConfigPath     = "~/.config/fileorganizer/config.toml"
	defaultStateDir       = "~/.local/share/fileorganizer"
	defaultLogDir         = "~/.local/share/fileorganizer/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultTimeZone       = "UTC"
	defaultHistoryEnabled = true
	defaultSkipHidden     = true
	maxWorkers            = 256
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Engine: Engine{
			TimeZone:   defaultTimeZone,
			SkipHidden: defaultSkipHidden,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}
