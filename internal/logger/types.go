package logger

// Config holds logger configuration.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level" env:"LOG_LEVEL"`
	// Format is "json" or "console".
	Format string `yaml:"format" env:"LOG_FORMAT"`
	// OutputPaths overrides the default output (stderr).
	OutputPaths []string `yaml:"output_paths"`
}

// SetDefaults applies default values in place.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}
