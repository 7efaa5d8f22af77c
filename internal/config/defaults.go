package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Dir:        "songs",
			Extensions: []string{".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac", ".wma", ".aiff"},
		},
		Playback: PlaybackConfig{
			Volume:      70,
			Autoplay:    true,
			AutoAdvance: true,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
			ShowCover:       true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in empty values with sensible defaults.
// Booleans and volume are seeded before decoding, so an explicit
// false or 0 in the file survives.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Library
	if c.Library.Dir == "" {
		c.Library.Dir = d.Library.Dir
	}
	if len(c.Library.Extensions) == 0 {
		c.Library.Extensions = d.Library.Extensions
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
