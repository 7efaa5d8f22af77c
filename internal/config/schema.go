package config

// Config is the root configuration structure.
type Config struct {
	Library  LibraryConfig  `toml:"library" json:"library"`
	Playback PlaybackConfig `toml:"playback" json:"playback"`
	TUI      TUIConfig      `toml:"tui" json:"tui"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// LibraryConfig holds the startup folder scan settings.
type LibraryConfig struct {
	Dir        string   `toml:"dir" json:"dir"`
	Extensions []string `toml:"extensions" json:"extensions"`
}

// PlaybackConfig holds default playback settings.
type PlaybackConfig struct {
	Volume      int    `toml:"volume" json:"volume"`
	Autoplay    bool   `toml:"autoplay" json:"autoplay"`
	AutoAdvance bool   `toml:"auto_advance" json:"auto_advance"`
	FFmpegPath  string `toml:"ffmpeg_path" json:"ffmpeg_path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"`
	ShowCover       bool   `toml:"show_cover" json:"show_cover"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}
