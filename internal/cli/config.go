package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/cinder/internal/config"
	cerrors "github.com/tessro/cinder/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing cinder configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, after defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  library.dir            Folder scanned at startup
  library.extensions     Comma-separated extensions (.mp3,.flac)
  playback.volume        Startup volume (0-100)
  playback.autoplay      Start playing a track as soon as it loads (true/false)
  playback.auto_advance  Play the next track when one ends (true/false)
  playback.ffmpeg_path   ffmpeg binary for m4a, aac, wma and aiff
  tui.theme              auto, dark or light
  tui.refresh_interval   Dashboard refresh in milliseconds
  tui.show_cover         Draw cover art (true/false)
  log.level              debug, info, warn or error
  log.file               Log file for the dashboard

Examples:
  cinder config set library.dir ~/Music
  cinder config set playback.volume 50`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetDirCmd = &cobra.Command{
	Use:   "set-dir",
	Short: "Interactively choose the library folder",
	Long:  `Shows a form to pick the folder scanned at startup.`,
	RunE:  runConfigSetDir,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetDirCmd)
	rootCmd.AddCommand(configCmd)
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindList
)

var configKeys = map[string]keyKind{
	"library.dir":           kindString,
	"library.extensions":    kindList,
	"playback.volume":       kindInt,
	"playback.autoplay":     kindBool,
	"playback.auto_advance": kindBool,
	"playback.ffmpeg_path":  kindString,
	"tui.theme":             kindString,
	"tui.refresh_interval":  kindInt,
	"tui.show_cover":        kindBool,
	"log.level":             kindString,
	"log.file":              kindString,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if JSONOutput() {
		return writeJSON(out, cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(out)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", configPath, cerrors.ErrConfigNotFound)
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		// Try common editors
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return writeJSON(out, map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	_, _ = fmt.Fprintf(out, "Created config file: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Put audio files in the library folder, or run 'cinder config set-dir'")
	_, _ = fmt.Fprintln(out, "  2. Run 'cinder' to open the dashboard")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// writeConfigFile encodes v as TOML to path, creating parent dirs.
func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Cinder Configuration\n\n")
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// setConfigValue stores value under a "section.field" key in raw,
// converted to the key's type.
func setConfigValue(raw map[string]any, key, value string) error {
	kind, ok := configKeys[key]
	if !ok {
		known := make([]string, 0, len(configKeys))
		for k := range configKeys {
			known = append(known, k)
		}
		sort.Strings(known)
		return fmt.Errorf("unknown key %q (supported: %s)", key, strings.Join(known, ", "))
	}

	section, field, _ := strings.Cut(key, ".")

	var typed any
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value must be an integer for %s", key)
		}
		typed = i
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("value must be true or false for %s", key)
		}
		typed = b
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		typed = items
	default:
		typed = value
	}

	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}
	sectionMap[field] = typed
	return nil
}

// checkRaw decodes raw the way Load does and validates the result.
func checkRaw(raw map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return err
	}
	c := config.Default()
	if _, err := toml.Decode(buf.String(), c); err != nil {
		return fmt.Errorf("%w: %w", cerrors.ErrInvalidConfig, err)
	}
	c.ApplyDefaults()
	return c.Validate()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := updateConfigFile(getConfigPath(), key, value); err != nil {
		return err
	}
	return reportSet(cmd.OutOrStdout(), key, value)
}

func updateConfigFile(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", configPath, cerrors.ErrConfigNotFound)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := setConfigValue(raw, key, value); err != nil {
		return err
	}
	if err := checkRaw(raw); err != nil {
		return err
	}
	return writeConfigFile(configPath, raw)
}

func reportSet(out io.Writer, key, value string) error {
	if JSONOutput() {
		return writeJSON(out, map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	_, err := fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return err
}

func validateLibraryDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("folder is required")
	}
	info, err := os.Stat(expandPath(s))
	if err == nil && !info.IsDir() {
		return fmt.Errorf("%s is not a folder", s)
	}
	return nil
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func runConfigSetDir(cmd *cobra.Command, args []string) error {
	dir := cfg.Library.Dir
	create := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Library folder").
				Description("Audio files in this folder are loaded at startup").
				Value(&dir).
				Validate(validateLibraryDir),
			huh.NewConfirm().
				Title("Create the folder if it does not exist?").
				Value(&create),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	dir = expandPath(strings.TrimSpace(dir))
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeConfigFile(configPath, config.Default()); err != nil {
			return err
		}
	}

	if err := updateConfigFile(configPath, "library.dir", dir); err != nil {
		return err
	}
	return reportSet(cmd.OutOrStdout(), "library.dir", dir)
}
