package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrEmptyPlaylist       = errors.New("playlist is empty")
	ErrOutOfRange          = errors.New("index out of range")
	ErrEngineUnavailable   = errors.New("playback engine unavailable")
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrLoadInProgress      = errors.New("load already in progress")
	ErrNoTrack             = errors.New("no track loaded")
	ErrInvalidSeek         = errors.New("invalid seek position")
	ErrUnsupportedFormat   = errors.New("unsupported audio format")
	ErrConfigNotFound      = errors.New("config file not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// CinderError wraps an error with a user-friendly suggestion.
type CinderError struct {
	Err        error
	Suggestion string
}

func (e *CinderError) Error() string {
	return e.Err.Error()
}

func (e *CinderError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CinderError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var cinderErr *CinderError
	if errors.As(err, &cinderErr) && cinderErr.Suggestion != "" {
		return cinderErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrEmptyPlaylist) {
		return "Add audio files to your library folder or press 'o' to open a file"
	}

	if errors.Is(err, ErrOutOfRange) {
		return "Pick a track from the playlist"
	}

	if errors.Is(err, ErrUnsupportedFormat) {
		return "Supported formats: mp3, wav, ogg, flac (m4a, aac, wma, aiff need ffmpeg)"
	}

	if errors.Is(err, ErrEngineUnavailable) || strings.Contains(errStr, "ffmpeg") {
		if strings.Contains(errStr, "ffmpeg") || strings.Contains(errStr, "executable file not found") {
			return "Install ffmpeg or set playback.ffmpeg_path in ~/.cinderrc"
		}
		return "Check that the file exists and is a readable audio file"
	}

	if errors.Is(err, ErrLoadInProgress) {
		return "Wait for the current track to finish loading"
	}

	if errors.Is(err, ErrNoTrack) {
		return "Select a track first"
	}

	if errors.Is(err, ErrConfigNotFound) {
		return "Run 'cinder config init' to create a configuration file"
	}

	if errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'cinder config show' to inspect your configuration"
	}

	if strings.Contains(errStr, "permission denied") {
		return "Check file permissions on your library folder"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
