package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/heimdex/jr3d/internal/projectfile"
)

const (
	// DefaultFileStem names archives whose project name sanitizes to nothing.
	DefaultFileStem = "jr3d_project"

	// maxNameLen bounds the file stem in runes.
	maxNameLen = 120
)

// reservedStems are device names Windows refuses as file names.
var reservedStems = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

var (
	ErrOutputDirRequired  = errors.New("output_dir is required")
	ErrOutputDirTraversal = errors.New("output_dir cannot contain path traversal")
	ErrOutputDirUnclean   = errors.New("output_dir must be clean path")
	ErrOutputDirMissing   = errors.New("output_dir does not exist")
	ErrOutputDirNotDir    = errors.New("output_dir is not a directory")
)

// SanitizeName makes s safe as a file name on every platform: the text is
// NFC-composed, control characters are dropped, anything outside letters,
// digits and " -_.,()" becomes '_', and the result is trimmed and cut to
// maxLen runes (no limit when maxLen <= 0).
func SanitizeName(s string, maxLen int) string {
	cleaned := strings.Map(nameRune, norm.NFC.String(s))
	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return cleaned
}

func nameRune(r rune) rune {
	switch {
	case unicode.IsControl(r):
		return -1
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return r
	case strings.ContainsRune(" -_.,()", r):
		return r
	default:
		return '_'
	}
}

// FileName returns the archive file name for a project.
func FileName(projectName string) string {
	stem := strings.Trim(SanitizeName(projectName, maxNameLen), ". ")
	if stem == "" {
		stem = DefaultFileStem
	}
	if slices.Contains(reservedStems, strings.ToUpper(stem)) {
		stem += "_"
	}
	return stem + projectfile.FileExtension
}

// ValidateOutputDir checks that dir is a clean, existing directory path
// without ".." segments.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrOutputDirRequired
	}
	if slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), "..") {
		return ErrOutputDirTraversal
	}
	if filepath.Clean(dir) != dir {
		return ErrOutputDirUnclean
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ErrOutputDirMissing
	case err != nil:
		return fmt.Errorf("invalid output_dir: %w", err)
	case !info.IsDir():
		return ErrOutputDirNotDir
	}
	return nil
}
