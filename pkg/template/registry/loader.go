package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"veridian-hq/saturn/pkg/template"
)

// PackLoader loads spec packs from the file system. It supports single
// files and directory trees of YAML packs.
type PackLoader struct {
	config *PackLoaderConfig
}

// PackLoaderConfig contains configuration for the pack loader.
type PackLoaderConfig struct {
	// MaxFileSize is the maximum pack file size in bytes.
	MaxFileSize int64

	// AllowedExtensions lists the pack file extensions to load.
	AllowedExtensions []string

	// SkipHidden controls whether hidden files are skipped.
	SkipHidden bool
}

// DefaultPackLoaderConfig returns the default loader configuration.
func DefaultPackLoaderConfig() *PackLoaderConfig {
	return &PackLoaderConfig{
		MaxFileSize:       10 * 1024 * 1024, // 10 MB
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
	}
}

// LoadError describes a failure to load a pack file.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NewPackLoader creates a new pack loader with the given configuration.
func NewPackLoader(config *PackLoaderConfig) *PackLoader {
	if config == nil {
		config = DefaultPackLoaderConfig()
	}
	return &PackLoader{config: config}
}

// LoadFromFile loads a single spec pack from the given path. A pack
// that fails to parse produces an error and no pack: malformed input
// never yields partial state.
func (l *PackLoader) LoadFromFile(path string) (*template.SpecPack, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{FilePath: path, Message: "permission denied", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	var pack template.SpecPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, &LoadError{FilePath: path, Message: "YAML parsing failed", Cause: err}
	}

	return &pack, nil
}

// LoadFromDirectory loads all spec packs from the given directory
// recursively. It returns the successfully loaded packs along with an
// error listing every file that failed.
func (l *PackLoader) LoadFromDirectory(dir string) ([]*template.SpecPack, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	packFiles, err := l.collectPackFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(packFiles) == 0 {
		return nil, &LoadError{FilePath: dir, Message: "no pack files found in directory"}
	}

	var packs []*template.SpecPack
	var loadErrs []error

	for _, filePath := range packFiles {
		pack, err := l.LoadFromFile(filePath)
		if err != nil {
			loadErrs = append(loadErrs, err)
			continue
		}
		packs = append(packs, pack)
	}

	if len(loadErrs) > 0 {
		msgs := make([]string, len(loadErrs))
		for i, e := range loadErrs {
			msgs[i] = e.Error()
		}
		err := &LoadError{
			FilePath: dir,
			Message:  fmt.Sprintf("%d pack file(s) failed to load:\n  %s", len(loadErrs), strings.Join(msgs, "\n  ")),
		}
		// All files failed: nothing usable.
		if len(packs) == 0 {
			return nil, err
		}
		return packs, err
	}

	return packs, nil
}

// collectPackFiles collects all pack file paths under a directory,
// filtered by extension.
func (l *PackLoader) collectPackFiles(dir string) ([]string, error) {
	var packFiles []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !l.hasValidExtension(path) {
			return nil
		}

		packFiles = append(packFiles, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	return packFiles, nil
}

// hasValidExtension checks if the file has a valid pack file extension.
func (l *PackLoader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}
