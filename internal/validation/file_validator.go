package validation

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "valuationcli/internal/errors"
)

// FileValidator checks the files a run reads and the directories it writes
// before any step does real work
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateWorkbook checks that the Shiller workbook exists and is an .xlsx
// file. The legacy .xls format is rejected with a hint to re-save it.
func (v *FileValidator) ValidateWorkbook(path string) error {
	if err := v.ValidateFile(path); err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeMissingDependency) {
			return apperrors.NewAppError(apperrors.ErrTypeMissingDependency,
				fmt.Sprintf("workbook %s not found: download the Shiller ie_data workbook, save it as .xlsx at that path", path), nil).
				WithContext("path", path)
		}
		return err
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return apperrors.NewConfigError(fmt.Sprintf("%s is an Excel lock file, not a workbook", path), nil)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return nil
	case ".xls":
		v.logger.Error("Legacy workbook format",
			slog.String("file", path))
		return apperrors.NewConfigError(fmt.Sprintf("%s uses the legacy .xls format: open it and save as .xlsx", path), nil).
			WithContext("path", path)
	default:
		return apperrors.NewConfigError(fmt.Sprintf("%s is not an Excel workbook (extension %q)", path, ext), nil).
			WithContext("path", path)
	}
}

// ValidateSeriesCSV checks that a series CSV written by producer exists.
// A missing file names the command that creates it.
func (v *FileValidator) ValidateSeriesCSV(path, producer string) error {
	if err := v.ValidateFile(path); err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeMissingDependency) {
			return apperrors.NewMissingDependencyError(path, producer)
		}
		return err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		v.logger.Error("File is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewConfigError(fmt.Sprintf("%s is not a CSV file (extension %q)", path, ext), nil)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists, creating it when needed, and
// accepts new files
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateOutputFile validates the directory that will hold path
func (v *FileValidator) ValidateOutputFile(path string) error {
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewAppError(apperrors.ErrTypeMissingDependency,
			fmt.Sprintf("file %s does not exist", path), err)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("stat %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewConfigError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
