package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/overproofed/internal/harness"
	"github.com/roach88/overproofed/internal/writer"
)

// scenarioExts lists the file extensions treated as scenarios.
var scenarioExts = []string{".yaml", ".yml", ".cue"}

// isScenarioFile reports whether path has a scenario extension.
func isScenarioFile(path string) bool {
	return slices.Contains(scenarioExts, filepath.Ext(path))
}

// findScenarioFiles expands paths into scenario files. Directories are
// walked recursively; files are taken as given. filter is a glob matched
// against the file name without its extension. The result is sorted and
// free of duplicates.
func findScenarioFiles(paths []string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	match := func(path string) bool {
		if filter == "" {
			return true
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		ok, _ := filepath.Match(filter, name)
		return ok
	}

	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if match(root) {
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isScenarioFile(path) || !match(path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// loadScenario loads one scenario file, reporting failures through f.
func loadScenario(f *OutputFormatter, path string) (*harness.Scenario, error) {
	s, err := harness.LoadScenario(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario not found: %s", path), err)
	}
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeLoadFailed, fmt.Sprintf("failed to load scenario %s", path), err)
	}
	return s, nil
}

// buildScenario loads and builds a scenario without solving it.
func buildScenario(opts *RootOptions, f *OutputFormatter, path string) (*harness.Scenario, *harness.Built, error) {
	s, err := loadScenario(f, path)
	if err != nil {
		return nil, nil, err
	}
	b, err := harness.Build(s, opts.settings().Capacity)
	if err != nil {
		return nil, nil, scenarioFailure(f, err)
	}
	if n, overflowed := b.Writer.Values().OverflowLen(); overflowed {
		return nil, nil, scenarioFailure(f, &writer.OverflowError{Len: n, Cap: b.Writer.Values().Cap()})
	}
	return s, b, nil
}

// scenarioFailure maps an error from building or running a scenario to an
// exit code and error code.
func scenarioFailure(f *OutputFormatter, err error) error {
	var scenErr *harness.ScenarioError
	switch {
	case writer.IsOverflow(err):
		return f.Fail(ExitFailure, ErrCodeOverflow, "recipe too large for configured capacity", err)
	case errors.As(err, &scenErr):
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "scenario does not fit its recipe", err)
	default:
		return f.Fail(ExitFailure, ErrCodeGeneric, "scenario failed", err)
	}
}
