package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/lookup"
)

// Loader reads mapping files from the following on-disk layout:
//
//	<base>/
//	  lookups/      *.json  → CodeLookupTable
//	  resources/    *.json  → ResourceMapping
//
// Only top-level .json files in each directory are loaded (one level deep).
// A missing lookups/ directory is silently skipped; a missing resources/
// directory is a fatal load error.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a Loader that logs through the given logger.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// LoadDir reads a single base directory's lookups/ and resources/
// subdirectories into raw, unvalidated ResourceMapping and lookup.Table
// values. Callers run the validate package's pipeline over the result
// before treating it as usable.
func (l *Loader) LoadDir(basePath string) ([]ResourceMapping, []*lookup.Table, error) {
	tables, err := l.loadLookups(filepath.Join(basePath, "lookups"))
	if err != nil {
		return nil, nil, err
	}

	resourcesDir := filepath.Join(basePath, "resources")
	entries, err := os.ReadDir(resourcesDir)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindConfig, fmt.Errorf("resources directory %q: %w", resourcesDir, err))
	}

	var mappings []ResourceMapping
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(resourcesDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindConfig, fmt.Errorf("reading %q: %w", path, err))
		}
		var rm ResourceMapping
		if err := json.Unmarshal(data, &rm); err != nil {
			return nil, nil, errs.Wrap(errs.KindConfig, fmt.Errorf("parsing %q: %w", path, err))
		}
		l.log.Debug().Str("file", path).Str("id", rm.ID).Msg("loaded resource mapping")
		mappings = append(mappings, rm)
	}

	return mappings, tables, nil
}

// loadLookups reads every top-level .json file in dir as a CodeLookupTable.
// A missing directory is not an error.
func (l *Loader) loadLookups(dir string) ([]*lookup.Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Debug().Str("dir", dir).Msg("lookups directory absent, skipping")
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindConfig, fmt.Errorf("reading lookups directory %q: %w", dir, err))
	}

	var tables []*lookup.Table
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, fmt.Errorf("reading %q: %w", path, err))
		}
		var raw lookup.Table
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errs.Wrap(errs.KindConfig, fmt.Errorf("parsing %q: %w", path, err))
		}
		table, err := lookup.NewTable(raw)
		if err != nil {
			return nil, err
		}
		l.log.Debug().Str("file", path).Str("id", table.ID).Msg("loaded lookup table")
		tables = append(tables, table)
	}
	return tables, nil
}
