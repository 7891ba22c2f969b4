// Package file implements the driven.ExportStore port on the local
// filesystem: one JSON tree per dataset and one DSL text file per app,
// readable later for standalone import without contacting the source.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ExportStore = (*Store)(nil)

// DefaultDir is the export directory used when none is configured.
const DefaultDir = "export_data"

// Store writes export units under one directory.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates the export directory if needed and returns a store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the export directory path.
func (s *Store) Dir() string { return s.dir }

// On-disk shapes. Kept separate from domain types so the file format stays
// stable under domain refactors.

type datasetFile struct {
	Dataset   datasetMeta    `json:"dataset"`
	Documents []documentFile `json:"documents"`
}

type datasetMeta struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	DocumentCount int    `json:"document_count"`
	WordCount     int    `json:"word_count"`
}

type documentFile struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Segments []segmentFile `json:"segments"`
}

type segmentFile struct {
	Content  string   `json:"content"`
	Keywords []string `json:"keywords,omitempty"`
}

// SaveDataset writes one dataset export unit as dataset_<id>.json.
func (s *Store) SaveDataset(_ context.Context, export domain.DatasetExport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if export.Dataset.ID == "" {
		return "", fmt.Errorf("%w: dataset id is required", domain.ErrInvalidInput)
	}

	out := datasetFile{
		Dataset: datasetMeta{
			ID:            export.Dataset.ID,
			Name:          export.Dataset.Name,
			Description:   export.Dataset.Description,
			DocumentCount: export.Dataset.DocumentCount,
			WordCount:     export.Dataset.WordCount,
		},
		Documents: make([]documentFile, 0, len(export.Documents)),
	}
	for _, doc := range export.Documents {
		df := documentFile{ID: doc.Document.ID, Name: doc.Document.Name}
		for _, seg := range doc.Segments {
			df.Segments = append(df.Segments, segmentFile{Content: seg.Content, Keywords: seg.Keywords})
		}
		out.Documents = append(out.Documents, df)
	}

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode dataset export: %w", err)
	}

	path := filepath.Join(s.dir, "dataset_"+sanitise(export.Dataset.ID)+".json")
	if err := os.WriteFile(path, payload, 0600); err != nil {
		return "", fmt.Errorf("write dataset export: %w", err)
	}
	return path, nil
}

// SaveApp writes one app export unit as app_<name>_<id>.yml, DSL verbatim.
func (s *Store) SaveApp(_ context.Context, export domain.AppExport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if export.App.ID == "" {
		return "", fmt.Errorf("%w: app id is required", domain.ErrInvalidInput)
	}

	name := fmt.Sprintf("app_%s_%s.yml", sanitise(export.App.Name), sanitise(export.App.ID))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(export.DSL), 0600); err != nil {
		return "", fmt.Errorf("write app export: %w", err)
	}
	return path, nil
}

// LoadDatasets reads every stored dataset export unit.
func (s *Store) LoadDatasets(_ context.Context) ([]domain.DatasetExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.dir, "dataset_*.json"))
	if err != nil {
		return nil, err
	}

	exports := make([]domain.DatasetExport, 0, len(paths))
	for _, path := range paths {
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var in datasetFile
		if err := json.Unmarshal(payload, &in); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		export := domain.DatasetExport{
			Dataset: domain.Dataset{
				ID:            in.Dataset.ID,
				Name:          in.Dataset.Name,
				Description:   in.Dataset.Description,
				DocumentCount: in.Dataset.DocumentCount,
				WordCount:     in.Dataset.WordCount,
			},
		}
		for _, df := range in.Documents {
			doc := domain.DocumentExport{Document: domain.Document{ID: df.ID, Name: df.Name}}
			for _, sf := range df.Segments {
				doc.Segments = append(doc.Segments, domain.Segment{Content: sf.Content, Keywords: sf.Keywords})
			}
			export.Documents = append(export.Documents, doc)
		}
		exports = append(exports, export)
	}
	return exports, nil
}

// LoadApps reads every stored app export unit. The app name is recovered
// from the DSL itself, falling back to the filename.
func (s *Store) LoadApps(_ context.Context) ([]domain.AppExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.dir, "app_*.yml"))
	if err != nil {
		return nil, err
	}

	exports := make([]domain.AppExport, 0, len(paths))
	for _, path := range paths {
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		dsl := string(payload)
		exports = append(exports, domain.AppExport{
			App: domain.App{Name: appNameFromDSL(dsl, path), Mode: appModeFromDSL(dsl)},
			DSL: dsl,
		})
	}
	return exports, nil
}

// dslHeader is the slice of a DSL document the store cares about.
type dslHeader struct {
	App struct {
		Name string `yaml:"name"`
		Mode string `yaml:"mode"`
	} `yaml:"app"`
}

func appNameFromDSL(dsl, path string) string {
	var header dslHeader
	if err := yaml.Unmarshal([]byte(dsl), &header); err == nil && header.App.Name != "" {
		return header.App.Name
	}

	// Fallback: app_<name>_<id>.yml
	base := strings.TrimSuffix(filepath.Base(path), ".yml")
	base = strings.TrimPrefix(base, "app_")
	if idx := strings.LastIndex(base, "_"); idx > 0 {
		return base[:idx]
	}
	return base
}

func appModeFromDSL(dsl string) string {
	var header dslHeader
	if err := yaml.Unmarshal([]byte(dsl), &header); err == nil {
		return header.App.Mode
	}
	return ""
}

// sanitise makes a string safe for use in a filename.
func sanitise(in string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, in)
}
