package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agenthands/papersift/internal/core/model"
)

// Artifact file names written by the cluster and subcluster commands.
const (
	ClustersFile    = "clusters.json"
	CommunitiesFile = "communities.json"
	ReportFile      = "validation_report.json"
	ConfidenceFile  = "confidence.json"
	LabelsFile      = "labels.json"
	SubclustersFile = "subclusters.json"
)

// EncodeJSON writes v to w indented by two spaces.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteJSON writes v to path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}
	if err := EncodeJSON(f, v); err != nil {
		f.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return f.Close()
}

// ReadJSON decodes the file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	return nil
}

// Record re-emits a paper with its original fields, with doi and
// referenced_works replaced by their normalised values.
func Record(p model.Paper) (json.RawMessage, error) {
	if len(p.Raw) == 0 {
		return json.Marshal(p)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(p.Raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", p.DOI, err)
	}

	set := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fields[key] = data
		return nil
	}
	if err := set("doi", p.DOI); err != nil {
		return nil, err
	}
	if _, ok := fields["referenced_works"]; ok {
		if err := set("referenced_works", p.ReferencedWorks); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

// WritePapers writes papers as a JSON array of records.
func WritePapers(w io.Writer, papers []model.Paper) error {
	records := make([]json.RawMessage, 0, len(papers))
	for _, p := range papers {
		rec, err := Record(p)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return EncodeJSON(w, records)
}

// WritePapersFile writes papers to path, creating parent directories.
func WritePapersFile(path string, papers []model.Paper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}
	if err := WritePapers(f, papers); err != nil {
		f.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return f.Close()
}
