package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agenthands/papersift/internal/core/model"
)

var validate = validator.New()

// Skip describes an input record that was not loaded.
type Skip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type LoadResult struct {
	Papers  []model.Paper
	Skipped []Skip
}

// Load reads a JSON array of papers, or an object holding them under
// "papers". Records without doi or title are skipped, not fatal. DOIs and
// referenced works are normalised.
func Load(r io.Reader) (*LoadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read papers: %w", err)
	}

	records, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	res := &LoadResult{Papers: make([]model.Paper, 0, len(records))}
	for i, raw := range records {
		var p model.Paper
		if err := json.Unmarshal(raw, &p); err != nil {
			res.Skipped = append(res.Skipped, Skip{Index: i, Reason: err.Error()})
			continue
		}
		p.DOI = NormalizeDOI(p.DOI)
		p.Title = strings.TrimSpace(p.Title)
		for j, ref := range p.ReferencedWorks {
			p.ReferencedWorks[j] = NormalizeDOI(ref)
		}
		if err := validatePaper(p); err != nil {
			res.Skipped = append(res.Skipped, Skip{Index: i, Reason: err.Error()})
			continue
		}
		p.Raw = raw
		res.Papers = append(res.Papers, p)
	}
	return res, nil
}

// LoadFile loads papers from path, or from stdin when path is "-".
func LoadFile(path string) (*LoadResult, error) {
	if path == "-" {
		return Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open papers file '%s': %w", path, err)
	}
	defer f.Close()

	res, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, model.BadInput("empty input")
	}

	var records []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrBadInput, err)
		}
	case '{':
		var wrapper struct {
			Papers *[]json.RawMessage `json:"papers"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrBadInput, err)
		}
		if wrapper.Papers == nil {
			return nil, model.BadInput(`object input has no "papers" key`)
		}
		records = *wrapper.Papers
	default:
		return nil, model.BadInput("expected a JSON array or object")
	}
	return records, nil
}

func validatePaper(p model.Paper) error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%w: %s", model.ErrBadInput, strings.Join(msgs, "; "))
}
