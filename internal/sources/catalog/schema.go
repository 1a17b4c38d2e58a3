package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
)

// Format is the encoding of a catalog payload.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Payload is what a Fetcher hands back: raw bytes plus how to read them.
type Payload struct {
	Data   []byte
	Format Format
}

// document mirrors the catalog file layout (data/eol-data.json).
type document struct {
	LastUpdated string                  `json:"lastUpdated" yaml:"lastUpdated"`
	Vendors     []domain.Vendor         `json:"vendors" yaml:"vendors"`
	Categories  []domain.Category       `json:"categories" yaml:"categories"`
	Services    []*domain.ServiceRecord `json:"services" yaml:"services"`
}

// listFields must be present and array-typed in every document.
var listFields = []string{"services", "vendors", "categories"}

// Decode parses and validates a payload. Any structural problem is
// reported as KindMalformedResponse; nothing is partially accepted.
func Decode(p *Payload) (*domain.Catalog, error) {
	var (
		doc document
		err error
	)

	switch p.Format {
	case FormatYAML:
		err = decodeYAML(p.Data, &doc)
	default:
		err = decodeJSON(p.Data, &doc)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(&doc); err != nil {
		return nil, err
	}

	return &domain.Catalog{
		LastUpdated: doc.LastUpdated,
		Vendors:     doc.Vendors,
		Categories:  doc.Categories,
		Services:    doc.Services,
	}, nil
}

func decodeJSON(data []byte, doc *document) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return malformed("payload is not a JSON object: %w", err)
	}
	for _, field := range listFields {
		raw, ok := top[field]
		if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			return malformed("%s is not an array", field)
		}
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return malformed("failed to decode catalog: %w", err)
	}
	return nil
}

func decodeYAML(data []byte, doc *document) error {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return malformed("payload is not a YAML mapping: %w", err)
	}
	for _, field := range listFields {
		node, ok := top[field]
		if !ok || node.Kind != yaml.SequenceNode {
			return malformed("%s is not an array", field)
		}
	}

	if err := yaml.Unmarshal(data, doc); err != nil {
		return malformed("failed to decode catalog: %w", err)
	}
	return nil
}

func validate(doc *document) error {
	for i, svc := range doc.Services {
		if svc == nil {
			return malformed("service #%d is null", i)
		}
		if svc.ID == "" || svc.Vendor == "" || svc.ServiceName == "" || svc.Category == "" {
			return malformed("service #%d (%q) is missing required fields", i, svc.ID)
		}
		for _, d := range []struct{ name, value string }{
			{"eolDate", svc.EOLDate},
			{"supportEndDate", svc.SupportEndDate},
		} {
			if d.value == "" {
				continue
			}
			if _, err := domain.ParseDate(d.value); err != nil {
				return malformed("service %q: %s: %w", svc.ID, d.name, err)
			}
		}
	}
	return nil
}

// decodeSnapshot reads a cached, already classified catalog.
func decodeSnapshot(data []byte) (*domain.Catalog, error) {
	var c domain.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if c.Services == nil || c.Vendors == nil || c.Categories == nil {
		return nil, fmt.Errorf("snapshot is missing catalog lists")
	}
	for i, svc := range c.Services {
		if svc == nil || svc.ID == "" {
			return nil, fmt.Errorf("snapshot service #%d is invalid", i)
		}
	}
	return &c, nil
}
