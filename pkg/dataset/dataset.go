package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
)

// Format identifies a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Dataset is a decoded document.
type Dataset struct {
	Theme   string         `json:"theme,omitempty"`
	Records []chart.Record `json:"records"`
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDataset, "unsupported dataset extension %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
}

// Load reads the document at path. A path of "-" reads JSON from stdin.
//
// Load does not validate the records beyond decoding; malformed series are
// reported by the chart pipeline.
func Load(path string) (*Dataset, error) {
	if path == "-" {
		return Read(os.Stdin, FormatJSON)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open %s", path)
	}
	defer f.Close()

	ds, err := Read(f, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read %s", path)
	}
	return ds, nil
}

// Read decodes a document from r. Read does not close r.
func Read(r io.Reader, format Format) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read")
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode yaml")
		}
		return viaJSON(doc)
	case FormatTOML:
		var doc map[string]any
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode toml")
		}
		return viaJSON(doc)
	}
	return nil, errors.New(errors.ErrCodeInvalidDataset, "unsupported dataset format %q", format)
}

// ReadJSON decodes a JSON document from r.
func ReadJSON(r io.Reader) (*Dataset, error) {
	return Read(r, FormatJSON)
}

func viaJSON(doc any) (*Dataset, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "empty document")
	}
	data, err := json.Marshal(textNonFinite(doc))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "normalize document")
	}
	return decodeJSON(data)
}

// textNonFinite replaces NaN and infinite floats, which YAML and TOML allow
// and JSON does not, with their text form. [chart.Coerce] reads them back.
func textNonFinite(v any) any {
	switch t := v.(type) {
	case float64:
		if !chart.Value(t).Valid() {
			return chart.Value(t).String()
		}
	case map[string]any:
		for k, x := range t {
			t[k] = textNonFinite(x)
		}
	case []map[string]any:
		for _, m := range t {
			textNonFinite(m)
		}
	case []any:
		for i, x := range t {
			t[i] = textNonFinite(x)
		}
	}
	return v
}

func decodeJSON(data []byte) (*Dataset, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "empty document")
	}

	var ds Dataset
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &ds.Records); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode records")
		}
	case '{':
		var doc struct {
			Theme   string          `json:"theme"`
			Records json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode document")
		}
		if len(doc.Records) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidDataset, `document has no "records" field`)
		}
		if err := json.Unmarshal(doc.Records, &ds.Records); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode records")
		}
		ds.Theme = doc.Theme
	default:
		return nil, errors.New(errors.ErrCodeInvalidDataset, "document must be a list of records or an object with records")
	}

	if ds.Records == nil {
		ds.Records = []chart.Record{}
	}
	return &ds, nil
}

// Validate applies the strict naming rules used for untrusted input: every
// record and series entry needs a non-empty name without control characters.
func (d *Dataset) Validate() error {
	for i, rec := range d.Records {
		if err := errors.ValidateName(rec.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRecord, err, "record %d", i)
		}
		for j, e := range rec.Series {
			if err := errors.ValidateName(e.Name); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidSeries, err, "record %d (%q) entry %d", i, rec.Name, j)
			}
		}
	}
	return nil
}

// String summarizes the dataset for logs.
func (d *Dataset) String() string {
	entries := 0
	for _, r := range d.Records {
		entries += len(r.Series)
	}
	return fmt.Sprintf("%d records, %d series entries", len(d.Records), entries)
}
