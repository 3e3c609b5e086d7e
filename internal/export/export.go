// Package export renders an account as a spreadsheet, YAML or JSON document.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/account-engine/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat resolves a format name; "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json", "":
		return FormatJSON, nil
	}
	return "", eris.Errorf("export: unknown format %q", s)
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Write encodes acct to w.
func Write(w io.Writer, acct *model.Account, f Format) error {
	switch f {
	case FormatXLSX:
		wb, err := Workbook(acct)
		if err != nil {
			return err
		}
		return eris.Wrap(wb.Write(w), "export: write xlsx")
	case FormatYAML:
		return WriteYAML(w, acct)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(acct), "export: write json")
	}
	return eris.Errorf("export: unknown format %q", f)
}

// WriteYAML writes acct as YAML using the same field names as the JSON form.
func WriteYAML(w io.Writer, acct *model.Account) error {
	raw, err := json.Marshal(acct)
	if err != nil {
		return eris.Wrap(err, "export: marshal account")
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return eris.Wrap(err, "export: marshal account")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "export: write yaml")
	}
	return eris.Wrap(enc.Close(), "export: write yaml")
}
