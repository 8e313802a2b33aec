package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"vendor-registry-api/internal/models"
	"vendor-registry-api/internal/store"

	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxErrors = 50
	maxSamples       = 20
)

// Options defines the configuration for spreadsheet imports
type Options struct {
	Sheet       string // default: mapping sheet, then the first sheet
	MappingPath string // optional alias file, see configs/mapping/vendors.yaml
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Row     int    `json:"row"`
	PAN     string `json:"pan,omitempty"`
	Message string `json:"message"`
}

// Summary contains the import statistics
type Summary struct {
	Sheet    string     `json:"sheet"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
	DryRun   bool       `json:"dry_run"`
}

// Mapping is the YAML alias file. Aliases maps a field name to the
// spreadsheet headers that should be read as that field.
type Mapping struct {
	Version int                 `yaml:"version"`
	Sheet   string              `yaml:"sheet"`
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadMapping reads and checks an alias file. An empty path yields the
// built-in mapping, where every field matches only its own name.
func LoadMapping(path string) (*Mapping, error) {
	m := &Mapping{Version: 1}
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	for field := range m.Aliases {
		if field == models.KeyName {
			continue
		}
		if _, ok := models.LookupField(field); !ok {
			return nil, fmt.Errorf("mapping %s: unknown field %q", path, field)
		}
	}
	return m, nil
}

// headerIndex resolves normalized header text to a field name.
func (m *Mapping) headerIndex() map[string]string {
	idx := make(map[string]string, len(models.Fields)+1)
	idx[normalizeHeader(models.KeyName)] = models.KeyName
	for _, f := range models.Fields {
		idx[normalizeHeader(f.Name)] = f.Name
	}
	for field, aliases := range m.Aliases {
		for _, alias := range aliases {
			idx[normalizeHeader(alias)] = field
		}
	}
	return idx
}

// normalizeHeader folds case and treats spaces, dashes and underscores alike,
// so "Legal Name" and "legal-name" both resolve to Legal_Name.
func normalizeHeader(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "_")
}

// ImportVendors reads one sheet of an .xlsx workbook and inserts a vendor per
// non-blank row. Rows whose PAN already exists are skipped, never updated.
func ImportVendors(ctx context.Context, st store.VendorStore, r io.Reader, opts Options) (Summary, error) {
	summary := Summary{DryRun: opts.DryRun}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = defaultMaxErrors
	}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return summary, err
	}

	// xlsx needs random access, so the whole workbook is buffered.
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read workbook: %w", err)
	}
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet, err := pickSheet(xlFile, opts.Sheet, mapping.Sheet)
	if err != nil {
		return summary, err
	}
	summary.Sheet = sheet.Name

	columns, err := readHeader(sheet, mapping.headerIndex())
	if err != nil {
		return summary, err
	}

	seen := make(map[string]bool)
	for rowIdx := 1; rowIdx < sheet.MaxRow; rowIdx++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		payload, err := readRow(sheet, rowIdx, columns)
		if err != nil {
			summary.addError(rowIdx, "", err.Error())
		} else if len(payload) > 0 {
			summary.importRow(ctx, st, rowIdx, payload, seen, opts.DryRun)
		}

		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
		}
	}
	return summary, nil
}

func pickSheet(f *xlsx.File, names ...string) (*xlsx.Sheet, error) {
	for _, name := range names {
		if name == "" {
			continue
		}
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, fmt.Errorf("sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.Sheets[0], nil
}

// readHeader maps column index to field name from the first row. Unknown
// headers are ignored; the first column naming a field wins.
func readHeader(sheet *xlsx.Sheet, index map[string]string) (map[int]string, error) {
	if sheet.MaxRow == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet.Name)
	}

	columns := make(map[int]string)
	taken := make(map[string]bool)
	for col := 0; col < sheet.MaxCol; col++ {
		cell, err := sheet.Cell(0, col)
		if err != nil {
			return nil, fmt.Errorf("failed to read header row: %w", err)
		}
		field, ok := index[normalizeHeader(cell.String())]
		if !ok || taken[field] {
			continue
		}
		columns[col] = field
		taken[field] = true
	}

	if !taken[models.KeyName] {
		return nil, fmt.Errorf("sheet %q has no %s column", sheet.Name, models.KeyName)
	}
	return columns, nil
}

func readRow(sheet *xlsx.Sheet, rowIdx int, columns map[int]string) (map[string]any, error) {
	payload := make(map[string]any)
	for col, field := range columns {
		cell, err := sheet.Cell(rowIdx, col)
		if err != nil {
			return nil, fmt.Errorf("failed to read cell: %w", err)
		}
		if v := strings.TrimSpace(cell.String()); v != "" {
			payload[field] = v
		}
	}
	return payload, nil
}

func (s *Summary) importRow(ctx context.Context, st store.VendorStore, rowIdx int, payload map[string]any, seen map[string]bool, dryRun bool) {
	pan, _ := payload[models.KeyName].(string)

	if missing := models.MissingRequired(payload); len(missing) > 0 {
		sort.Strings(missing)
		s.addError(rowIdx, pan, "missing required fields: "+strings.Join(missing, ", "))
		return
	}
	v, err := models.VendorFromPayload(payload)
	if err != nil {
		s.addError(rowIdx, pan, err.Error())
		return
	}

	if seen[pan] {
		s.Skipped++
		return
	}
	seen[pan] = true

	if dryRun {
		_, err = st.Get(ctx, pan)
		switch {
		case err == nil:
			s.Skipped++
		case errors.Is(err, store.ErrNotFound):
			s.Inserted++
		default:
			s.addError(rowIdx, pan, err.Error())
		}
		return
	}

	err = st.Insert(ctx, v)
	switch {
	case err == nil:
		s.Inserted++
	case errors.Is(err, store.ErrDuplicateKey):
		s.Skipped++
	default:
		s.addError(rowIdx, pan, err.Error())
	}
}

// addError records a failure against a 0-based row index; samples report
// spreadsheet row numbers.
func (s *Summary) addError(rowIdx int, pan, msg string) {
	s.Errors++
	if len(s.Samples) < maxSamples {
		s.Samples = append(s.Samples, RowError{Row: rowIdx + 1, PAN: pan, Message: msg})
	}
}
