package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Read parses delimited data into a Table. The first record is the header;
// column order is preserved as encountered.
func Read(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// ClinVar variant summary files prefix the header with "#".
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "#")
	}

	table := &Table{Columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+1, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", len(table.Rows)+1, len(record), len(header))
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// Load reads a delimited file into a Table. Files with a .csv extension are
// parsed comma-separated; everything else is treated as tab-separated, which
// matches the ClinVar variant summary format.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	delimiter := '\t'
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		delimiter = ','
	}

	table, err := Read(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}
