package usage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/pkg/models"
)

// Input is a usage file: the business header plus its monthly entries
type Input struct {
	Business models.Business     `yaml:"business"`
	Entries  []models.UsageEntry `yaml:"entries"`
}

// LoadFile reads an input file. YAML files carry the business header and
// entries; CSV files carry entries only, with a month,year,kwh,cost header.
func LoadFile(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening usage file: %w", err)
	}
	defer f.Close()

	var in *Input
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		in, err = decodeYAML(f)
	case ".csv":
		in, err = decodeCSV(f)
	default:
		return nil, fmt.Errorf("unsupported usage file type: %s (use .yaml or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	for i, e := range in.Entries {
		if err := emissions.ValidateEntry(i+1, e); err != nil {
			return nil, err
		}
	}

	return in, nil
}

func decodeYAML(r io.Reader) (*Input, error) {
	var in Input
	if err := yaml.NewDecoder(r).Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return &in, nil
		}
		return nil, fmt.Errorf("parsing usage file: %w", err)
	}
	return &in, nil
}

func decodeCSV(r io.Reader) (*Input, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{FieldMonth, FieldYear, FieldKWh, FieldCost} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("CSV header missing %q column", name)
		}
	}

	c := &Collector{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		c.rows = append(c.rows, Row{
			Month: at(record, cols[FieldMonth]),
			Year:  at(record, cols[FieldYear]),
			KWh:   at(record, cols[FieldKWh]),
			Cost:  at(record, cols[FieldCost]),
		})
	}

	entries, err := c.Collect()
	if err != nil {
		return nil, err
	}
	return &Input{Entries: entries}, nil
}

// WriteFile saves an input as YAML
func WriteFile(path string, in *Input) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling usage file: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing usage file: %w", err)
	}

	return nil
}
