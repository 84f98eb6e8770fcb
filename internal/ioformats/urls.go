
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ReadURLs loads submission URLs from a CSV file with a "url" header column
// or from NDJSON (raw lines or {"url": "..."} objects). Unknown extensions
// try CSV first and fall back to NDJSON only when the data is not a CSV with
// a url column.
func ReadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".ndjson", ".jsonl":
		return ParseNDJSON(bytes.NewReader(data))
	}
	if urls, err := ParseCSV(bytes.NewReader(data)); err == nil {
		return urls, nil
	}
	return ParseNDJSON(bytes.NewReader(data))
}

func ParseCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, errors.Wrap(err, "csv header")
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("csv must contain a 'url' header column")
	}

	var out []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "csv row")
		}
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func ParseNDJSON(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var obj struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.URL != "" {
				out = append(out, obj.URL)
				continue
			}
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan ndjson")
	}
	if len(out) == 0 {
		return nil, errors.New("no urls found in ndjson")
	}
	return out, nil
}

// WriteNDJSON writes one JSON document per line.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return errors.Wrap(err, "encode record")
		}
	}
	return nil
}
