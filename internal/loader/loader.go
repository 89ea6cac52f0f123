// Package loader decodes burst and offset documents into schema types.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/huangsam/burstline/core/algo"
	"github.com/huangsam/burstline/schema"
	"gopkg.in/yaml.v3"
)

// ErrMalformedDocument is returned when a document cannot be interpreted.
var ErrMalformedDocument = errors.New("malformed document")

// rawDocument mirrors the on-disk layout before timestamps are converted.
// Bursts are either [level, start, end] triples or {level, start, end} objects.
type rawDocument struct {
	SVO     []string `json:"svo" yaml:"svo"`
	Bursts  []any    `json:"bursts" yaml:"bursts"`
	Offsets []any    `json:"offsets" yaml:"offsets"`
}

// DetectFormat guesses the input format from a file extension.
func DetectFormat(path string) (schema.InputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.JSONInput, nil
	case ".yaml", ".yml":
		return schema.YAMLInput, nil
	case ".csv":
		return schema.CSVInput, nil
	}
	return "", fmt.Errorf("cannot detect input format of %q; pass --input-format", path)
}

// ReadFile reads path and resolves its format. An empty format is detected
// from the extension.
func ReadFile(path string, format schema.InputFormat) ([]byte, schema.InputFormat, error) {
	if format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, "", err
		}
		format = detected
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input %q: %w", path, err)
	}
	return data, format, nil
}

// LoadFile reads and decodes path. An empty format is detected from the extension.
// The raw bytes are returned so callers can fingerprint the input.
func LoadFile(path string, format schema.InputFormat, unit schema.TimeUnit) (*schema.BurstDocument, []byte, error) {
	data, format, err := ReadFile(path, format)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Decode(data, format, unit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s input %q: %w", format, path, err)
	}
	return doc, data, nil
}

// Decode converts a document in format into bursts and offsets using unit for
// every epoch number in it.
func Decode(data []byte, format schema.InputFormat, unit schema.TimeUnit) (*schema.BurstDocument, error) {
	switch format {
	case schema.JSONInput:
		var raw rawDocument
		dec := sonic.ConfigStd.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		return convert(raw, unit)
	case schema.YAMLInput:
		var raw rawDocument
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		return convert(raw, unit)
	case schema.CSVInput:
		return decodeCSV(bytes.NewReader(data), unit)
	}
	return nil, fmt.Errorf("unsupported input format: %s", format)
}

func convert(raw rawDocument, unit schema.TimeUnit) (*schema.BurstDocument, error) {
	doc := &schema.BurstDocument{SVO: raw.SVO}

	for i, item := range raw.Bursts {
		var level, start, end any
		switch v := item.(type) {
		case []any:
			if len(v) != 3 {
				return nil, fmt.Errorf("%w: burst %d has %d fields, want [level, start, end]", ErrMalformedDocument, i, len(v))
			}
			level, start, end = v[0], v[1], v[2]
		case map[string]any:
			level, start, end = v["level"], v["start"], v["end"]
		default:
			return nil, fmt.Errorf("%w: burst %d has unexpected type %T", ErrMalformedDocument, i, item)
		}

		b, err := toBurst(level, start, end, unit)
		if err != nil {
			return nil, fmt.Errorf("burst %d: %w", i, err)
		}
		doc.Bursts = append(doc.Bursts, b)
	}

	for i, item := range raw.Offsets {
		t, err := toTime(item, unit)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", i, err)
		}
		doc.Offsets = append(doc.Offsets, t)
	}
	return doc, nil
}

func toBurst(level, start, end any, unit schema.TimeUnit) (schema.Burst, error) {
	l, err := toLevel(level)
	if err != nil {
		return schema.Burst{}, err
	}
	s, err := toTime(start, unit)
	if err != nil {
		return schema.Burst{}, fmt.Errorf("start: %w", err)
	}
	e, err := toTime(end, unit)
	if err != nil {
		return schema.Burst{}, fmt.Errorf("end: %w", err)
	}
	b := schema.Burst{Level: l, Start: s, End: e}
	if err := b.Validate(); err != nil {
		return schema.Burst{}, err
	}
	return b, nil
}

func toLevel(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: level %q is not an integer", ErrMalformedDocument, n)
		}
		return int(i), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: level %v is not an integer", ErrMalformedDocument, n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: level %q is not an integer", ErrMalformedDocument, n)
		}
		return i, nil
	case nil:
		return 0, fmt.Errorf("%w: missing level", ErrMalformedDocument)
	}
	return 0, fmt.Errorf("%w: level has unexpected type %T", ErrMalformedDocument, v)
}

func toTime(v any, unit schema.TimeUnit) (time.Time, error) {
	switch t := v.(type) {
	case json.Number:
		return algo.ParseTimestamp(t.String(), unit)
	case int:
		return algo.IntToTime(int64(t), unit)
	case int64:
		return algo.IntToTime(t, unit)
	case uint64:
		if t > math.MaxInt64 {
			return time.Time{}, fmt.Errorf("%w: %d overflows", algo.ErrInvalidTimestamp, t)
		}
		return algo.IntToTime(int64(t), unit)
	case float64:
		return algo.FloatToTime(t, unit)
	case string:
		return algo.ParseTimestamp(t, unit)
	case time.Time:
		return t, nil
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing value", algo.ErrInvalidTimestamp)
	}
	return time.Time{}, fmt.Errorf("%w: unexpected type %T", algo.ErrInvalidTimestamp, v)
}

// decodeCSV reads rows of kind,level,start,end. Offset rows only use start.
func decodeCSV(r io.Reader, unit schema.TimeUnit) (*schema.BurstDocument, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &schema.BurstDocument{}
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(rec[0]))
		if i == 0 && kind == "kind" {
			continue
		}
		switch kind {
		case "burst":
			if len(rec) < 4 {
				return nil, fmt.Errorf("%w: row %d: burst rows need kind,level,start,end", ErrMalformedDocument, i+1)
			}
			b, err := toBurst(rec[1], rec[2], rec[3], unit)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			doc.Bursts = append(doc.Bursts, b)
		case "offset":
			if len(rec) < 3 {
				return nil, fmt.Errorf("%w: row %d: offset rows need kind,,start", ErrMalformedDocument, i+1)
			}
			t, err := algo.ParseTimestamp(rec[2], unit)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			doc.Offsets = append(doc.Offsets, t)
		default:
			return nil, fmt.Errorf("%w: row %d: unknown kind %q", ErrMalformedDocument, i+1, rec[0])
		}
	}
	return doc, nil
}
