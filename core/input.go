package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/loader"
	"github.com/huangsam/burstline/schema"
)

// ErrNoInput is returned when neither a file nor an inline document was given.
var ErrNoInput = errors.New("no input document given")

// inlineName labels documents that did not come from a file.
const inlineName = "inline"

// Input is an undecoded document together with where it came from.
type Input struct {
	Name   string
	Format schema.InputFormat
	Data   []byte
}

// FileInput reads the configured input file.
func FileInput(cfg *contract.Config) (Input, error) {
	if cfg.InputPath == "" {
		return Input{}, ErrNoInput
	}
	data, format, err := loader.ReadFile(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return Input{}, err
	}
	return Input{Name: cfg.InputPath, Format: format, Data: data}, nil
}

// InlineInput wraps a document passed by value. An empty format means JSON.
func InlineInput(document string, format schema.InputFormat) (Input, error) {
	if document == "" {
		return Input{}, ErrNoInput
	}
	if format == "" {
		format = schema.JSONInput
	}
	if _, ok := schema.ValidInputFormats[format]; !ok {
		return Input{}, fmt.Errorf("unsupported input format: %s", format)
	}
	return Input{Name: inlineName, Format: format, Data: []byte(document)}, nil
}

// decode converts the input with the configured unit.
func (in Input) decode(cfg *contract.Config) (*schema.BurstDocument, error) {
	doc, err := loader.Decode(in.Data, in.Format, cfg.Unit)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s input %q: %w", in.Format, in.Name, err)
	}
	return doc, nil
}
