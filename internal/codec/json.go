package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec reads and writes indented JSON snapshots.
type JSONCodec struct {
	indent string
}

// NewJSONCodec returns a codec indenting with two spaces.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{indent: "  "}
}

func (c *JSONCodec) Format() string { return "json" }

// Parse reads one snapshot. Unknown top-level keys are rejected so that a
// fixture plan handed over by mistake fails loudly.
func (c *JSONCodec) Parse(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	s := new(Snapshot)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("decode json snapshot: %w", err)
	}
	return s, nil
}

func (c *JSONCodec) Export(s *Snapshot, w io.Writer) error {
	data, err := json.MarshalIndent(s, "", c.indent)
	if err != nil {
		return fmt.Errorf("encode json snapshot: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
