// Package jsonx wraps Sonic as a drop-in for encoding/json on the hot
// request path and for parsing the portfolio data files.
package jsonx

import (
	"bytes"
	"io"

	"github.com/bytedance/sonic"
)

// Marshal returns the JSON encoding of v using Sonic.
func Marshal(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal parses the JSON-encoded data and stores the result
// in the value pointed to by v.
func Unmarshal(data []byte, v interface{}) error {
	return sonic.Unmarshal(data, v)
}

// MarshalToString is like Marshal but returns the JSON as a string.
func MarshalToString(v interface{}) (string, error) {
	return sonic.MarshalString(v)
}

// UnmarshalFromString parses the JSON string and stores the result in v.
func UnmarshalFromString(data string, v interface{}) error {
	return sonic.UnmarshalString(data, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return sonic.Valid(data)
}

// Decoder reads a single JSON value from an io.Reader.
type Decoder struct {
	reader io.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: r}
}

// Decode reads the JSON-encoded value from the input and stores it in v.
func (d *Decoder) Decode(v interface{}) error {
	data, err := io.ReadAll(d.reader)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}

// Encoder writes JSON values to an io.Writer.
type Encoder struct {
	writer io.Writer
	buf    bytes.Buffer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: w}
}

// Encode writes the JSON encoding of v to the stream, followed by a newline.
func (e *Encoder) Encode(v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	e.buf.Reset()
	e.buf.Write(data)
	e.buf.WriteByte('\n')
	_, err = e.writer.Write(e.buf.Bytes())
	return err
}
