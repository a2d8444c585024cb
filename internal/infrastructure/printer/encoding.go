package printer

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Codec convierte el payload EZPL al juego de caracteres de la impresora.
// Los caracteres que el juego no representa se sustituyen por el de reemplazo (0x1A).
type Codec struct {
	name string
	enc  encoding.Encoding // nil = UTF-8 sin conversión
}

// Codecs soportados (PRINTER_ENCODING).
var codecs = map[string]encoding.Encoding{
	"utf-8":      nil,
	"cp1252":     charmap.Windows1252,
	"cp850":      charmap.CodePage850,
	"iso-8859-1": charmap.ISO8859_1,
}

// NewCodec devuelve el codec por nombre. Vacío equivale a utf-8.
func NewCodec(name string) (*Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf8" {
		name = "utf-8"
	}
	enc, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("printer: encoding desconocido %q", name)
	}
	return &Codec{name: name, enc: enc}, nil
}

// Name nombre normalizado del codec.
func (c *Codec) Name() string {
	if c == nil {
		return "utf-8"
	}
	return c.name
}

// Encode devuelve los bytes a enviar al dispositivo.
func (c *Codec) Encode(payload string) ([]byte, error) {
	if c == nil || c.enc == nil {
		return []byte(payload), nil
	}
	b, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("printer: codificar %s: %w", c.name, err)
	}
	return b, nil
}
