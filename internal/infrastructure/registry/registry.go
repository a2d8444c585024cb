// Package registry implementa el registro de identificadores (QR IDs) con log
// durable append-only: un identificador emitido nunca se vuelve a emitir, ni
// siquiera tras reiniciar el proceso.
package registry

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

const (
	// Alphabet caracteres válidos de un identificador.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length longitud fija de un identificador.
	Length = ledger.IdentifierLength
	// MaxAttempts colisiones consecutivas antes de declarar el espacio agotado.
	MaxAttempts = 1000
)

// rejectAbove descarta bytes >= 252 para que la selección sea uniforme (252 = 36*7).
const rejectAbove = 256 - 256%len(Alphabet)

var _ ledger.IdentifierIssuer = (*Registry)(nil)

// Registry emite identificadores únicos. Un único mutex serializa la generación del
// candidato y su escritura en el log: una emisión termina (incluido el fsync) antes
// de que empiece la siguiente.
type Registry struct {
	mu     sync.Mutex
	issued map[string]struct{}
	log    *os.File
	rand   io.Reader
}

// Option configura el registro.
type Option func(*Registry)

// WithRandom sustituye la fuente aleatoria (por defecto crypto/rand).
func WithRandom(r io.Reader) Option {
	return func(reg *Registry) { reg.rand = r }
}

// Open reproduce el log completo en memoria y lo deja abierto para append.
// Un log inexistente se crea vacío.
func Open(path string, opts ...Option) (*Registry, error) {
	reg := &Registry{
		issued: make(map[string]struct{}),
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(reg)
	}

	torn, err := reg.replay(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("registry: abrir log %s: %w", path, err)
	}
	if torn {
		if _, err := f.WriteString("\n"); err != nil {
			f.Close()
			return nil, fmt.Errorf("registry: reparar log %s: %w", path, err)
		}
	}
	reg.log = f
	return reg, nil
}

// replay carga el log y devuelve true si la última línea quedó sin salto de línea
// (escritura interrumpida), para que el siguiente append no la concatene.
func (r *Registry) replay(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("registry: leer log %s: %w", path, err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			r.issued[id] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("registry: leer log %s: %w", path, err)
	}
	return len(data) > 0 && data[len(data)-1] != '\n', nil
}

// Issue genera un identificador no emitido antes, lo persiste en el log y lo devuelve.
// Si la escritura falla el identificador no se entrega.
func (r *Registry) Issue(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		candidate, err := r.candidate()
		if err != nil {
			return "", fmt.Errorf("registry: generar candidato: %w", err)
		}
		if _, taken := r.issued[candidate]; taken {
			continue
		}
		if err := r.append(candidate); err != nil {
			return "", err
		}
		r.issued[candidate] = struct{}{}
		return candidate, nil
	}
	return "", domain.ErrIdentifierExhausted
}

func (r *Registry) candidate() (string, error) {
	var sb strings.Builder
	sb.Grow(Length)
	var b [1]byte
	for sb.Len() < Length {
		if _, err := io.ReadFull(r.rand, b[:]); err != nil {
			return "", err
		}
		if int(b[0]) >= rejectAbove {
			continue
		}
		sb.WriteByte(Alphabet[int(b[0])%len(Alphabet)])
	}
	return sb.String(), nil
}

func (r *Registry) append(id string) error {
	if r.log == nil {
		return fmt.Errorf("registry: log cerrado")
	}
	if _, err := r.log.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("registry: escribir log: %w", err)
	}
	if err := r.log.Sync(); err != nil {
		return fmt.Errorf("registry: sync log: %w", err)
	}
	return nil
}

// Contains indica si el identificador ya fue emitido (en esta ejecución o en el log).
func (r *Registry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.issued[id]
	return ok
}

// Len número de identificadores conocidos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}

// Close cierra el log.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.log == nil {
		return nil
	}
	err := r.log.Close()
	r.log = nil
	return err
}
