package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SpoolSender deja cada trabajo como archivo en un directorio vigilado por el servicio de impresión.
// Junto al .ezpl se escribe el bitmap del QR en <nombre>.qr.hex.
type SpoolSender struct {
	dir   string
	codec *Codec
}

// NewSpoolSender crea el directorio si no existe. codec nil = utf-8.
func NewSpoolSender(dir string, codec *Codec) (*SpoolSender, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("printer: crear spool %s: %w", dir, err)
	}
	return &SpoolSender{dir: dir, codec: codec}, nil
}

// Send escribe el trabajo. El payload se escribe a un temporal y se renombra para que
// el consumidor nunca vea un archivo a medias.
func (s *SpoolSender) Send(ctx context.Context, job entity.LabelJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := s.codec.Encode(job.Payload)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%s", job.Label.Identifier, uuid.New().String()[:8])

	if job.Bitmap != "" {
		if err := os.WriteFile(filepath.Join(s.dir, name+".qr.hex"), []byte(job.Bitmap), 0o644); err != nil {
			return fmt.Errorf("printer: escribir bitmap: %w", err)
		}
	}
	tmp := filepath.Join(s.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("printer: escribir spool: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name+".ezpl")); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("printer: publicar spool: %w", err)
	}
	return nil
}
