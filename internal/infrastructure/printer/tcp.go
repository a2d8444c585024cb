package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TCPSender envía el payload por socket RAW (puerto 9100 de la impresora).
type TCPSender struct {
	addr    string
	timeout time.Duration
	codec   *Codec
}

// NewTCPSender construye el sender. timeout cubre conexión y escritura; codec nil = utf-8.
func NewTCPSender(addr string, timeout time.Duration, codec *Codec) *TCPSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPSender{addr: addr, timeout: timeout, codec: codec}
}

// Send abre una conexión por trabajo y escribe el payload completo.
func (s *TCPSender) Send(ctx context.Context, job entity.LabelJob) error {
	payload, err := s.codec.Encode(job.Payload)
	if err != nil {
		return err
	}
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return errors.Join(ErrPrinterUnavailable, fmt.Errorf("printer: conectar %s: %w", s.addr, err))
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return fmt.Errorf("printer: deadline: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("printer: escribir a %s: %w", s.addr, err)
	}
	return nil
}
