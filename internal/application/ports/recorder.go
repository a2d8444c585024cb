package ports

import "time"

// Recorder puerto de salida para métricas del ledger. El adaptador Prometheus lo implementa;
// los casos de uso nunca dependen de la implementación concreta.
type Recorder interface {
	// ReceiptApplied cuenta una recepción aplicada (consolidada sobre una línea o nueva).
	ReceiptApplied(merged bool)
	// DispatchTarget cuenta el resultado de un objetivo de despacho (removed, adjusted, skipped).
	DispatchTarget(status string)
	IdentifierIssued()
	LabelPrinted(ok bool)
	// StoreError cuenta fallos del system of record por tipo (unavailable, corrupt, other).
	StoreError(kind string)
	ObserveMutation(operation string, d time.Duration)
}

// NopRecorder descarta todo.
type NopRecorder struct{}

func (NopRecorder) ReceiptApplied(bool) {}
func (NopRecorder) DispatchTarget(string) {}
func (NopRecorder) IdentifierIssued() {}
func (NopRecorder) LabelPrinted(bool) {}
func (NopRecorder) StoreError(string) {}
func (NopRecorder) ObserveMutation(string, time.Duration) {}
