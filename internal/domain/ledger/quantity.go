// Package ledger contiene las reglas del ledger de stock: consolidación de entradas
// por clave compuesta y ajuste/eliminación de líneas en despachos.
//
// Las funciones operan sobre un *entity.Table ya cargado; la carga, la exclusión
// mutua y el guardado son responsabilidad del llamador.
package ledger

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultPrintCount copias a imprimir cuando el valor recibido no es numérico o está vacío.
	DefaultPrintCount = 1
	// MaxPrintCount tope de copias por entrada o reimpresión.
	MaxPrintCount = 100
)

// ParseQuantity interpreta una cantidad no negativa. Acepta separador de miles (1,250).
func ParseQuantity(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, err = decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
		if err != nil {
			return decimal.Zero, false
		}
	}
	if d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePrintCount resuelve el número de etiquetas: vacío o no numérico -> 1, negativo -> 0,
// por encima de MaxPrintCount -> MaxPrintCount. valid es false si el valor se tuvo que corregir.
func ParsePrintCount(raw string) (count int, valid bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultPrintCount, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Fuera de rango de int.
		if strings.HasPrefix(s, "-") && isDigits(s[1:]) {
			return 0, true
		}
		if isDigits(s) {
			return MaxPrintCount, false
		}
		return DefaultPrintCount, false
	}
	if n < 0 {
		return 0, true
	}
	if n > MaxPrintCount {
		return MaxPrintCount, false
	}
	return n, true
}

func isDigits(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
