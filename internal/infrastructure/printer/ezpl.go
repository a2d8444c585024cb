// Package printer renderiza etiquetas EZPL (Godex) y las envía a la impresora.
package printer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BitmapSize lado en píxeles del QR rasterizado.
const BitmapSize = 50

// Cabecera fija del trabajo: 50 mm de alto con gap 3, 75 mm de ancho, velocidad 3, densidad 10.
const ezplHeader = "^Q50,3\n" +
	"^W75\n" +
	"^H10\n" +
	"^P1\n" +
	"^S3\n" +
	"^AD\n" +
	"^C1\n" +
	"^R0\n" +
	"~Q+0\n" +
	"^O0\n" +
	"^L\n"

// EZPLRenderer genera el trabajo de impresión de una etiqueta.
type EZPLRenderer struct{}

// NewEZPLRenderer construye el renderer.
func NewEZPLRenderer() *EZPLRenderer { return &EZPLRenderer{} }

// Render arma el payload EZPL y el bitmap del QR.
func (r *EZPLRenderer) Render(l entity.Label) (entity.LabelJob, error) {
	if l.Identifier == "" {
		return entity.LabelJob{}, fmt.Errorf("printer: etiqueta sin identificador")
	}
	bitmap, err := QRBitmapHex(l.Identifier)
	if err != nil {
		return entity.LabelJob{}, err
	}
	return entity.LabelJob{Label: l, Payload: EZPL(l), Bitmap: bitmap}, nil
}

// EZPL devuelve los comandos de la etiqueta: cuatro líneas de texto y el bloque QR nativo.
func EZPL(l entity.Label) string {
	var b strings.Builder
	b.WriteString(ezplHeader)
	fmt.Fprintf(&b, "AA,10,20,2,2,0,0,Article Code: %s\r\n", l.ArticleCode)
	fmt.Fprintf(&b, "AA,10,70,2,2,0,0,Description: %s\r\n", l.Description)
	fmt.Fprintf(&b, "AA,10,120,2,2,0,0,Supplier Batch: %s\r\n", l.SupplierBatch)
	fmt.Fprintf(&b, "AA,10,170,2,2,0,0,GRN NO: %s\r\n", l.GRNRef)
	fmt.Fprintf(&b, "W360,160,2,2,M,0,11,%d,0\r\n", len(l.Identifier))
	b.WriteString(l.Identifier + "\r\n")
	b.WriteString("E\r\n")
	return b.String()
}

// QRBitmapHex rasteriza el QR del identificador a 50x50 monocromo. Cada fila se
// empaqueta MSB primero y se rellena hasta el byte (7 bytes por fila); 1 = punto negro.
func QRBitmapHex(identifier string) (string, error) {
	code, err := qr.Encode(identifier, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("printer: codificar QR: %w", err)
	}
	scaled, err := barcode.Scale(code, BitmapSize, BitmapSize)
	if err != nil {
		return "", fmt.Errorf("printer: escalar QR: %w", err)
	}

	var b strings.Builder
	b.Grow(BitmapSize * bytesPerRow * 2)
	for y := 0; y < BitmapSize; y++ {
		var cur byte
		bit := 7
		for x := 0; x < BitmapSize; x++ {
			if isDark(scaled.At(x, y)) {
				cur |= 1 << bit
			}
			bit--
			if bit < 0 {
				fmt.Fprintf(&b, "%02X", cur)
				cur, bit = 0, 7
			}
		}
		if bit != 7 {
			fmt.Fprintf(&b, "%02X", cur)
		}
	}
	return b.String(), nil
}

const bytesPerRow = (BitmapSize + 7) / 8

func isDark(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 128
}
