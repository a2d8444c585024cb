package entity

// Label datos impresos en la etiqueta de un lote.
type Label struct {
	ArticleCode   string
	Description   string
	SupplierBatch string
	GRNRef        string
	Identifier    string
}

// LabelFromLine construye la etiqueta a partir de una línea del ledger.
func LabelFromLine(l StockLine) Label {
	return Label{
		ArticleCode:   l.ArticleCode,
		Description:   l.Description,
		SupplierBatch: l.SupplierBatch,
		GRNRef:        l.GRNRef,
		Identifier:    l.Identifier,
	}
}

// LabelJob etiqueta ya renderizada en el lenguaje de la impresora.
// Bitmap es el QR del identificador rasterizado a 50x50 en hex (filas rellenas a byte).
type LabelJob struct {
	Label   Label
	Payload string
	Bitmap  string
}
