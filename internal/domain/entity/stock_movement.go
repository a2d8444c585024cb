package entity

// Receipt es una entrada de mercancía (goods in) tal como llega de la estación.
// Quantity y LabelPrintCount se conservan como texto: su interpretación es parte
// de las reglas del ledger.
type Receipt struct {
	ArticleCode     string
	Description     string
	PurchaseOrder   string
	GRNRef          string
	SupplierBatch   string
	Location        string
	Quantity        string
	LabelPrintCount string
}

// Key devuelve la clave compuesta de la entrada.
func (r Receipt) Key() CompositeKey {
	return CompositeKey{
		ArticleCode:   r.ArticleCode,
		GRNRef:        r.GRNRef,
		PurchaseOrder: r.PurchaseOrder,
		Location:      r.Location,
		Description:   r.Description,
	}
}

// Dispatch es una salida de mercancía (goods out) sobre líneas seleccionadas.
// Adjustments asocia referencia -> cantidad a descontar; una referencia sin
// cantidad (o con texto vacío) elimina la línea completa.
type Dispatch struct {
	Targets     []string
	Adjustments map[string]string
}
