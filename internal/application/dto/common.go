package dto

// PageRequest paginación opcional para listados. Limit 0 = sin paginar.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=1000"`
	Offset int `query:"offset" validate:"min=0"`
}

// Window devuelve los límites [lo, hi) de la página sobre n elementos.
func (p PageRequest) Window(n int) (lo, hi int) {
	if p.Limit <= 0 {
		return 0, n
	}
	lo = min(p.Offset, n)
	hi = min(lo+p.Limit, n)
	return lo, hi
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
