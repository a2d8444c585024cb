package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidRequest      = errors.New("solicitud inválida")
	ErrStoreUnavailable    = errors.New("almacén de registros no disponible")
	ErrStoreCorrupt        = errors.New("contenido del almacén ilegible")
	ErrIdentifierExhausted = errors.New("espacio de identificadores agotado")
)
