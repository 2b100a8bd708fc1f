package model

// Estados de una pizza. Los valores se persisten tal cual.
const (
	EstadoPreparacion = "PREPARACION"
	EstadoLista       = "LISTA"
	EstadoVendida     = "VENDIDA"
	EstadoCancelada   = "CANCELADA"
	EstadoMerma       = "MERMA"
)

// Modos bajo los que se registra un evento de escaneo.
const (
	ModoCocina = "KITCHEN"
	ModoVentas = "SALES"
	ModoAdmin  = "ADMIN"
	ModoUndo   = "UNDO"
)

// Roles del actor tal como quedan en el evento (etiqueta de auditoria).
const (
	RolCocina = "COCINA"
	RolVentas = "VENTAS"
	RolAdmin  = "ADMIN"
)

// Estados lists every pizza status in lifecycle order.
var Estados = []string{EstadoPreparacion, EstadoLista, EstadoVendida, EstadoCancelada, EstadoMerma}

// EstadoValido reports whether s is a known pizza status.
func EstadoValido(s string) bool {
	for _, e := range Estados {
		if e == s {
			return true
		}
	}
	return false
}
