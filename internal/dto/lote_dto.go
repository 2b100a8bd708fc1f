package dto

import "github.com/shopspring/decimal"

// CrearLoteRequest generates Cantidad pizzas under DIA-PREFIJO.
type CrearLoteRequest struct {
	CodigoDia    string          `json:"codigo_dia"    validate:"omitempty,max=8,alphanum"`
	PrefijoSabor string          `json:"prefijo_sabor" validate:"required,max=12,alphanum"`
	Sabor        string          `json:"sabor"         validate:"omitempty,max=40"`
	Tamano       string          `json:"tamano"        validate:"omitempty,max=20"`
	Cantidad     int             `json:"cantidad"      validate:"required,min=1,max=500"`
	Precio       decimal.Decimal `json:"precio"        validate:"min=0"`
	// NumeroInicial is nil for automatic numbering; setting it requires AdminPin.
	NumeroInicial *int   `json:"numero_inicial" validate:"omitempty,min=1,max=9999"`
	AdminPin      string `json:"admin_pin"`
	Notas         string `json:"notas"          validate:"omitempty,max=200"`
}

type LoteGeneradoResponse struct {
	Lote          string `json:"lote"`
	Cantidad      int    `json:"cantidad"`
	PrimerID      string `json:"primer_id"`
	UltimoID      string `json:"ultimo_id"`
	EtiquetasURL  string `json:"etiquetas_url"`
	Sabor         string `json:"sabor"`
	Precio        string `json:"precio"`
	NumeroInicial int    `json:"numero_inicial"`
}

// EtiquetasLoteQuery narrows the label sheet to an id range.
type EtiquetasLoteQuery struct {
	Desde string `form:"desde"`
	Hasta string `form:"hasta"`
}
