package dto

import "github.com/shopspring/decimal"

// DashboardFilter is bound from the query string of GET /v1/dashboard.
// Modo and Estado default to SALES and VENDIDA; "ALL" disables them.
type DashboardFilter struct {
	Modo     string `form:"modo,default=SALES"`
	Estado   string `form:"estado,default=VENDIDA"`
	PizzaID  string `form:"pizza_id"`
	Sabor    string `form:"sabor"`
	Mesero   string `form:"mesero"`
	Desde    string `form:"desde"` // YYYY-MM-DD, on sold date
	Hasta    string `form:"hasta"`
	Page     int    `form:"page,default=1"       validate:"min=1"`
	PageSize int    `form:"page_size,default=10"`
}

type DashboardResponse struct {
	Conteos     map[string]int64 `json:"conteos"`
	TotalPizzas int64            `json:"total_pizzas"`
	Recaudacion decimal.Decimal  `json:"recaudacion"`
	Eventos     []EventoResponse `json:"eventos"`
	Total       int64            `json:"total"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
}

// VentasExportFilter is bound from GET /v1/dashboard/ventas.csv.
type VentasExportFilter struct {
	Sabor  string `form:"sabor"`
	Mesero string `form:"mesero"`
	Desde  string `form:"desde"`
	Hasta  string `form:"hasta"`
}

type VentaExportRow struct {
	PizzaID string
	Sabor   string
	Tamano  string
	Precio  decimal.Decimal
	SoldAt  string
	SoldBy  string
	Mesero  string
}

type VentasExport struct {
	Rows  []VentaExportRow
	Total decimal.Decimal
}
