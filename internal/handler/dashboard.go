package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"cipriano/internal/dto"
	"cipriano/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Resumen godoc
// @Summary      Tablero de control
// @Description  Conteo por estado, recaudacion y eventos paginados. modo/estado aceptan ALL.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        modo      query string false "KITCHEN | SALES | ADMIN | UNDO | ALL (default SALES)"
// @Param        estado    query string false "Estado destino o ALL (default VENDIDA)"
// @Param        pizza_id  query string false "Busqueda parcial por ID"
// @Param        sabor     query string false "Sabor"
// @Param        mesero    query string false "Nombre de mesero (parcial)"
// @Param        desde     query string false "Fecha de venta desde YYYY-MM-DD"
// @Param        hasta     query string false "Fecha de venta hasta YYYY-MM-DD"
// @Param        page      query int    false "Pagina"
// @Param        page_size query int    false "Tamano de pagina (5-30)"
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Resumen(c *gin.Context) {
	var f dto.DashboardFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarVentas streams the sold pizzas as CSV with a closing total row.
func (h *DashboardHandler) ExportarVentas(c *gin.Context) {
	var f dto.VentasExportFilter
	if !bindQuery(c, &f) {
		return
	}
	export, err := h.svc.ExportarVentas(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "sabor", "tamano", "precio", "vendida", "vendedor", "mesero"})
	for _, r := range export.Rows {
		_ = w.Write([]string{r.PizzaID, r.Sabor, r.Tamano, r.Precio.StringFixed(2), r.SoldAt, r.SoldBy, r.Mesero})
	}
	_ = w.Write([]string{"TOTAL", "", "", export.Total.StringFixed(2), "", "", fmt.Sprintf("%d pizzas", len(export.Rows))})
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
		return
	}

	nombre := fmt.Sprintf("ventas_%s.csv", time.Now().Format("20060102_1504"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nombre))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
