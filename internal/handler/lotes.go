package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"cipriano/internal/dto"
	"cipriano/internal/infra"
	"cipriano/internal/service"

	"github.com/gin-gonic/gin"
)

type LotesHandler struct{ svc service.LoteService }

func NewLotesHandler(svc service.LoteService) *LotesHandler { return &LotesHandler{svc: svc} }

// Crear godoc
// @Summary      Generar lote de pizzas
// @Description  Crea N pizzas con IDs consecutivos DIA-PREFIJO-0001. Todo o nada.
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearLoteRequest true "Lote"
// @Success      201  {object} dto.LoteGeneradoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/lotes [post]
func (h *LotesHandler) Crear(c *gin.Context) {
	var req dto.CrearLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearLote(c.Request.Context(), service.CrearLoteInput{
		CodigoDia:     req.CodigoDia,
		PrefijoSabor:  req.PrefijoSabor,
		Sabor:         req.Sabor,
		Tamano:        req.Tamano,
		Cantidad:      req.Cantidad,
		Precio:        req.Precio,
		Actor:         actorFrom(c).Nombre,
		NumeroInicial: req.NumeroInicial,
		AdminPin:      req.AdminPin,
		Notas:         req.Notas,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Etiquetas godoc
// @Summary      PDF de etiquetas QR de un lote
// @Tags         lotes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        codigo path  string true  "Codigo de lote"
// @Param        desde  query string false "Primer ID"
// @Param        hasta  query string false "Ultimo ID"
// @Success      200
// @Router       /v1/lotes/{codigo}/etiquetas.pdf [get]
func (h *LotesHandler) Etiquetas(c *gin.Context) {
	var q dto.EtiquetasLoteQuery
	if !bindQuery(c, &q) {
		return
	}
	codigo := c.Param("codigo")
	pizzas, err := h.svc.PizzasParaEtiquetas(c.Request.Context(), codigo, q.Desde, q.Hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	writePDF(c, "etiquetas_"+strings.ToUpper(codigo), infra.EtiquetasDePizzas(pizzas))
}

// writePDF renders the sheet fully before sending, so a render error is still a clean 500.
func writePDF(c *gin.Context, nombre string, etiquetas []infra.Etiqueta) {
	var buf bytes.Buffer
	if err := infra.RenderEtiquetas(&buf, nombre, etiquetas); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, nombre))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
