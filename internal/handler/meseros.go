package handler

import (
	"net/http"

	"cipriano/internal/dto"
	"cipriano/internal/infra"
	"cipriano/internal/service"

	"github.com/gin-gonic/gin"
)

type MeserosHandler struct{ svc service.MeseroService }

func NewMeserosHandler(svc service.MeseroService) *MeserosHandler { return &MeserosHandler{svc: svc} }

// Listar godoc
// @Summary      Meseros activos
// @Tags         meseros
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.MeseroResponse
// @Router       /v1/meseros [get]
func (h *MeserosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Alta de mesero
// @Description  Asigna el siguiente codigo MES-0001.
// @Tags         meseros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMeseroRequest true "Mesero"
// @Success      201  {object} dto.MeseroResponse
// @Router       /v1/meseros [post]
func (h *MeserosHandler) Crear(c *gin.Context) {
	var req dto.CrearMeseroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearMesero(c.Request.Context(), req.Nombre, actorFrom(c).Nombre)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Etiquetas prints QR badges for the selected waiters (?codigo=MES-0001&codigo=...).
func (h *MeserosHandler) Etiquetas(c *gin.Context) {
	var q dto.EtiquetasMeserosQuery
	if !bindQuery(c, &q) {
		return
	}
	meseros, err := h.svc.ParaEtiquetas(c.Request.Context(), q.Codigos)
	if err != nil {
		respondError(c, err)
		return
	}
	writePDF(c, "etiquetas_meseros", infra.EtiquetasDeMeseros(meseros))
}
