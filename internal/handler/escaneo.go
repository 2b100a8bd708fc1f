package handler

import (
	"net/http"
	"strings"

	"cipriano/internal/apierror"
	"cipriano/internal/dto"
	"cipriano/internal/middleware"
	"cipriano/internal/model"
	"cipriano/internal/service"

	"github.com/gin-gonic/gin"
)

type EscaneoHandler struct{ svc service.ScanService }

func NewEscaneoHandler(svc service.ScanService) *EscaneoHandler { return &EscaneoHandler{svc: svc} }

// Escanear godoc
// @Summary      Registrar escaneo
// @Description  KITCHEN marca LISTA; SALES marca VENDIDA (override con PIN si no esta LISTA).
// @Tags         escaneo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.EscaneoRequest true "Escaneo"
// @Success      200  {object} dto.EscaneoResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/scan [post]
func (h *EscaneoHandler) Escanear(c *gin.Context) {
	var req dto.EscaneoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	// Stations scan only in their own mode; ADMIN may use either.
	claims := middleware.GetClaims(c)
	modo := strings.ToUpper(strings.TrimSpace(req.Modo))
	if claims != nil && claims.Rol != model.OperadorAdmin && claims.Rol != modo {
		c.JSON(http.StatusForbidden, apierror.WithCode(apierror.CodeUnauthorized, "Modo no permitido para este operador"))
		return
	}

	resp, err := h.svc.ProcesarEscaneo(c.Request.Context(), service.ScanInput{
		PizzaID:      req.PizzaID,
		Modo:         modo,
		Actor:        actorFrom(c),
		SaborSiVacio: req.Sabor,
		OverridePin:  req.OverridePin,
		MeseroCodigo: req.MeseroCodigo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary      Baja administrativa
// @Description  Pasa una pizza en PREPARACION o LISTA a CANCELADA o MERMA.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AdminEstadoRequest true "Pizza y estado"
// @Success      200  {object} dto.EscaneoResponse
// @Failure      403  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/admin/estado [post]
func (h *EscaneoHandler) CambiarEstado(c *gin.Context) {
	var req dto.AdminEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstadoAdmin(c.Request.Context(), req.PizzaID, req.Estado, actorFrom(c), req.Pin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deshacer godoc
// @Summary      Deshacer ultimo evento
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.DeshacerRequest true "PIN admin"
// @Success      200  {object} dto.EscaneoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/admin/deshacer [post]
func (h *EscaneoHandler) Deshacer(c *gin.Context) {
	var req dto.DeshacerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DeshacerUltimo(c.Request.Context(), actorFrom(c), req.Pin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerificarPin lets a station unlock its admin panel before submitting actions.
func (h *EscaneoHandler) VerificarPin(c *gin.Context) {
	var req dto.VerificarPinRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.VerificarPin(req.Pin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Consultar godoc
// @Summary      Estado actual de una pizza
// @Tags         escaneo
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de pizza"
// @Success      200 {object} dto.PizzaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pizzas/{id} [get]
func (h *EscaneoHandler) Consultar(c *gin.Context) {
	resp, err := h.svc.ConsultarPizza(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
