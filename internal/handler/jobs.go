package handler

import (
	"net/http"

	"cipriano/internal/apierror"
	"cipriano/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const maxReplay = 100

// ReintentarJobs godoc
// @Summary      Reencolar jobs fallidos
// @Description  Mueve hasta 100 jobs de la DLQ de etiquetas y email de vuelta a su cola.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int
// @Router       /v1/admin/jobs/reintentar [post]
func ReintentarJobs(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Cola de trabajos deshabilitada"))
			return
		}
		movidos := gin.H{}
		for _, q := range []string{worker.QueueEtiquetas, worker.QueueEmail} {
			n, err := worker.ReplayDLQ(c.Request.Context(), rdb, q, maxReplay)
			if err != nil {
				_ = c.Error(err)
				return
			}
			movidos[q] = n
		}
		c.JSON(http.StatusOK, movidos)
	}
}
