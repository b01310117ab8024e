package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localscan/intel-gateway/app/interfaces/http/routes/v1/scans"
	"github.com/localscan/intel-gateway/config"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

type V1Route struct {
	scanRoute *scans.ScanRoute
}

func NewV1Route(scanRoute *scans.ScanRoute) *V1Route {
	return &V1Route{
		scanRoute,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Route.scanRoute.RegisterRouter(v1Router)
}

// GetVersion
// @Summary Get API build version
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "version info"
// @Router /v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":         config.Version,
		"env_reloaded_at": environment_variables.ReloadedAt(),
	})
}
