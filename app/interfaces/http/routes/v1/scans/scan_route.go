package scans

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/localscan/intel-gateway/app/domain/intel"
	"github.com/localscan/intel-gateway/app/interfaces/http/responses"
	"github.com/localscan/intel-gateway/app/utils/httpclients/esi"
)

const (
	// MaxScanNames matches the per-call limit of ESI /universe/ids/.
	MaxScanNames = esi.MaxIDsPerCall
	MaxWait      = 30 * time.Second
)

type ScanRoute struct {
	scanService *intel.ScanService
	resolvers   *intel.Resolvers
}

func NewScanRoute(scanService *intel.ScanService, resolvers *intel.Resolvers) *ScanRoute {
	return &ScanRoute{
		scanService: scanService,
		resolvers:   resolvers,
	}
}

func (route *ScanRoute) RegisterRouter(router gin.IRouter) {
	scans := router.Group("/scans")
	scans.POST("", route.CreateScan)
	scans.GET("/:scan_id", route.GetScan)
	scans.DELETE("/:scan_id", route.DeleteScan)
	router.GET("/resolvers", route.GetResolvers)
}

// CreateScanRequest accepts either explicit names or a raw pasted roster.
type CreateScanRequest struct {
	Names  []string `json:"names"`
	Roster string   `json:"roster"`
	WaitMs int      `json:"wait_ms"`
}

type ShipResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RowResponse struct {
	Name           string           `json:"name"`
	ID             int64            `json:"id"`
	CorpID         int64            `json:"corpId,omitempty"`
	CorpName       string           `json:"corpName,omitempty"`
	AllyID         int64            `json:"allyId,omitempty"`
	AllyName       string           `json:"allyName,omitempty"`
	Ships          []ShipResponse   `json:"ships,omitempty"`
	DangerRatio    *int             `json:"dangerRatio,omitempty"`
	GangRatio      *int             `json:"gangRatio,omitempty"`
	ShipsDestroyed *int             `json:"shipsDestroyed,omitempty"`
	ShipsLost      *int             `json:"shipsLost,omitempty"`
	KillDeathRatio *decimal.Decimal `json:"killDeathRatio,omitempty"`
}

type ScanResponse struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Finished   bool              `json:"finished"`
	Rows       []RowResponse     `json:"rows"`
	Unresolved []string          `json:"unresolved"`
	Failures   map[string]string `json:"failures,omitempty"`
}

// CreateScan
// @Summary Start a scan
// @Description Resolves a list of character names. With wait_ms the response is held until the scan finishes or the wait expires.
// @Tags Scans API
// @Accept json
// @Produce json
// @Success 202 {object} responses.GeneralResponse[ScanResponse]
// @Router /v1/scans [post]
func (route *ScanRoute) CreateScan(reqCtx *gin.Context) {
	var request CreateScanRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.NewErrorResponse("2b1c7f4e-5d0a-4c8e-9a61-0f3e2d7b8c14", err))
		return
	}
	names := append(request.Names, intel.ParseNames(request.Roster)...)
	names = intel.NormalizeNames(names)
	if len(names) > MaxScanNames {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.NewErrorResponse("8e4d2a90-1b6f-4f3a-bc27-6d5e9f0a3b71",
			errors.New("too many names, at most "+strconv.Itoa(MaxScanNames)+" per scan")))
		return
	}

	scan, err := route.scanService.Start(names)
	if err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.NewErrorResponse("c5a0e3b7-72d9-4e18-a4f6-3b9d1c8e6f02", err))
		return
	}

	if wait := clampWait(request.WaitMs); wait > 0 {
		ctx, cancel := context.WithTimeout(reqCtx.Request.Context(), wait)
		defer cancel()
		scan, err = route.scanService.Wait(ctx, scan.ID)
		if err != nil {
			reqCtx.AbortWithStatusJSON(http.StatusNotFound, responses.NewErrorResponse("f1d6b8a3-0c4e-4b79-8e25-a7c3d9e0b146", err))
			return
		}
	}

	reqCtx.JSON(http.StatusAccepted, responses.GeneralResponse[ScanResponse]{
		Status: responses.ResponseCodeOk,
		Result: newScanResponse(scan),
	})
}

// GetScan
// @Summary Get scan rows
// @Description Returns the rows resolved so far, in input order. Only characters with a known id are listed.
// @Tags Scans API
// @Produce json
// @Param scan_id path string true "Scan ID"
// @Param wait_ms query int false "Hold the response until the scan finishes or the wait expires"
// @Success 200 {object} responses.GeneralResponse[ScanResponse]
// @Router /v1/scans/{scan_id} [get]
func (route *ScanRoute) GetScan(reqCtx *gin.Context) {
	scanID := reqCtx.Param("scan_id")
	waitMs, _ := strconv.Atoi(reqCtx.Query("wait_ms"))

	ctx, cancel := context.WithTimeout(reqCtx.Request.Context(), clampWait(waitMs))
	defer cancel()
	scan, err := route.scanService.Wait(ctx, scanID)
	if err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusNotFound, responses.NewErrorResponse("4a7e9c21-6b3d-4f85-90e2-c8b1d5f3a067", err))
		return
	}
	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[ScanResponse]{
		Status: responses.ResponseCodeOk,
		Result: newScanResponse(scan),
	})
}

// DeleteScan
// @Summary Cancel a scan
// @Tags Scans API
// @Param scan_id path string true "Scan ID"
// @Success 204
// @Router /v1/scans/{scan_id} [delete]
func (route *ScanRoute) DeleteScan(reqCtx *gin.Context) {
	if err := route.scanService.Cancel(reqCtx.Param("scan_id")); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusNotFound, responses.NewErrorResponse("9d3f5b08-e2a1-4c67-b8d4-1f0e6a2c7b93", err))
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

// GetResolvers
// @Summary Resolver queue depths
// @Tags Scans API
// @Produce json
// @Success 200 {object} responses.GeneralResponse[map[string]int]
// @Router /v1/resolvers [get]
func (route *ScanRoute) GetResolvers(reqCtx *gin.Context) {
	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[map[string]int]{
		Status: responses.ResponseCodeOk,
		Result: route.resolvers.QueueDepths(),
	})
}

func clampWait(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	wait := time.Duration(ms) * time.Millisecond
	if wait > MaxWait {
		return MaxWait
	}
	return wait
}

func newScanResponse(scan *intel.Scan) ScanResponse {
	rows := scan.Rows()
	out := ScanResponse{
		ID:         scan.ID,
		CreatedAt:  scan.CreatedAt,
		Finished:   scan.Finished(),
		Rows:       make([]RowResponse, 0, len(rows)),
		Unresolved: scan.Unresolved(),
		Failures:   scan.Failures(),
	}
	if out.Unresolved == nil {
		out.Unresolved = []string{}
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, newRowResponse(row))
	}
	return out
}

func newRowResponse(row intel.PlayerData) RowResponse {
	resp := RowResponse{
		Name:     row.Name,
		ID:       row.ID,
		CorpID:   row.CorpID,
		CorpName: row.CorpName,
		AllyID:   row.AllyID,
		AllyName: row.AllyName,
	}
	if row.Stats == nil {
		return resp
	}
	stats := *row.Stats
	kd := stats.KillDeathRatio()
	resp.DangerRatio = &stats.DangerRatio
	resp.GangRatio = &stats.GangRatio
	resp.ShipsDestroyed = &stats.ShipsDestroyed
	resp.ShipsLost = &stats.ShipsLost
	resp.KillDeathRatio = &kd
	for _, ship := range stats.Ships {
		resp.Ships = append(resp.Ships, ShipResponse{ID: ship.ID, Name: ship.Name})
	}
	return resp
}
