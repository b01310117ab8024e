package scans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/localscan/intel-gateway/app/domain/intel"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/app/interfaces/http/responses"
	"github.com/localscan/intel-gateway/app/utils/httpclients/esi"
	"github.com/localscan/intel-gateway/app/utils/httpclients/zkill"
)

type stubUpstream struct{}

func (stubUpstream) ResolveIDs(_ context.Context, names []string) ([]esi.Entity, error) {
	var out []esi.Entity
	for _, n := range names {
		if n == "Alice" {
			out = append(out, esi.Entity{ID: 90000001, Name: n})
		}
	}
	return out, nil
}

func (stubUpstream) ResolveNames(_ context.Context, ids []int64) ([]esi.Entity, error) {
	var out []esi.Entity
	for _, id := range ids {
		if id == 98000001 {
			out = append(out, esi.Entity{ID: id, Name: "Alice Corp", Category: "corporation"})
		}
	}
	return out, nil
}

func (stubUpstream) Affiliation(_ context.Context, id int64) (*esi.Affiliation, error) {
	if id != 90000001 {
		return nil, errors.New("unknown character")
	}
	return &esi.Affiliation{CharacterID: id, CorporationID: 98000001}, nil
}

func (stubUpstream) CharacterStats(_ context.Context, id int64) (*zkill.Stats, error) {
	return &zkill.Stats{DangerRatio: 70, GangRatio: 30, ShipsDestroyed: 9, ShipsLost: 2}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *intel.ScanService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend, err := cache.NewMemoryBackend(100)
	require.NoError(t, err)
	kv := cache.NewKeyValueCache(context.Background(), backend)
	upstream := stubUpstream{}
	resolvers, err := intel.NewResolvers(upstream, upstream, kv, intel.Settings{
		BatchDelay:      5 * time.Millisecond,
		StatsInterval:   5 * time.Millisecond,
		UpstreamTimeout: time.Second,
	})
	require.NoError(t, err)
	resolvers.Start(context.Background())

	orchestrator := intel.NewOrchestrator(resolvers, intel.NewAffiliationService(upstream), kv)
	scanService := intel.NewScanService(orchestrator, resolvers)
	t.Cleanup(scanService.Shutdown)

	engine := gin.New()
	NewScanRoute(scanService, resolvers).RegisterRouter(engine.Group("/v1"))
	return engine, scanService
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeScan(t *testing.T, rec *httptest.ResponseRecorder) ScanResponse {
	t.Helper()
	var resp responses.GeneralResponse[ScanResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, responses.ResponseCodeOk, resp.Status)
	return resp.Result
}

func TestCreateScanWaitsForRows(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/v1/scans", CreateScanRequest{
		Roster: "Alice\n\nAlice\n",
		WaitMs: 2000,
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	scan := decodeScan(t, rec)
	assert.True(t, scan.Finished)
	require.Len(t, scan.Rows, 1)
	row := scan.Rows[0]
	assert.Equal(t, "Alice", row.Name)
	assert.Equal(t, int64(90000001), row.ID)
	assert.Equal(t, "Alice Corp", row.CorpName)
	require.NotNil(t, row.KillDeathRatio)
	assert.Equal(t, "4.5", row.KillDeathRatio.String())
	assert.Empty(t, scan.Unresolved)
}

func TestScanWithUnknownNameStaysOpen(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/v1/scans", CreateScanRequest{
		Names:  []string{"Alice", "Nobody"},
		WaitMs: 300,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	scan := decodeScan(t, rec)
	assert.False(t, scan.Finished)
	assert.Equal(t, []string{"Nobody"}, scan.Unresolved)

	rec = doJSON(t, engine, http.MethodGet, "/v1/scans/"+scan.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scan.ID, decodeScan(t, rec).ID)

	rec = doJSON(t, engine, http.MethodDelete, "/v1/scans/"+scan.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/v1/scans/"+scan.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateScanRejectsEmptyAndOversized(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/v1/scans", CreateScanRequest{Roster: "  \n"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 500, MaxScanNames)
	names := make([]string, MaxScanNames+1)
	for i := range names {
		names[i] = "Pilot " + strconv.Itoa(i)
	}
	rec = doJSON(t, engine, http.MethodPost, "/v1/scans", CreateScanRequest{Names: names})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp.Code)
	assert.Contains(t, errResp.Error, "too many names")
}

func TestGetResolversReportsQueueDepths(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/v1/resolvers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[map[string]int]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Result, "id-resolver")
	assert.Contains(t, resp.Result, "name-resolver")
	assert.Contains(t, resp.Result, "stats-resolver")
}

func TestClampWait(t *testing.T) {
	assert.Equal(t, time.Duration(0), clampWait(-5))
	assert.Equal(t, 250*time.Millisecond, clampWait(250))
	assert.Equal(t, MaxWait, clampWait(int(time.Hour/time.Millisecond)))
}
