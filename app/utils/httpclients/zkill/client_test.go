package zkill

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/localscan/intel-gateway/app/domain/common"
	"github.com/localscan/intel-gateway/app/utils/httpclients"
)

const statsBody = `{
  "dangerRatio": 87,
  "gangRatio": 42,
  "shipsDestroyed": 120,
  "shipsLost": 30,
  "topLists": [
    {"type": "character", "values": [{"id": 1, "name": "nobody"}]},
    {"type": "shipType", "values": [{"id": 587, "name": "Rifter", "kills": 9}, {"id": 11198, "name": "Stiletto"}]}
  ]
}`

func TestCharacterStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/characterID/90000001/", r.URL.Path)
		assert.Equal(t, "intel.example", r.Header.Get("Origin"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(statsBody))
	}))
	defer srv.Close()

	client := NewClient(httpclients.NewClient("zkill-test", srv.URL, 2*time.Second, ""), "intel.example")
	stats, err := client.CharacterStats(context.Background(), 90000001)
	require.NoError(t, err)
	assert.Equal(t, 87, stats.DangerRatio)
	assert.Equal(t, 42, stats.GangRatio)
	assert.Equal(t, 120, stats.ShipsDestroyed)
	assert.Equal(t, 30, stats.ShipsLost)
	assert.Equal(t, []Ship{{ID: 587, Name: "Rifter"}, {ID: 11198, Name: "Stiletto"}}, stats.Ships)
}

func TestCharacterStatsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(httpclients.NewClient("zkill-test", srv.URL, 2*time.Second, ""), "intel.example")
	_, err := client.CharacterStats(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrUpstreamRejection)
}

func TestProjectWithoutShipList(t *testing.T) {
	stats := project(&statsResponse{DangerRatio: 5})
	assert.Equal(t, 5, stats.DangerRatio)
	assert.Nil(t, stats.Ships)
}
