package zkill

import (
	"context"
	"fmt"
	"strconv"

	"github.com/localscan/intel-gateway/app/domain/common"
	"resty.dev/v3"
)

const (
	statsPath    = "/stats/characterID/{id}/"
	shipTypeList = "shipType"
)

type Ship struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Stats is the projection of a zKillboard character statistics document.
type Stats struct {
	DangerRatio    int    `json:"dangerRatio"`
	GangRatio      int    `json:"gangRatio"`
	ShipsDestroyed int    `json:"shipsDestroyed"`
	ShipsLost      int    `json:"shipsLost"`
	Ships          []Ship `json:"ships,omitempty"`
}

type topListValue struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type topList struct {
	Type   string         `json:"type"`
	Values []topListValue `json:"values"`
}

type statsResponse struct {
	DangerRatio    int       `json:"dangerRatio"`
	GangRatio      int       `json:"gangRatio"`
	ShipsDestroyed int       `json:"shipsDestroyed"`
	ShipsLost      int       `json:"shipsLost"`
	TopLists       []topList `json:"topLists"`
}

type Client struct {
	rest   *resty.Client
	origin string
}

// NewClient builds a stats client; origin is sent as the Origin header on
// every request, as zKillboard asks of browser-like consumers.
func NewClient(rest *resty.Client, origin string) *Client {
	return &Client{rest: rest, origin: origin}
}

func (c *Client) CharacterStats(ctx context.Context, characterID int64) (*Stats, error) {
	var result statsResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Origin", c.origin).
		SetPathParam("id", strconv.FormatInt(characterID, 10)).
		SetResult(&result).
		Get(statsPath)
	if err != nil {
		return nil, common.NewError(fmt.Errorf("%w: %w", common.ErrTransport, err), "9b4c7e20-d18f-4a63-b5e2-0c6f3a8d1e97")
	}
	if resp.IsError() {
		return nil, common.NewError(fmt.Errorf("%w: bad status %d", common.ErrUpstreamRejection, resp.StatusCode()), "f12e6b83-4a0d-4c95-8e7b-6d3a9c2f0b18")
	}
	return project(&result), nil
}

func project(resp *statsResponse) *Stats {
	stats := &Stats{
		DangerRatio:    resp.DangerRatio,
		GangRatio:      resp.GangRatio,
		ShipsDestroyed: resp.ShipsDestroyed,
		ShipsLost:      resp.ShipsLost,
	}
	for _, list := range resp.TopLists {
		if list.Type != shipTypeList {
			continue
		}
		stats.Ships = make([]Ship, 0, len(list.Values))
		for _, v := range list.Values {
			stats.Ships = append(stats.Ships, Ship{ID: v.ID, Name: v.Name})
		}
		break
	}
	return stats
}
