package esi

import (
	"context"
	"fmt"

	"github.com/localscan/intel-gateway/app/domain/common"
	"resty.dev/v3"
)

const (
	idsPath         = "/universe/ids/"
	namesPath       = "/universe/names/"
	affiliationPath = "/characters/affiliation/"

	// MaxIDsPerCall and MaxNamesPerCall are the request size limits of
	// /universe/ids/ and /universe/names/.
	MaxIDsPerCall   = 500
	MaxNamesPerCall = 1000
)

// Entity is an {id, name} pair as returned by the universe endpoints.
type Entity struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// IDsResponse is the body of POST /universe/ids/. Names ESI cannot resolve are
// simply absent.
type IDsResponse struct {
	Characters []Entity `json:"characters,omitempty"`
}

type Affiliation struct {
	CharacterID   int64  `json:"character_id"`
	CorporationID int64  `json:"corporation_id"`
	AllianceID    *int64 `json:"alliance_id,omitempty"`
}

// Client talks to the EVE Swagger Interface.
type Client struct {
	rest *resty.Client
}

func NewClient(rest *resty.Client) *Client {
	return &Client{rest: rest}
}

// ResolveIDs maps character names to ids in a single call.
func (c *Client) ResolveIDs(ctx context.Context, names []string) ([]Entity, error) {
	var result IDsResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(names).
		SetResult(&result).
		Post(idsPath)
	if err != nil {
		return nil, common.NewError(fmt.Errorf("%w: %w", common.ErrTransport, err), "2f0d4b61-2a9e-4f7b-9a34-6c1c2d0e9b11")
	}
	if resp.IsError() {
		return nil, common.NewError(fmt.Errorf("%w: esi ids: %s", common.ErrUpstreamRejection, resp.Status()), "b1a4e5c3-7d2f-4c1e-8f60-0e5a3c9b7d42")
	}
	return result.Characters, nil
}

// ResolveNames maps ids (characters, corporations, alliances) to names.
func (c *Client) ResolveNames(ctx context.Context, ids []int64) ([]Entity, error) {
	var result []Entity
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ids).
		SetResult(&result).
		Post(namesPath)
	if err != nil {
		return nil, common.NewError(fmt.Errorf("%w: %w", common.ErrTransport, err), "6e3c9a27-51b8-4d0a-b2f6-93d7e1a0c5f8")
	}
	if resp.IsError() {
		return nil, common.NewError(fmt.Errorf("%w: esi names: %s", common.ErrUpstreamRejection, resp.Status()), "d84f2b90-3c6e-4a17-a5d9-1b7e0f4c2a63")
	}
	return result, nil
}

// Affiliation returns the corporation and optional alliance of one character.
func (c *Client) Affiliation(ctx context.Context, characterID int64) (*Affiliation, error) {
	var result []Affiliation
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]int64{characterID}).
		SetResult(&result).
		Post(affiliationPath)
	if err != nil {
		return nil, common.NewError(fmt.Errorf("%w: %w", common.ErrTransport, err), "a07b5e14-9f3d-4c82-b6e1-5d2a8c0f7e39")
	}
	if resp.IsError() {
		return nil, common.NewError(fmt.Errorf("%w: esi affiliation: %s", common.ErrUpstreamRejection, resp.Status()), "3c9e1f72-0b4a-4d5e-8a26-f7c0d3b91e54")
	}
	for i := range result {
		if result[i].CharacterID == characterID {
			return &result[i], nil
		}
	}
	return nil, common.NewError(fmt.Errorf("%w: affiliation for %d", common.ErrPartialMiss, characterID), "e5d2a8c3-6f1b-4e90-9c47-2b8f0a1d6e73")
}
