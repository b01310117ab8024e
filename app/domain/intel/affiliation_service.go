package intel

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// AffiliationService looks up corporation and alliance ids one character at
// a time. Concurrent lookups for the same character share one upstream call.
type AffiliationService struct {
	identity IdentityLookup
	group    singleflight.Group
}

func NewAffiliationService(identity IdentityLookup) *AffiliationService {
	return &AffiliationService{identity: identity}
}

func (s *AffiliationService) Lookup(ctx context.Context, characterID int64) (Affiliation, error) {
	v, err, _ := s.group.Do(strconv.FormatInt(characterID, 10), func() (any, error) {
		resp, err := s.identity.Affiliation(ctx, characterID)
		if err != nil {
			return Affiliation{}, err
		}
		affil := Affiliation{CorpID: resp.CorporationID}
		if resp.AllianceID != nil {
			affil.AllyID = *resp.AllianceID
		}
		return affil, nil
	})
	if err != nil {
		return Affiliation{}, err
	}
	return v.(Affiliation), nil
}
