package cache

import "fmt"

// Cache keys are namespaced per lookup kind so that a name and a numeric id
// can never collide.
const (
	idKeyTemplate          = "id:%s"
	affiliationKeyTemplate = "affil-%s"
	corporationKeyTemplate = "corp-%d"
	allianceKeyTemplate    = "ally-%d"
	statsKeyTemplate       = "stats-%d"

	sentinelKey = "__localscan_sentinel__"
)

func IDKey(name string) string {
	return fmt.Sprintf(idKeyTemplate, name)
}

func AffiliationKey(name string) string {
	return fmt.Sprintf(affiliationKeyTemplate, name)
}

func CorporationKey(corpID int64) string {
	return fmt.Sprintf(corporationKeyTemplate, corpID)
}

func AllianceKey(allyID int64) string {
	return fmt.Sprintf(allianceKeyTemplate, allyID)
}

func StatsKey(characterID int64) string {
	return fmt.Sprintf(statsKeyTemplate, characterID)
}
