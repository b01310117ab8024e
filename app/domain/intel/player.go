package intel

import (
	"bufio"
	"strings"

	"github.com/shopspring/decimal"
)

type Ship struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Stats is the subset of a character's killboard statistics shown per row.
type Stats struct {
	DangerRatio    int    `json:"dangerRatio"`
	GangRatio      int    `json:"gangRatio"`
	ShipsDestroyed int    `json:"shipsDestroyed"`
	ShipsLost      int    `json:"shipsLost"`
	Ships          []Ship `json:"ships,omitempty"`
}

// KillDeathRatio is ships destroyed per ship lost, rounded to two places.
// A character with no losses reports its kill count.
func (s *Stats) KillDeathRatio() decimal.Decimal {
	destroyed := decimal.NewFromInt(int64(s.ShipsDestroyed))
	if s.ShipsLost == 0 {
		return destroyed
	}
	return destroyed.DivRound(decimal.NewFromInt(int64(s.ShipsLost)), 2)
}

// Affiliation is the cached form of a character's corporation and alliance.
type Affiliation struct {
	CorpID int64 `json:"corpId"`
	AllyID int64 `json:"allyId,omitempty"`
}

// PlayerData is everything known about one scanned character. Zero values
// mean "not known yet"; a populated field is never resolved again.
type PlayerData struct {
	Name     string `json:"name"`
	ID       int64  `json:"id,omitempty"`
	CorpID   int64  `json:"corpId,omitempty"`
	CorpName string `json:"corpName,omitempty"`
	AllyID   int64  `json:"allyId,omitempty"`
	AllyName string `json:"allyName,omitempty"`
	*Stats
}

func (p PlayerData) clone() PlayerData {
	if p.Stats != nil {
		stats := *p.Stats
		stats.Ships = append([]Ship(nil), p.Stats.Ships...)
		p.Stats = &stats
	}
	return p
}

// Complete reports whether every reachable field has been resolved.
func (p PlayerData) Complete() bool {
	if p.ID == 0 || p.Stats == nil || p.CorpID == 0 || p.CorpName == "" {
		return false
	}
	return p.AllyID == 0 || p.AllyName != ""
}

// ParseNames splits a pasted local-chat member list, one name per line, and
// normalizes it with NormalizeNames.
func ParseNames(raw string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return NormalizeNames(lines)
}

// NormalizeNames trims names, drops blanks and keeps the first occurrence of
// each name.
func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
