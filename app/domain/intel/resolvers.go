package intel

import (
	"context"
	"strconv"
	"time"

	"github.com/localscan/intel-gateway/app/domain/resolver"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/app/utils/httpclients/esi"
	"github.com/localscan/intel-gateway/app/utils/httpclients/zkill"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

// IdentityLookup is the subset of ESI the resolvers need.
type IdentityLookup interface {
	ResolveIDs(ctx context.Context, names []string) ([]esi.Entity, error)
	ResolveNames(ctx context.Context, ids []int64) ([]esi.Entity, error)
	Affiliation(ctx context.Context, characterID int64) (*esi.Affiliation, error)
}

type StatsLookup interface {
	CharacterStats(ctx context.Context, characterID int64) (*zkill.Stats, error)
}

type Settings struct {
	BatchDelay       time.Duration
	StatsInterval    time.Duration
	UpstreamTimeout  time.Duration
	SurfaceAbandoned bool
}

func SettingsFromEnvironment() Settings {
	envs := environment_variables.Current()
	return Settings{
		BatchDelay:       envs.BATCH_DEBOUNCE,
		StatsInterval:    envs.STATS_INTERVAL,
		UpstreamTimeout:  envs.UPSTREAM_TIMEOUT,
		SurfaceAbandoned: envs.SURFACE_ABANDONED,
	}
}

// Resolvers holds one scheduler per lookup kind. It is built once and shared
// by every consumer.
type Resolvers struct {
	IDs   *resolver.BatchResolver[string, int64]
	Names *resolver.BatchResolver[int64, string]
	Stats *resolver.RetryingSequentialResolver[int64, Stats]
}

func NewResolvers(identity IdentityLookup, stats StatsLookup, kv cache.KeyValueCache, settings Settings) (*Resolvers, error) {
	ids, err := resolver.NewBatchResolver(resolver.BatchConfig[string, int64]{
		Name:             "id-resolver",
		Delay:            settings.BatchDelay,
		MaxBatchSize:     esi.MaxIDsPerCall,
		Timeout:          settings.UpstreamTimeout,
		SurfaceAbandoned: settings.SurfaceAbandoned,
		Fetch: func(ctx context.Context, names []string) (map[string]int64, error) {
			entities, err := identity.ResolveIDs(ctx, names)
			if err != nil {
				return nil, err
			}
			out := make(map[string]int64, len(entities))
			for _, e := range entities {
				out[e.Name] = e.ID
			}
			return out, nil
		},
		Cache: &resolver.BatchCacheConfig[string, int64]{
			Cache: kv,
			Key:   cache.IDKey,
			Encode: func(id int64) (string, error) {
				return strconv.FormatInt(id, 10), nil
			},
			Decode: func(raw string) (int64, error) {
				return strconv.ParseInt(raw, 10, 64)
			},
		},
	})
	if err != nil {
		return nil, err
	}

	names, err := resolver.NewBatchResolver(resolver.BatchConfig[int64, string]{
		Name:             "name-resolver",
		Delay:            settings.BatchDelay,
		MaxBatchSize:     esi.MaxNamesPerCall,
		Timeout:          settings.UpstreamTimeout,
		SurfaceAbandoned: settings.SurfaceAbandoned,
		Fetch: func(ctx context.Context, ids []int64) (map[int64]string, error) {
			entities, err := identity.ResolveNames(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := make(map[int64]string, len(entities))
			for _, e := range entities {
				out[e.ID] = e.Name
			}
			return out, nil
		},
	})
	if err != nil {
		return nil, err
	}

	statsResolver, err := resolver.NewRetryingSequentialResolver(resolver.SequentialConfig[int64, Stats]{
		Name:             "stats-resolver",
		Interval:         settings.StatsInterval,
		Timeout:          settings.UpstreamTimeout,
		SurfaceAbandoned: settings.SurfaceAbandoned,
		Fetch: func(ctx context.Context, id int64) (Stats, error) {
			s, err := stats.CharacterStats(ctx, id)
			if err != nil {
				return Stats{}, err
			}
			return fromKillboard(s), nil
		},
	})
	if err != nil {
		return nil, err
	}

	return &Resolvers{IDs: ids, Names: names, Stats: statsResolver}, nil
}

// Start runs the stats worker until Stop or ctx ends.
func (r *Resolvers) Start(ctx context.Context) {
	r.Stats.Start(ctx)
}

// Stop halts the stats worker and abandons its queue.
func (r *Resolvers) Stop() {
	r.Stats.Stop()
	r.Stats.Clear()
}

// QueueDepths reports pending requests per resolver.
func (r *Resolvers) QueueDepths() map[string]int {
	return map[string]int{
		r.IDs.Name():   r.IDs.Pending(),
		r.Names.Name(): r.Names.Pending(),
		r.Stats.Name(): r.Stats.Pending(),
	}
}

func fromKillboard(s *zkill.Stats) Stats {
	out := Stats{
		DangerRatio:    s.DangerRatio,
		GangRatio:      s.GangRatio,
		ShipsDestroyed: s.ShipsDestroyed,
		ShipsLost:      s.ShipsLost,
	}
	for _, ship := range s.Ships {
		out.Ships = append(out.Ships, Ship{ID: ship.ID, Name: ship.Name})
	}
	return out
}
