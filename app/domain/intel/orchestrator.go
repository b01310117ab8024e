package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/domain/resolver"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/app/utils/logger"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives one character through its lookups:
//
//	name -> id -> affiliation -> corporation name / alliance name
//	         \-> stats
//
// Every step is skipped when its field is already populated and consults the
// cache before scheduling network work.
type Orchestrator struct {
	resolvers    *Resolvers
	affiliations *AffiliationService
	cache        cache.KeyValueCache

	statsMu       sync.Mutex
	statsInFlight map[int64]*resolver.Future[Stats]
}

func NewOrchestrator(resolvers *Resolvers, affiliations *AffiliationService, kv cache.KeyValueCache) *Orchestrator {
	return &Orchestrator{
		resolvers:     resolvers,
		affiliations:  affiliations,
		cache:         kv,
		statsInFlight: make(map[int64]*resolver.Future[Stats]),
	}
}

// UpdateFunc receives a copy of the entity after every change.
type UpdateFunc func(PlayerData)

type entity struct {
	mu     sync.Mutex
	data   PlayerData
	update UpdateFunc
}

func (e *entity) snapshot() PlayerData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.clone()
}

func (e *entity) apply(fn func(*PlayerData)) {
	e.mu.Lock()
	fn(&e.data)
	out := e.data.clone()
	e.mu.Unlock()
	if e.update != nil {
		e.update(out)
	}
}

// Resolve fills in whatever is missing from data. It returns when every step
// has finished or ctx is done; the error is the first step failure, if any.
func (o *Orchestrator) Resolve(ctx context.Context, data PlayerData, update UpdateFunc) (PlayerData, error) {
	e := &entity{data: data.clone(), update: update}
	log := logger.GetLogger().WithField("name", data.Name)

	if e.snapshot().ID == 0 {
		id, err := o.resolvers.IDs.Schedule(data.Name).Await(ctx)
		if err != nil {
			return e.snapshot(), fmt.Errorf("resolve id of %q: %w", data.Name, err)
		}
		e.apply(func(p *PlayerData) { p.ID = id })
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := o.resolveAffiliation(ctx, e); err != nil {
			log.WithError(err).Debug("affiliation branch stopped")
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := o.resolveStats(ctx, e); err != nil {
			log.WithError(err).Debug("stats branch stopped")
			return err
		}
		return nil
	})
	err := g.Wait()
	return e.snapshot(), err
}

func (o *Orchestrator) resolveAffiliation(ctx context.Context, e *entity) error {
	cur := e.snapshot()
	if cur.CorpID == 0 {
		affil, err := o.lookupAffiliation(ctx, cur)
		if err != nil {
			return err
		}
		e.apply(func(p *PlayerData) {
			p.CorpID = affil.CorpID
			p.AllyID = affil.AllyID
		})
		cur = e.snapshot()
	}

	var g errgroup.Group
	if cur.CorpID != 0 && cur.CorpName == "" {
		g.Go(func() error {
			name, err := o.lookupName(ctx, cache.CorporationKey(cur.CorpID), cur.CorpID)
			if err != nil {
				return fmt.Errorf("resolve corporation %d: %w", cur.CorpID, err)
			}
			e.apply(func(p *PlayerData) { p.CorpName = name })
			return nil
		})
	}
	if cur.AllyID != 0 && cur.AllyName == "" {
		g.Go(func() error {
			name, err := o.lookupName(ctx, cache.AllianceKey(cur.AllyID), cur.AllyID)
			if err != nil {
				return fmt.Errorf("resolve alliance %d: %w", cur.AllyID, err)
			}
			e.apply(func(p *PlayerData) { p.AllyName = name })
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) lookupAffiliation(ctx context.Context, cur PlayerData) (Affiliation, error) {
	key := cache.AffiliationKey(cur.Name)
	if raw, ok := o.cache.Get(ctx, key); ok {
		var affil Affiliation
		if err := json.Unmarshal([]byte(raw), &affil); err == nil && affil.CorpID != 0 {
			return affil, nil
		}
	}
	affil, err := o.affiliations.Lookup(ctx, cur.ID)
	if err != nil {
		logger.GetLogger().WithFields(logrus.Fields{
			"name": cur.Name,
			"id":   cur.ID,
		}).Warnf("affiliation lookup failed: %v", err)
		return Affiliation{}, fmt.Errorf("resolve affiliation of %d: %w", cur.ID, err)
	}
	if raw, err := json.Marshal(affil); err == nil {
		o.cache.Set(ctx, key, string(raw))
	}
	return affil, nil
}

func (o *Orchestrator) lookupName(ctx context.Context, key string, id int64) (string, error) {
	if name, ok := o.cache.Get(ctx, key); ok {
		return name, nil
	}
	future := o.resolvers.Names.Schedule(id)
	storeOnResolve(o.cache, future, key, func(name string) (string, error) { return name, nil })
	name, err := future.Await(ctx)
	if err != nil {
		return "", err
	}
	o.cache.Set(ctx, key, name)
	return name, nil
}

func (o *Orchestrator) resolveStats(ctx context.Context, e *entity) error {
	cur := e.snapshot()
	if cur.Stats != nil {
		return nil
	}
	key := cache.StatsKey(cur.ID)
	if raw, ok := o.cache.Get(ctx, key); ok {
		var stats Stats
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			e.apply(func(p *PlayerData) { p.Stats = &stats })
			return nil
		}
	}
	stats, err := o.scheduleStats(cur.ID).Await(ctx)
	if err != nil {
		return fmt.Errorf("resolve stats of %d: %w", cur.ID, err)
	}
	e.apply(func(p *PlayerData) { p.Stats = &stats })
	if raw, err := json.Marshal(stats); err == nil {
		o.cache.Set(ctx, key, string(raw))
	}
	return nil
}

// scheduleStats shares one queued stats request between every caller asking
// for the same id. The result is cached when the request resolves, whether or
// not any caller is still waiting.
func (o *Orchestrator) scheduleStats(id int64) *resolver.Future[Stats] {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	if f, ok := o.statsInFlight[id]; ok && f.State() != resolver.StateAbandoned {
		return f
	}
	f := o.resolvers.Stats.Schedule(id)
	o.statsInFlight[id] = f
	go func() {
		<-f.Settled()
		if stats, ok := f.Value(); ok {
			if raw, err := json.Marshal(stats); err == nil {
				o.cache.Set(context.Background(), cache.StatsKey(id), string(raw))
			}
		}
		o.statsMu.Lock()
		if o.statsInFlight[id] == f {
			delete(o.statsInFlight, id)
		}
		o.statsMu.Unlock()
	}()
	return f
}

// storeOnResolve writes the future's value to key once it resolves.
func storeOnResolve[V any](kv cache.KeyValueCache, f *resolver.Future[V], key string, encode func(V) (string, error)) {
	go func() {
		<-f.Settled()
		value, ok := f.Value()
		if !ok {
			return
		}
		raw, err := encode(value)
		if err != nil {
			return
		}
		kv.Set(context.Background(), key, raw)
	}()
}
