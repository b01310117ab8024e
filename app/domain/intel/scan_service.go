package intel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/domain/common"
	"github.com/localscan/intel-gateway/app/utils/logger"
)

var (
	ErrEmptyScan    = errors.New("scan has no names")
	ErrScanNotFound = errors.New("scan not found")
)

// Scan is a set of characters resolved together, typically one paste of a
// local chat member list.
type Scan struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	order  []string
	rows   map[string]PlayerData
	failed map[string]string
	cancel context.CancelFunc
	done   chan struct{}
}

func newScan(names []string, cancel context.CancelFunc) *Scan {
	rows := make(map[string]PlayerData, len(names))
	for _, name := range names {
		rows[name] = PlayerData{Name: name}
	}
	return &Scan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		order:     names,
		rows:      rows,
		failed:    make(map[string]string),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (s *Scan) update(data PlayerData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[data.Name] = data
}

func (s *Scan) fail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[name] = common.Describe(err)
}

// Rows returns characters whose id is known, in input order.
func (s *Scan) Rows() []PlayerData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PlayerData, 0, len(s.order))
	for _, name := range s.order {
		row := s.rows[name]
		if row.ID == 0 {
			continue
		}
		out = append(out, row.clone())
	}
	return out
}

// Unresolved lists names whose id is still unknown.
func (s *Scan) Unresolved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, name := range s.order {
		if s.rows[name].ID == 0 {
			out = append(out, name)
		}
	}
	return out
}

func (s *Scan) Failures() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.failed))
	for k, v := range s.failed {
		out[k] = v
	}
	return out
}

func (s *Scan) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Scan) Done() <-chan struct{} {
	return s.done
}

func (s *Scan) Finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// ScanService owns every running scan.
type ScanService struct {
	orchestrator *Orchestrator
	resolvers    *Resolvers

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	scans map[string]*Scan
}

func NewScanService(orchestrator *Orchestrator, resolvers *Resolvers) *ScanService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ScanService{
		orchestrator: orchestrator,
		resolvers:    resolvers,
		ctx:          ctx,
		cancel:       cancel,
		scans:        make(map[string]*Scan),
	}
}

// Start begins resolving names in the background and returns immediately.
func (s *ScanService) Start(names []string) (*Scan, error) {
	names = NormalizeNames(names)
	if len(names) == 0 {
		return nil, ErrEmptyScan
	}
	ctx, cancel := context.WithCancel(s.ctx)
	scan := newScan(names, cancel)

	s.mu.Lock()
	s.scans[scan.ID] = scan
	s.mu.Unlock()

	logger.GetLogger().WithFields(logrus.Fields{
		"scan":  scan.ID,
		"names": len(names),
	}).Info("scan started")

	var entities sync.WaitGroup
	for _, name := range names {
		entities.Add(1)
		go func(name string) {
			defer entities.Done()
			_, err := s.orchestrator.Resolve(ctx, PlayerData{Name: name}, scan.update)
			if err != nil && ctx.Err() == nil {
				scan.fail(name, err)
			}
		}(name)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		entities.Wait()
		close(scan.done)
		cancel()
	}()
	return scan, nil
}

func (s *ScanService) Get(id string) (*Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return nil, ErrScanNotFound
	}
	return scan, nil
}

// Wait blocks until the scan finished or ctx is done. A ctx expiry is not an
// error: the scan keeps running and can be polled later.
func (s *ScanService) Wait(ctx context.Context, id string) (*Scan, error) {
	scan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	select {
	case <-scan.done:
	case <-ctx.Done():
	}
	return scan, nil
}

// Cancel stops a scan and forgets it. Requests it already queued stay
// queued; their results still populate the cache.
func (s *ScanService) Cancel(id string) error {
	s.mu.Lock()
	scan, ok := s.scans[id]
	delete(s.scans, id)
	s.mu.Unlock()
	if !ok {
		return ErrScanNotFound
	}
	scan.cancel()
	return nil
}

// Shutdown cancels every scan, waits for them and clears the stats queue.
func (s *ScanService) Shutdown() {
	s.cancel()
	s.wg.Wait()
	s.resolvers.Stop()
	logger.GetLogger().Info("scan service stopped")
}

// Prune cancels and forgets scans created before now-maxAge. Scans whose
// lookups were abandoned never finish on their own, so this bounds memory.
func (s *ScanService) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	var stale []*Scan
	s.mu.Lock()
	for id, scan := range s.scans {
		if scan.CreatedAt.Before(cutoff) {
			stale = append(stale, scan)
			delete(s.scans, id)
		}
	}
	s.mu.Unlock()
	for _, scan := range stale {
		scan.cancel()
	}
	return len(stale)
}
