package scanner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emilholmegaard/doc-architect/config"
	"github.com/emilholmegaard/doc-architect/model"
)

// Registry holds the scanner catalog. It is built once at startup and
// read-only afterwards; iteration follows registration order so scan output
// is deterministic.
type Registry struct {
	scanners []*Scanner
	byID     map[string]*Scanner
	order    map[string]int
}

// NewRegistry builds a registry from scanners in registration order.
func NewRegistry(scanners ...*Scanner) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]*Scanner, len(scanners)),
		order: make(map[string]int, len(scanners)),
	}
	for _, s := range scanners {
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scanner id %q", s.ID)
		}
		r.byID[s.ID] = s
		r.order[s.ID] = len(r.scanners)
		r.scanners = append(r.scanners, s)
	}
	return r, nil
}

// NewDefault builds the registry of every built-in scanner.
func NewDefault() *Registry {
	r, err := NewRegistry(allScanners()...)
	if err != nil {
		// The built-in set is static; a duplicate is a programming error.
		panic(err)
	}
	return r
}

// Lookup returns a scanner by ID.
func (r *Registry) Lookup(id string) (*Scanner, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Order returns the registration index of a scanner ID; unknown IDs sort
// last.
func (r *Registry) Order(id string) int {
	if idx, ok := r.order[id]; ok {
		return idx
	}
	return len(r.scanners)
}

// IDs returns every registered scanner ID in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.scanners))
	for _, s := range r.scanners {
		ids = append(ids, s.ID)
	}
	return ids
}

// Enabled resolves the effective scanner set: the configured groups' union,
// minus explicit disables, plus explicit enables. An empty group list means
// all groups. Unknown IDs and groups are logged and ignored.
func (r *Registry) Enabled(cfg *config.Config, logger *zap.Logger) map[string]bool {
	enabled := make(map[string]bool)

	names := cfg.Scanners.Groups
	if len(names) == 0 {
		names = GroupNames()
	}
	for _, name := range names {
		ids, ok := Group(name)
		if !ok {
			logger.Warn("unknown scanner group", zap.String("group", name))
			continue
		}
		for _, id := range ids {
			enabled[id] = true
		}
	}
	for _, id := range cfg.Scanners.Enabled {
		if _, ok := r.byID[id]; !ok {
			logger.Warn("unknown scanner id", zap.String("scanner", id))
			continue
		}
		enabled[id] = true
	}
	for _, id := range cfg.Scanners.Disabled {
		if _, ok := r.byID[id]; !ok {
			logger.Warn("unknown scanner id", zap.String("scanner", id))
			continue
		}
		delete(enabled, id)
	}
	return enabled
}

// ForFile returns the enabled scanners applicable to the evidence, in
// registration order.
func (r *Registry) ForFile(ev *model.FileEvidence, enabled map[string]bool) []*Scanner {
	var out []*Scanner
	for _, s := range r.scanners {
		if enabled != nil && !enabled[s.ID] {
			continue
		}
		if s.AppliesTo(ev) {
			out = append(out, s)
		}
	}
	return out
}

// Applicable reports whether any registered scanner matches the evidence,
// ignoring enablement. Discovery uses it to prune files early.
func (r *Registry) Applicable(ev *model.FileEvidence) bool {
	for _, s := range r.scanners {
		if s.AppliesTo(ev) {
			return true
		}
	}
	return false
}
