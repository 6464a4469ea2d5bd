package app

import (
	"time"

	"github.com/vkotov/roulette/internal/domain"
)

type poolEntry struct {
	ID         domain.ConnID
	EnqueuedAt time.Time
}

// waitingPool is the ordered set of connections seeking a match, oldest
// first. It has no lock of its own: the Matcher's mutex is the single
// serialization point for pool, states and sessions together.
type waitingPool struct {
	entries []poolEntry
}

func (p *waitingPool) push(id domain.ConnID, at time.Time) {
	p.entries = append(p.entries, poolEntry{ID: id, EnqueuedAt: at})
}

// popOldest removes and returns the longest-waiting entry other than
// exclude.
func (p *waitingPool) popOldest(exclude domain.ConnID) (poolEntry, bool) {
	for i, e := range p.entries {
		if e.ID == exclude {
			continue
		}
		p.entries = append(p.entries[:i], p.entries[i+1:]...)
		return e, true
	}
	return poolEntry{}, false
}

func (p *waitingPool) remove(id domain.ConnID) bool {
	for i, e := range p.entries {
		if e.ID == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (p *waitingPool) contains(id domain.ConnID) bool {
	for _, e := range p.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (p *waitingPool) len() int { return len(p.entries) }
