package scene

import "sync"

// PickService is the scene-wide picking lock. Picking is allowed only while no holder
// has the lock acquired.
type PickService struct {
	mu    sync.Mutex
	locks int
}

// Acquire takes one hold on the lock. The returned release function is idempotent.
func (p *PickService) Acquire() (release func()) {
	p.mu.Lock()
	p.locks++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.locks--
			p.mu.Unlock()
		})
	}
}

// Locked reports whether picking is currently disabled.
func (p *PickService) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locks > 0
}

// Holders returns the number of outstanding holds.
func (p *PickService) Holders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locks
}
