package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer ids that are reused once released.
// Slot 0 is never handed out so a zero id always means "none".
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 1, 100),
	}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	length := uint32(len(p.owners))
	for i := uint32(1); i < length; i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return i
		}
	}

	// No existing free slots, push a new one.
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Owner(id uint32) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == 0 || id >= uint32(len(p.owners)) {
		return nil, false
	}
	owner := p.owners[id]
	return owner, owner != nil
}

func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	length := uint32(len(p.owners))
	if id == 0 || id >= length {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d): %w", id, length-1, ErrInvalidArgument)
	}

	// Just zero out the entry, making it available for use.
	p.owners[id] = nil
	return nil
}
