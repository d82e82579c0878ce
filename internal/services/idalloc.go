package services

// idPool hands out identifiers of one namespace. Freed identifiers are reused oldest
// first so values stay small on long-running servers.
type idPool struct {
	max  uint64
	free []uint64
}

func (p *idPool) next() uint64 {
	if len(p.free) > 0 {
		id := p.free[0]
		p.free[0] = 0
		p.free = p.free[1:]
		return id
	}
	p.max++
	return p.max
}

// release queues id for reuse. The record holding it must already be destroyed.
func (p *idPool) release(id uint64) {
	if id == 0 || id > p.max {
		return
	}
	p.free = append(p.free, id)
}

// seed raises the high-water mark to at least max.
func (p *idPool) seed(max uint64) {
	if max > p.max {
		p.max = max
	}
}

// idAllocator holds the event and invite namespaces. It has no lock of its own; the
// registry mutex guards it.
type idAllocator struct {
	events  idPool
	invites idPool
}
