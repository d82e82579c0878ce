package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPool_NextIncrements(t *testing.T) {
	var p idPool
	assert.Equal(t, uint64(1), p.next())
	assert.Equal(t, uint64(2), p.next())
	assert.Equal(t, uint64(3), p.next())
}

func TestIDPool_ReusesOldestFreedFirst(t *testing.T) {
	var p idPool
	for i := 0; i < 5; i++ {
		p.next()
	}
	p.release(4)
	p.release(2)

	assert.Equal(t, uint64(4), p.next())
	assert.Equal(t, uint64(2), p.next())
	assert.Equal(t, uint64(6), p.next())
}

func TestIDPool_IgnoresUnissuedIDs(t *testing.T) {
	var p idPool
	p.next()
	p.release(0)
	p.release(9)
	assert.Empty(t, p.free)
	assert.Equal(t, uint64(2), p.next())
}

func TestIDPool_Seed(t *testing.T) {
	var p idPool
	p.seed(41)
	assert.Equal(t, uint64(42), p.next())
	p.seed(10)
	assert.Equal(t, uint64(43), p.next())
}

func TestIDAllocator_NamespacesAreIndependent(t *testing.T) {
	var a idAllocator
	assert.Equal(t, uint64(1), a.events.next())
	assert.Equal(t, uint64(1), a.invites.next())
	a.events.release(1)
	assert.Equal(t, uint64(2), a.invites.next())
	assert.Equal(t, uint64(1), a.events.next())
}
