// Package breakpoint implements a breakpoint store keyed by runtime
// address: enabling a breakpoint stashes the original instruction word so
// disabling can restore it exactly.
package breakpoint

import "fmt"

// Tracer is the minimal ptrace surface a breakpoint needs: reading and
// writing one machine word of the traced process's memory. Routing every
// access through this interface, rather than calling ptrace directly,
// keeps the store testable without a live child process — the same
// pattern as routing every ptrace access in the teacher's server through
// s.ptracePeek/s.ptracePoke methods that could, in principle, be swapped
// for a test double.
type Tracer interface {
	PeekWord(addr uint64) (uint64, error)
	PokeWord(addr uint64, word uint64) error
}

// Breakpoint is one planted or plantable trap at a runtime address.
type Breakpoint struct {
	Addr     uint64
	enabled  bool
	original uint64
	mask     uint64
	trap     uint64
}

// Enabled reports whether the breakpoint is currently planted.
func (b *Breakpoint) Enabled() bool { return b.enabled }

// Store tracks every breakpoint planted in a traced process, keyed by its
// runtime address.
type Store struct {
	tracer Tracer
	mask   uint64
	trap   uint64
	byAddr map[uint64]*Breakpoint
}

// NewStore creates an empty breakpoint store. mask and trap give the
// architecture's trap-word transform: a planted breakpoint's word becomes
// (word &^ mask) | trap.
func NewStore(tracer Tracer, mask, trap uint64) *Store {
	return &Store{tracer: tracer, mask: mask, trap: trap, byAddr: make(map[uint64]*Breakpoint)}
}

// Lookup returns the breakpoint at addr, if the store knows about one.
func (s *Store) Lookup(addr uint64) (*Breakpoint, bool) {
	b, ok := s.byAddr[addr]
	return b, ok
}

// Enable plants a breakpoint at addr: the original word there is read and
// stashed, then the trap pattern is written in its place. Enabling an
// already-enabled breakpoint is a no-op.
func (s *Store) Enable(addr uint64) (*Breakpoint, error) {
	b, ok := s.byAddr[addr]
	if !ok {
		b = &Breakpoint{Addr: addr, mask: s.mask, trap: s.trap}
		s.byAddr[addr] = b
	}
	if b.enabled {
		return b, nil
	}
	word, err := s.tracer.PeekWord(addr)
	if err != nil {
		return nil, fmt.Errorf("breakpoint: reading original word at %#x: %w", addr, err)
	}
	b.original = word
	replaced := (word &^ b.mask) | b.trap
	if err := s.tracer.PokeWord(addr, replaced); err != nil {
		return nil, fmt.Errorf("breakpoint: planting trap at %#x: %w", addr, err)
	}
	b.enabled = true
	return b, nil
}

// Disable removes the breakpoint at addr by restoring its original word.
// Disabling an unknown or already-disabled breakpoint is a no-op.
func (s *Store) Disable(addr uint64) error {
	b, ok := s.byAddr[addr]
	if !ok || !b.enabled {
		return nil
	}
	if err := s.tracer.PokeWord(addr, b.original); err != nil {
		return fmt.Errorf("breakpoint: restoring original word at %#x: %w", addr, err)
	}
	b.enabled = false
	return nil
}

// Remove disables and forgets the breakpoint at addr entirely, used for
// the temporary breakpoints step-over and step-out plant.
func (s *Store) Remove(addr uint64) error {
	if err := s.Disable(addr); err != nil {
		return err
	}
	delete(s.byAddr, addr)
	return nil
}

// Addresses returns every address the store currently has a breakpoint
// record for, enabled or not.
func (s *Store) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(s.byAddr))
	for a := range s.byAddr {
		addrs = append(addrs, a)
	}
	return addrs
}
