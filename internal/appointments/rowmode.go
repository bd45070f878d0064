package appointments

import "sync"

// Mode is the editor open on a table row.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeEdit   Mode = "edit"
	ModeSerial Mode = "serial"
)

// ParseMode validates a mode name. "" means ModeNone.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeEdit, ModeSerial:
		return Mode(s), nil
	default:
		return ModeNone, ErrInvalidMode
	}
}

// RowModes tracks, per appointment, the open editor and whether a
// mutation is in flight. Edit and serial entry are mutually exclusive.
type RowModes struct {
	mu    sync.Mutex
	modes map[string]Mode
	busy  map[string]bool
}

// NewRowModes creates an empty tracker.
func NewRowModes() *RowModes {
	return &RowModes{
		modes: make(map[string]Mode),
		busy:  make(map[string]bool),
	}
}

// Mode returns the open editor for id.
func (r *RowModes) Mode(id string) Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.modes[id]; ok {
		return m
	}
	return ModeNone
}

// Set opens mode on id. Opening one editor while the other is open fails
// with ErrModeConflict; ModeNone always closes.
func (r *RowModes) Set(id string, mode Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode == ModeNone {
		delete(r.modes, id)
		return nil
	}
	if current, ok := r.modes[id]; ok && current != mode {
		return ErrModeConflict
	}
	r.modes[id] = mode
	return nil
}

// Snapshot returns all open editors.
func (r *RowModes) Snapshot() map[string]Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Mode, len(r.modes))
	for id, m := range r.modes {
		out[id] = m
	}
	return out
}

// prune closes the editors of rows not in present.
func (r *RowModes) prune(present map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.modes {
		if _, ok := present[id]; !ok {
			delete(r.modes, id)
		}
	}
}

func (r *RowModes) acquire(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[id] {
		return ErrRowBusy
	}
	r.busy[id] = true
	return nil
}

func (r *RowModes) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, id)
}
