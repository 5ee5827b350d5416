package modules

import (
	"slices"
	"sync"

	"github.com/nerrad567/smartcity-core/internal/device"
)

// handles keeps typed references to a module's devices in insertion order.
type handles[T device.Device] struct {
	mu   sync.RWMutex
	ids  []string
	byID map[string]T
}

func (h *handles[T]) add(d T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byID == nil {
		h.byID = make(map[string]T)
	}
	if _, ok := h.byID[d.ID()]; !ok {
		h.ids = append(h.ids, d.ID())
	}
	h.byID[d.ID()] = d
}

func (h *handles[T]) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byID[id]; !ok {
		return
	}
	delete(h.byID, id)
	h.ids = slices.DeleteFunc(h.ids, func(s string) bool { return s == id })
}

func (h *handles[T]) get(id string) (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.byID[id]
	return d, ok
}

func (h *handles[T]) all() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]T, 0, len(h.ids))
	for _, id := range h.ids {
		out = append(out, h.byID[id])
	}
	return out
}

func (h *handles[T]) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ids)
}

// Reading is one sensor sample taken by a monitoring operation.
type Reading struct {
	DeviceID string  `json:"device_id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// sample activates s, reads it and returns the reading.
func sample(s device.Sensor) Reading {
	s.Activate()
	return Reading{DeviceID: s.ID(), Name: s.Name(), Value: s.ReadValue(), Unit: s.Unit()}
}

func countActive[T device.Device](ds []T) int {
	n := 0
	for _, d := range ds {
		if d.Status() == device.StatusActive {
			n++
		}
	}
	return n
}
