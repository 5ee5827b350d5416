package proxy

import "github.com/nerrad567/smartcity-core/internal/subsystem"

// Stage wraps a subsystem in one decorator.
type Stage func(subsystem.Subsystem) subsystem.Subsystem

// Chain applies stages around base. The first stage is outermost, so
// Chain(s, a, b) is a(b(s)).
func Chain(base subsystem.Subsystem, stages ...Stage) subsystem.Subsystem {
	s := base
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i] != nil {
			s = stages[i](s)
		}
	}
	return s
}
