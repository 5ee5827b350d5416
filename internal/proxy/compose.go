package proxy

import (
	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// Layers selects which decorators Compose applies.
type Layers struct {
	Protect bool
	Log     bool
	Cache   bool
}

// Secured is a composed subsystem with handles to each layer. Layers that
// were not requested are nil. The embedded Subsystem is the outermost layer.
type Secured struct {
	subsystem.Subsystem

	Base       subsystem.Subsystem
	Protection *Protection
	Caching    *Caching
	Logging    *Logging
}

// Compose wraps base in the standard order: protection outermost, then
// caching, then logging directly around base. Returns ErrNoAccessControl
// when protection is requested with a nil AccessControl.
func Compose(base subsystem.Subsystem, ac auth.AccessControl, layers Layers, opts ...Option) (*Secured, error) {
	if layers.Protect && ac == nil {
		return nil, ErrNoAccessControl
	}

	sec := &Secured{Base: base}
	var stages []Stage

	if layers.Protect {
		stages = append(stages, func(s subsystem.Subsystem) subsystem.Subsystem {
			sec.Protection = NewProtection(s, ac, opts...)
			return sec.Protection
		})
	}
	if layers.Cache {
		stages = append(stages, func(s subsystem.Subsystem) subsystem.Subsystem {
			sec.Caching = NewCaching(s, opts...)
			return sec.Caching
		})
	}
	if layers.Log {
		stages = append(stages, func(s subsystem.Subsystem) subsystem.Subsystem {
			sec.Logging = NewLogging(s, opts...)
			return sec.Logging
		})
	}

	sec.Subsystem = Chain(base, stages...)
	return sec, nil
}
