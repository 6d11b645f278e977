package audited

import (
	"atelier/internal/ports"
	"atelier/internal/usecase"
)

// Wrap returns a copy of deps whose repositories journal to sink with opts.
// Nil repositories stay nil.
func Wrap(deps usecase.Deps, sink ports.AuditSink, opts Options) usecase.Deps {
	out := deps
	if deps.Users != nil {
		out.Users = NewUserRepository(deps.Users, sink, opts)
	}
	if deps.Events != nil {
		out.Events = NewEventRepository(deps.Events, sink, opts)
	}
	if deps.Registrations != nil {
		out.Registrations = NewRegistrationRepository(deps.Registrations, sink, opts)
	}
	return out
}
