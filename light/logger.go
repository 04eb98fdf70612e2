package light

// A Logger provides logging for a Machine.
// The functions are Printf-style functions.
// They must be safe for concurrent use.
// They do not require a trailing newline in the format.
// If nil, that level of logging will be silent.
type Logger struct {
	Debugf func(format string, args ...any)
	Infof  func(format string, args ...any)
}

func (m *Machine) debugf(format string, args ...any) {
	if m.log != nil && m.log.Debugf != nil {
		m.log.Debugf(format, args...)
	}
}

func (m *Machine) infof(format string, args ...any) {
	if m.log != nil && m.log.Infof != nil {
		m.log.Infof(format, args...)
	}
}
