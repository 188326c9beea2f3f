package telemetry

// Noop is a Recorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type Noop struct{}

// Compile-time interface check.
var _ Recorder = Noop{}

// ExportAdded does nothing.
func (Noop) ExportAdded() {}

// ExportRemoved does nothing.
func (Noop) ExportRemoved(int) {}

// Resolution does nothing.
func (Noop) Resolution(string, int) {}

// Ambiguity does nothing.
func (Noop) Ambiguity() {}

// NotifyPass does nothing.
func (Noop) NotifyPass(int) {}
