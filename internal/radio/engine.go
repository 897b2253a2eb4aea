package radio

// Engine drives the radio for one descriptor at a time.
// Start and Cancel must not block; Cancel with nothing running is a no-op.
type Engine interface {
	Start(d Descriptor)
	Cancel()
}
