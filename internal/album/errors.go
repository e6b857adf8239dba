package album

// ValidationError reports missing or inconsistent user input (no culling mode,
// no event type, empty album title). It is surfaced as a non-fatal warning and
// never changes workflow state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// PreconditionError reports that an operation was skipped because its inputs
// are not available yet (no embeddings for duplicate search, no photos to
// cull). Surfaced as a warning; the operation performs no external call.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}
