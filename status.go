package drawgen

// StatusKind is the tri-state generation status.
type StatusKind int

const (
	StatusReady StatusKind = iota
	StatusLoading
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusReady:
		return "ready"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the process-wide generation status plus a human-readable label.
type Status struct {
	Kind  StatusKind
	Label string
}

// Status labels set by the generation pipeline.
const (
	LabelReady            = "ready"
	LabelGenerating       = "generating..."
	LabelValidationFailed = "validation failed"
	LabelError            = "error"
	LabelCancelled        = "cancelled"
)
