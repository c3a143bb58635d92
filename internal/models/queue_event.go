package models

// QueueEventKind distinguishes progress notices from item outcomes
type QueueEventKind int

const (
	// QueueEventProgress is emitted right before an item starts downloading
	QueueEventProgress QueueEventKind = iota
	// QueueEventOutcome is emitted once an item finished, failed, or the run was cancelled
	QueueEventOutcome
)

// String returns the string representation of the kind
func (k QueueEventKind) String() string {
	switch k {
	case QueueEventProgress:
		return "progress"
	case QueueEventOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// QueueEvent is reported by the queue runner while it works through a run
type QueueEvent struct {
	Kind      QueueEventKind
	RunID     string
	Index     int // Position of the request in the queue, -1 for run-level events
	Title     string
	Message   string // User-facing status line, e.g. "Baixando: Pilot"
	Succeeded bool   // Only meaningful for outcomes
	Cancelled bool   // Terminal outcome of a run stopped between items
	Err       error  // Cause of an unsuccessful outcome
}

// IsOutcome reports whether the event closes an item (or the run)
func (e QueueEvent) IsOutcome() bool {
	return e.Kind == QueueEventOutcome
}
