package infra

// EventType represents the type of pipeline event in the system
type EventType int

const (
	PageFetched EventType = iota
	PageCapReached
	WindowFailed
	RowsExcluded
	ReportAggregated
)

// String returns the string representation of the EventType
func (et EventType) String() string {
	switch et {
	case PageFetched:
		return "PageFetched"
	case PageCapReached:
		return "PageCapReached"
	case WindowFailed:
		return "WindowFailed"
	case RowsExcluded:
		return "RowsExcluded"
	case ReportAggregated:
		return "ReportAggregated"
	default:
		return "Unknown"
	}
}

type Event interface{ EventType() EventType }
type Handler func(Event)
type Bus struct{ subs map[EventType][]Handler }

func NewBus() *Bus { return &Bus{subs: map[EventType][]Handler{}} }
func (b *Bus) Publish(e Event) {
	for _, h := range b.subs[e.EventType()] {
		h(e)
	}
}
func (b *Bus) Subscribe(evt EventType, h Handler) { b.subs[evt] = append(b.subs[evt], h) }
