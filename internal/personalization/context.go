package personalization

import "time"

// Context is the ordinal time-of-day bucket derived from a local hour (§4.E).
type Context int

const (
	ContextMorning Context = iota
	ContextAfternoon
	ContextEvening
)

// NumContexts is the fixed size of the context axis.
const NumContexts = 3

// ContextFromTime buckets t's local hour into morning/afternoon/evening.
func ContextFromTime(t time.Time) Context {
	h := t.Hour()
	switch {
	case h >= 0 && h < 12:
		return ContextMorning
	case h >= 12 && h < 18:
		return ContextAfternoon
	default:
		return ContextEvening
	}
}

func (c Context) String() string {
	switch c {
	case ContextMorning:
		return "morning"
	case ContextAfternoon:
		return "afternoon"
	default:
		return "evening"
	}
}
