package models

// TiedEvent is an event, or a piece of one, that fits within a measure.
// TieStart marks a piece continued in the next measure, TieStop one that
// continues the previous piece.
type TiedEvent struct {
	Event
	TieStart bool
	TieStop  bool
}

// SplitAtMeasures cuts events that cross a barline into tied pieces.
// Rests are cut too but never tied. Continuation pieces drop the
// dynamic so a crescendo is marked once.
func SplitAtMeasures(events []Event, measure Ticks) []TiedEvent {
	out := make([]TiedEvent, 0, len(events))
	for _, e := range events {
		if measure <= 0 {
			out = append(out, TiedEvent{Event: e})
			continue
		}
		stop := false
		for e.Duration > 0 {
			barEnd := (e.Onset/measure + 1) * measure
			if e.End() <= barEnd {
				out = append(out, TiedEvent{Event: e, TieStop: stop})
				break
			}
			head := e
			head.Duration = barEnd - e.Onset
			out = append(out, TiedEvent{Event: head, TieStart: !e.Rest, TieStop: stop})
			e.Onset = barEnd
			e.Duration -= head.Duration
			e.Dynamic = DynamicNone
			stop = !e.Rest
		}
	}
	return out
}
