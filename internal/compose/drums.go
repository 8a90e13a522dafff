package compose

import (
	"sort"

	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

// General MIDI percussion keys
const (
	DrumKick      = 36
	DrumSnare     = 38
	DrumClap      = 39
	DrumClosedHat = 42
	DrumOpenHat   = 46
)

const stepsPerBar = 16

// DrumVoice is one instrument line of a step pattern
type DrumVoice struct {
	Pitch    int
	Steps    []int // 16th-note steps within a bar
	Velocity int
}

// FourOnTheFloor is the house groove used under the EDM form
var FourOnTheFloor = []DrumVoice{
	{Pitch: DrumKick, Steps: []int{0, 4, 8, 12}, Velocity: 112},
	{Pitch: DrumClap, Steps: []int{4, 12}, Velocity: 100},
	{Pitch: DrumClosedHat, Steps: []int{2, 6, 10, 14}, Velocity: 84},
	{Pitch: DrumOpenHat, Steps: []int{15}, Velocity: 70},
}

// DrumPattern renders a step pattern over a number of measures. Hits that
// share a step share onset and duration; empty steps are rests.
func DrumPattern(voices []DrumVoice, measures int, ts models.TimeSignature) []models.Event {
	stepsPerMeasure := ts.Beats * stepsPerBar / ts.BeatType
	if stepsPerMeasure <= 0 {
		stepsPerMeasure = 1
	}
	measureTicks := ts.MeasureTicks()

	hitsAt := make(map[int][]DrumVoice, stepsPerBar)
	for _, v := range voices {
		for _, s := range v.Steps {
			hitsAt[s%stepsPerBar] = append(hitsAt[s%stepsPerBar], v)
		}
	}
	for s := range hitsAt {
		sort.Slice(hitsAt[s], func(i, j int) bool { return hitsAt[s][i].Pitch < hitsAt[s][j].Pitch })
	}

	var events []models.Event
	for m := 0; m < measures; m++ {
		base := models.Ticks(m) * measureTicks
		for step := 0; step < stepsPerMeasure; step++ {
			onset := base + measureTicks*models.Ticks(step)/models.Ticks(stepsPerMeasure)
			next := base + measureTicks*models.Ticks(step+1)/models.Ticks(stepsPerMeasure)
			hits := hitsAt[step%stepsPerBar]
			if len(hits) == 0 {
				events = appendRest(events, onset, next-onset)
				continue
			}
			for _, h := range hits {
				events = append(events, models.Event{
					Onset:    onset,
					Duration: next - onset,
					Pitch:    h.Pitch,
					Velocity: h.Velocity,
				})
			}
		}
	}
	return events
}

// SnareRoll renders the buildup schedule on the snare
func SnareRoll(cfg BuildupConfig, ts models.TimeSignature) []models.Event {
	return Buildup(cfg, DrumSnare, ts).Events
}

// appendRest merges consecutive rests
func appendRest(events []models.Event, onset, d models.Ticks) []models.Event {
	if n := len(events); n > 0 && events[n-1].Rest && events[n-1].End() == onset {
		events[n-1].Duration += d
		return events
	}
	return append(events, models.NewRest(onset, d))
}
