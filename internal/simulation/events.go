package simulation

import (
	"math"
	"time"

	"github.com/google/uuid"

	"FinSim/internal/catalog"
	"FinSim/internal/model"
)

// GenerateEvents draws once per template; a template fires when the draw is
// below its probability. Fired events get an impact jittered by ±30%, a random
// source and a duration of one to seven days.
func GenerateEvents(date time.Time, templates []catalog.EventTemplate, src Source) []model.SimulatedEvent {
	var events []model.SimulatedEvent
	for _, t := range templates {
		if src.Float64() >= t.Probability {
			continue
		}
		impact := t.Impact * (0.7 + src.Float64()*0.6)
		source := pick(catalog.EventSources, src)
		duration := int(math.Floor(src.Float64()*7)) + 1

		events = append(events, model.SimulatedEvent{
			ID:             uuid.NewString(),
			Date:           date,
			Type:           t.Type,
			Severity:       t.Severity,
			Scope:          t.Scope,
			Impact:         impact,
			AbsoluteImpact: math.Abs(impact),
			Title:          t.Title,
			Description:    t.Description,
			Source:         source,
			Probability:    t.Probability,
			Duration:       duration,
			IsActive:       true,
		})
	}
	return events
}

func pick[T any](items []T, src Source) T {
	i := int(src.Float64() * float64(len(items)))
	if i >= len(items) {
		i = len(items) - 1
	}
	return items[i]
}
