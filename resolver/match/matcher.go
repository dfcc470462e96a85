// Package match selects the play-by-play event a highlight query refers to.
package match

import (
	"strings"

	"clipfinder/internal/models"
)

// Find picks the single best event for a player and event type out of a
// game's log. The log is never mutated; every step is a pure filter. The
// event-type branches are tested in a fixed order and the first hit wins, so
// "dunk" beats the "3PT" text that may sit in the same description. Among
// qualifying events the chronologically last one is returned, a deliberate
// recency tie-break.
func Find(events []models.EventRecord, playerName, eventType string) (models.EventRecord, bool) {
	if len(events) == 0 || playerName == "" {
		return models.EventRecord{}, false
	}

	playerUpper := strings.ToUpper(playerName)
	var candidates []models.EventRecord
	for _, ev := range events {
		if strings.Contains(strings.ToUpper(ev.PlayerName), playerUpper) {
			candidates = append(candidates, ev)
		}
	}
	if len(candidates) == 0 {
		return models.EventRecord{}, false
	}

	matched := classify(candidates, eventType)
	if len(matched) == 0 {
		return models.EventRecord{}, false
	}

	return matched[len(matched)-1], true
}

func classify(events []models.EventRecord, eventType string) []models.EventRecord {
	et := strings.ToLower(eventType)

	switch {
	case strings.Contains(et, "winner"):
		// Covers "game winner". Regulation 4th quarter or overtime.
		return filter(events, func(ev models.EventRecord) bool {
			return ev.MadeShot && ev.Period >= lateGamePeriod
		})
	case strings.Contains(et, "free throw"):
		return filterDescription(events, "FREE THROW")
	case strings.Contains(et, "3") || strings.Contains(et, "three"):
		return filterDescription(events, "3PT")
	case strings.Contains(et, "dunk"):
		return filterDescription(events, "DUNK")
	case strings.Contains(et, "block"):
		return filterDescription(events, "BLOCK")
	default:
		return defaultHighlight(events)
	}
}

// lateGamePeriod is the first period counted as "late game" for the
// game-winner branch and the default-highlight preference.
const lateGamePeriod = 4

// defaultHighlight is the policy for unrecognized event types ("highlight"
// and everything else): made shots, preferring late-game ones when the player
// has any. The late-game preference is a heuristic; keep it contained here.
func defaultHighlight(events []models.EventRecord) []models.EventRecord {
	made := filter(events, func(ev models.EventRecord) bool {
		return ev.MadeShot
	})
	late := filter(made, func(ev models.EventRecord) bool {
		return ev.Period >= lateGamePeriod
	})
	if len(late) > 0 {
		return late
	}
	return made
}

func filterDescription(events []models.EventRecord, needle string) []models.EventRecord {
	return filter(events, func(ev models.EventRecord) bool {
		combined := strings.ToUpper(ev.HomeDescription + " " + ev.VisitorDescription)
		return strings.Contains(combined, needle)
	})
}

func filter(events []models.EventRecord, keep func(models.EventRecord) bool) []models.EventRecord {
	var out []models.EventRecord
	for _, ev := range events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}
