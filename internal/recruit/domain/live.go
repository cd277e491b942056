package domain

import "strconv"

// LiveSettings is the announcement content captured when the owner edits or
// publishes. Once captured it is an independent copy: later history edits
// never change a published announcement.
type LiveSettings struct {
	Message      string
	LiveStatus   string
	RandomStatus string
	// CapacityOverride replaces the category capacity for this session when
	// the category allows it. Zero means no override.
	CapacityOverride int
	// SelectorValues maps selector id to the chosen value.
	SelectorValues map[string]string
}

// Clone returns a deep copy so a captured snapshot cannot alias the caller's
// map.
func (l LiveSettings) Clone() LiveSettings {
	out := l
	if l.SelectorValues != nil {
		out.SelectorValues = make(map[string]string, len(l.SelectorValues))
		for k, v := range l.SelectorValues {
			out.SelectorValues[k] = v
		}
	}
	return out
}

// MaxTemplates caps how many templates a user may save per history category.
const MaxTemplates = 3

// UserHistory is the per-(user, category) record of last-used announcement
// values and explicitly saved templates.
type UserHistory struct {
	LastMessage        string
	LastLiveStatus     string
	LastRandomStatus   string
	SelectorLastValues map[string]string
	Templates          map[string]string
}

// Capacity resolves the effective player capacity for a session: the live
// override when the category permits it, otherwise the category default.
// Zero means unbounded.
func Capacity(cfg ChannelConfig, live *LiveSettings) int {
	if cfg.Flags.CapacityOverridable && live != nil && live.CapacityOverride > 0 {
		return live.CapacityOverride
	}
	return cfg.CapacityDefault
}

// ClosedMarker is shown when no player slots remain.
const ClosedMarker = "〆"

// StatusText renders the remaining-capacity label. It is empty when capacity
// is unbounded, "@N" while N slots remain, and the closed marker otherwise.
func StatusText(capacity, players int) string {
	if capacity <= 0 {
		return ""
	}
	left := capacity - players
	if left > 0 {
		return "@" + strconv.Itoa(left)
	}
	return ClosedMarker
}
