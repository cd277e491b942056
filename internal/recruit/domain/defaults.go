package domain

// Fixed fallback values offered when neither the live settings nor the
// user's history carry a field.
const (
	DefaultMessage      = "誰でもどうぞ！"
	DefaultLiveStatus   = "可"
	DefaultRandomStatus = "可"
)

// Defaults are the seed values offered by the edit surface when an owner
// starts or resumes editing an announcement.
type Defaults struct {
	Message        string
	LiveStatus     string
	RandomStatus   string
	SelectorValues map[string]string
}

// ResolveDefaults merges the three configuration layers into edit-surface
// seed values. Per text field the precedence is: explicit live value when a
// live snapshot exists, else the user's last-used value, else the fixed
// fallback. Selector values fall back further to the selector's configured
// default before staying unset.
func ResolveDefaults(live *LiveSettings, history UserHistory, cfg ChannelConfig, selectors map[string]SelectorConfig) Defaults {
	resolve := func(liveValue, historyValue, fallback string) string {
		if live != nil && liveValue != "" {
			return liveValue
		}
		if historyValue != "" {
			return historyValue
		}
		return fallback
	}

	var liveMessage, liveLive, liveRandom string
	if live != nil {
		liveMessage, liveLive, liveRandom = live.Message, live.LiveStatus, live.RandomStatus
	}
	out := Defaults{
		Message:        resolve(liveMessage, history.LastMessage, DefaultMessage),
		LiveStatus:     resolve(liveLive, history.LastLiveStatus, DefaultLiveStatus),
		RandomStatus:   resolve(liveRandom, history.LastRandomStatus, DefaultRandomStatus),
		SelectorValues: make(map[string]string, len(cfg.SelectorIDs)),
	}

	for _, selectorID := range cfg.SelectorIDs {
		var value string
		if live != nil {
			value = live.SelectorValues[selectorID]
		}
		if value == "" {
			value = history.SelectorLastValues[selectorID]
		}
		if value == "" {
			value = selectors[selectorID].DefaultValue
		}
		if value != "" {
			out.SelectorValues[selectorID] = value
		}
	}
	return out
}
