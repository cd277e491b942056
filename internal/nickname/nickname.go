// Package nickname classifies channel members as players or observers based
// on a display-name marker, and computes the rewritten display name for a
// role transition.
//
// The package is pure: applying a rename is the caller's responsibility,
// typically through the member directory, and may fail independently of the
// classification logic here.
package nickname

import "strings"

// Marker prefixes the display name of an observer.
const Marker = "👀"

// legacyMarker is the retired textual marker still found on old nicknames.
// It is normalized away whenever a name is rewritten.
const legacyMarker = "観戦"

// Role is the participant role derived from a display name.
type Role int

const (
	// Player counts toward channel capacity.
	Player Role = iota
	// Observer does not count toward channel capacity.
	Observer
)

// String returns the role name.
func (r Role) String() string {
	if r == Observer {
		return "observer"
	}
	return "player"
}

// Classify reports the role encoded in a nickname. An empty nickname means
// the member uses their plain handle and is a player.
func Classify(nick string) Role {
	if strings.HasPrefix(nick, Marker) {
		return Observer
	}
	return Player
}

// ObserverNick returns the nickname a member should carry as an observer and
// whether a rename is needed. The legacy marker is stripped before the
// current marker is prepended. A nickname that already carries the marker
// needs no rename.
func ObserverNick(username, nick string) (string, bool) {
	if nick == "" {
		return Marker + username, true
	}
	if strings.HasPrefix(nick, Marker) {
		return nick, false
	}
	trimmed := strings.TrimPrefix(nick, legacyMarker)
	return Marker + trimmed, true
}

// PlayerNick returns the nickname a member should carry as a player and
// whether a rename is needed. All leading markers, current and legacy, are
// stripped. An empty string result means the nickname should be cleared so
// the member reverts to their plain handle; the same applies when the
// stripped nickname equals the handle.
func PlayerNick(username, nick string) (string, bool) {
	if nick == "" {
		return "", false
	}

	stripped := nick
	for {
		switch {
		case strings.HasPrefix(stripped, Marker):
			stripped = strings.TrimPrefix(stripped, Marker)
		case strings.HasPrefix(stripped, legacyMarker):
			stripped = strings.TrimPrefix(stripped, legacyMarker)
		default:
			if stripped == "" || stripped == username {
				stripped = ""
			}
			if stripped == nick {
				return nick, false
			}
			return stripped, true
		}
	}
}
