// Package surface defines the contract between the recruitment core and the
// presentation layer. A surface publishes a rendered message somewhere,
// updates it in place, and retracts it; the rendering itself (buttons,
// menus, modals) is the presentation layer's concern.
package surface

import "context"

// Role identifies which UI a surface carries. One surface instance serves
// one role.
type Role string

const (
	// RoleClaim shows the "become owner" prompt in an ownerless channel.
	RoleClaim Role = "claim"
	// RoleManagement shows the owner's management controls.
	RoleManagement Role = "management"
	// RoleEdit shows the announcement editing form.
	RoleEdit Role = "edit"
	// RolePost carries the published recruitment announcement.
	RolePost Role = "post"
	// RoleToggle shows the observer/player toggle for channels without
	// recruitment.
	RoleToggle Role = "toggle"
)

// Handle identifies one published message for later update or retract.
// Handles are opaque to the core.
type Handle string

// Field is one labeled value on a published message.
type Field struct {
	Name  string
	Value string
}

// Content is the renderable payload of a surface message.
type Content struct {
	Title  string
	Body   string
	Fields []Field
	Footer string
	// ClaimToken binds a claim prompt to the single claim attempt it
	// authorizes. Empty for other roles.
	ClaimToken string
}

// Surface publishes messages for one UI role.
//
// Retract is idempotent: retracting an unknown or already-retracted handle
// is a no-op, never an error.
type Surface interface {
	Publish(ctx context.Context, target string, content Content) (Handle, error)
	Update(ctx context.Context, handle Handle, content Content) error
	Retract(ctx context.Context, handle Handle) error
}

// Set groups one surface per role for injection into a session.
type Set struct {
	Claim      Surface
	Management Surface
	Edit       Surface
	Post       Surface
	Toggle     Surface
}

// ForRole returns the surface serving the given role, or nil.
func (s Set) ForRole(role Role) Surface {
	switch role {
	case RoleClaim:
		return s.Claim
	case RoleManagement:
		return s.Management
	case RoleEdit:
		return s.Edit
	case RolePost:
		return s.Post
	case RoleToggle:
		return s.Toggle
	default:
		return nil
	}
}
