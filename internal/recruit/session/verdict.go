package session

// Reason classifies why an action was accepted or rejected.
type Reason string

const (
	// ReasonAccepted marks a successful action.
	ReasonAccepted Reason = "accepted"
	// ReasonAlreadyOwnedSelf rejects a claim by the current owner.
	ReasonAlreadyOwnedSelf Reason = "already_owned_self"
	// ReasonAlreadyOwnedOther rejects a claim while someone else owns the
	// session.
	ReasonAlreadyOwnedOther Reason = "already_owned_other"
	// ReasonNoPendingClaim rejects a claim while no claim prompt is live.
	ReasonNoPendingClaim Reason = "no_pending_claim"
	// ReasonStaleInteraction rejects a claim bound to a superseded prompt.
	ReasonStaleInteraction Reason = "stale_interaction"
	// ReasonNotAMember rejects an action by a user not in the channel.
	ReasonNotAMember Reason = "not_a_member"
	// ReasonNotOwner rejects an owner-only action by a non-owner.
	ReasonNotOwner Reason = "not_owner"
	// ReasonRecruitmentDisabled rejects publishing without a target channel.
	ReasonRecruitmentDisabled Reason = "recruitment_disabled"
	// ReasonNoLiveSettings rejects actions that need an edited announcement.
	ReasonNoLiveSettings Reason = "no_live_settings"
	// ReasonPublishFailed reports a transport failure during publish.
	ReasonPublishFailed Reason = "publish_failed"
	// ReasonTemplateLimitReached rejects saving past the template cap.
	ReasonTemplateLimitReached Reason = "template_limit_reached"
	// ReasonUnknownTemplate rejects deleting a template that does not exist.
	ReasonUnknownTemplate Reason = "unknown_template"
	// ReasonCapacityLocked rejects capacity changes the category forbids.
	ReasonCapacityLocked Reason = "capacity_locked"
	// ReasonRenameFailed reports a directory rename failure.
	ReasonRenameFailed Reason = "rename_failed"
	// ReasonRoleUnchanged reports a role toggle that was already in effect.
	ReasonRoleUnchanged Reason = "role_unchanged"
	// ReasonPersistenceFailure reports a store write failure. In-memory
	// session state has already advanced and is not rolled back.
	ReasonPersistenceFailure Reason = "persistence_failure"
	// ReasonSessionClosed rejects actions on a closed session.
	ReasonSessionClosed Reason = "session_closed"
	// ReasonCanceled reports the caller's context ending before the action
	// ran.
	ReasonCanceled Reason = "canceled"
)

// Verdict is the structured result of a user-triggered action. Failures are
// ordinary values with a user-facing message, never faults.
type Verdict struct {
	OK      bool
	Reason  Reason
	Message string
}

func accept(message string) Verdict {
	return Verdict{OK: true, Reason: ReasonAccepted, Message: message}
}

func reject(reason Reason, message string) Verdict {
	return Verdict{Reason: reason, Message: message}
}
