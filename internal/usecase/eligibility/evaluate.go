// Package eligibility decides, per recipient and channel, whether a delivery
// may proceed, must be deferred, or must be skipped. Evaluation is a pure
// function over the caller-supplied preference and entitlement facts; the
// package holds no state and performs no I/O.
package eligibility

import "tripnotify/internal/domain/entity"

// Machine-readable reasons attached to evaluation results. Callers and tests
// assert on these exact strings; they are part of the package contract.
const (
	ReasonCategoryDisabled      = "category_disabled"
	ReasonSMSCategoryIneligible = "sms_category_ineligible"
	ReasonSMSNotEntitled        = "sms_not_entitled"
	ReasonSMSMissingPhone       = "sms_missing_phone"
	ReasonQuietHoursDeferred    = "quiet_hours_deferred"
)

// ChannelDisabledReason returns the reason string for a disabled channel,
// e.g. "push_disabled".
func ChannelDisabledReason(ch entity.DeliveryChannel) string {
	return string(ch) + "_disabled"
}

// Input carries the per-recipient, per-channel facts evaluated for one
// delivery attempt. The caller owns preference and quiet-hours data; inputs
// are evaluated fresh per attempt and never persisted by the engine.
type Input struct {
	Channel entity.DeliveryChannel

	// ChannelEnabled is the recipient's toggle for this delivery channel.
	ChannelEnabled bool

	// CategoryEnabled is the recipient's toggle for the notification
	// category (the coarser, user-facing control).
	CategoryEnabled bool

	// InQuietHours reports whether the recipient is currently inside their
	// local quiet-hours window.
	InQuietHours bool

	// SMS-only gates. Ignored for push and email.
	SMSEligibleCategory bool
	SMSEntitled         bool
	HasSMSPhone         bool
}

// Result is the outcome of evaluating one input: the initial delivery status
// and, for anything other than immediate dispatch, a machine-readable reason.
type Result struct {
	Status entity.DeliveryStatus
	Reason string
}

// Evaluate applies the eligibility gates in their contractual order:
//
//  1. Category disabled → skipped("category_disabled"). Checked before the
//     channel gate because category is the coarser control.
//  2. Channel disabled → skipped("{channel}_disabled").
//  3. SMS-only gates, in order: category SMS-eligibility, entitlement,
//     registered phone number.
//  4. Quiet hours → queued("quiet_hours_deferred"). The one non-terminal
//     ineligibility: the caller must re-evaluate later, not discard.
//  5. Otherwise queued with no reason: eligible for immediate dispatch.
//
// Ineligibility is an expected, policy-driven outcome, never an error.
func Evaluate(in Input) Result {
	if !in.CategoryEnabled {
		return Result{Status: entity.StatusSkipped, Reason: ReasonCategoryDisabled}
	}
	if !in.ChannelEnabled {
		return Result{Status: entity.StatusSkipped, Reason: ChannelDisabledReason(in.Channel)}
	}

	if in.Channel == entity.ChannelSMS {
		if !in.SMSEligibleCategory {
			return Result{Status: entity.StatusSkipped, Reason: ReasonSMSCategoryIneligible}
		}
		if !in.SMSEntitled {
			return Result{Status: entity.StatusSkipped, Reason: ReasonSMSNotEntitled}
		}
		if !in.HasSMSPhone {
			return Result{Status: entity.StatusSkipped, Reason: ReasonSMSMissingPhone}
		}
	}

	if in.InQuietHours {
		return Result{Status: entity.StatusQueued, Reason: ReasonQuietHoursDeferred}
	}

	return Result{Status: entity.StatusQueued}
}
