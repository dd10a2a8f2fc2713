// Package targeting decides which notifications a device may be shown right
// now. Eligibility is an ordered conjunction of named predicates: liveness,
// schedule window, country, app version, android version floor, and the
// display-frequency cap. Each rejection carries the predicate that failed so
// callers can report why, not just that, a notification was filtered.
//
// Targeting is deliberately asymmetric: an empty target list passes every
// device, but a device missing an attribute fails any predicate whose target
// list is present. Targeted content is never shown to unknown audiences.
package targeting

import (
	"context"
	"time"

	"admob-switch/internal/models"
)

// Reason identifies the predicate that rejected a notification.
type Reason string

const (
	ReasonNotLive         Reason = "not_live"
	ReasonOutsideSchedule Reason = "outside_schedule"
	ReasonCountry         Reason = "country_mismatch"
	ReasonAppVersion      Reason = "app_version_mismatch"
	ReasonAndroidVersion  Reason = "android_version_below_min"
	ReasonDisplayCap      Reason = "display_cap_reached"
	ReasonDisplayInterval Reason = "display_interval_not_elapsed"
)

// Verdict is the outcome of one eligibility evaluation. Reason is empty when
// Eligible is true.
type Verdict struct {
	Eligible bool
	Reason   Reason
}

func pass() Verdict           { return Verdict{Eligible: true} }
func reject(r Reason) Verdict { return Verdict{Reason: r} }

// EventStore reads prior "displayed" events for the frequency-cap predicate.
type EventStore interface {
	DisplayCount(ctx context.Context, notificationID, deviceID string) (int, error)
	LastDisplayedAt(ctx context.Context, notificationID, deviceID string) (*time.Time, error)
}

// NotificationSource lists an app's live notifications in collaborator
// order. PendingFor preserves that order in its output.
type NotificationSource interface {
	LiveNotifications(ctx context.Context, appID string) ([]models.Notification, error)
}

// Evaluator runs eligibility checks. Stateless apart from its collaborators;
// safe for concurrent use.
type Evaluator struct {
	events   EventStore
	source   NotificationSource
	now      func() time.Time
	rejected func(Reason)
}

type Option func(*Evaluator)

// WithClock replaces the wall-clock source used by the schedule and interval
// predicates.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithRejectionHook registers a callback invoked once per rejection with the
// failing predicate, for metrics and debugging.
func WithRejectionHook(fn func(Reason)) Option {
	return func(e *Evaluator) { e.rejected = fn }
}

func New(events EventStore, source NotificationSource, opts ...Option) *Evaluator {
	e := &Evaluator{events: events, source: source, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eligible evaluates the full predicate chain for one (notification, device)
// pair. The error return covers event-store reads only; data-shape problems
// degrade to a rejection, never an error.
func (e *Evaluator) Eligible(ctx context.Context, n models.Notification, d models.Device) (Verdict, error) {
	checks := []func(models.Notification, models.Device) Verdict{
		e.isLive,
		e.withinSchedule,
		e.matchesCountry,
		e.matchesAppVersion,
		e.matchesAndroidVersion,
	}
	for _, check := range checks {
		if v := check(n, d); !v.Eligible {
			e.reportRejection(v.Reason)
			return v, nil
		}
	}
	// Evaluated last: the only predicate needing a storage read.
	v, err := e.underDisplayLimits(ctx, n, d)
	if err == nil && !v.Eligible {
		e.reportRejection(v.Reason)
	}
	return v, err
}

func (e *Evaluator) reportRejection(r Reason) {
	if e.rejected != nil {
		e.rejected(r)
	}
}

func (e *Evaluator) isLive(n models.Notification, _ models.Device) Verdict {
	if !n.IsLive() {
		return reject(ReasonNotLive)
	}
	return pass()
}

// withinSchedule requires now to fall inside [start, end], both bounds
// inclusive and each optional.
func (e *Evaluator) withinSchedule(n models.Notification, _ models.Device) Verdict {
	now := e.now()
	if n.StartDate != nil && now.Before(*n.StartDate) {
		return reject(ReasonOutsideSchedule)
	}
	if n.EndDate != nil && now.After(*n.EndDate) {
		return reject(ReasonOutsideSchedule)
	}
	return pass()
}

func (e *Evaluator) matchesCountry(n models.Notification, d models.Device) Verdict {
	if len(n.TargetCountries) == 0 {
		return pass()
	}
	if d.Country == nil || *d.Country == "" {
		return reject(ReasonCountry)
	}
	if !contains(n.TargetCountries, *d.Country) {
		return reject(ReasonCountry)
	}
	return pass()
}

// matchesAppVersion is exact string equality, not a semver range comparison.
func (e *Evaluator) matchesAppVersion(n models.Notification, d models.Device) Verdict {
	if len(n.TargetAppVersions) == 0 {
		return pass()
	}
	if d.AppVersion == nil || *d.AppVersion == "" {
		return reject(ReasonAppVersion)
	}
	if !contains(n.TargetAppVersions, *d.AppVersion) {
		return reject(ReasonAppVersion)
	}
	return pass()
}

func (e *Evaluator) matchesAndroidVersion(n models.Notification, d models.Device) Verdict {
	if n.MinAndroidVersion == nil {
		return pass()
	}
	if d.AndroidVersion == nil {
		return reject(ReasonAndroidVersion)
	}
	if *d.AndroidVersion < *n.MinAndroidVersion {
		return reject(ReasonAndroidVersion)
	}
	return pass()
}

// underDisplayLimits enforces the absolute display count and the minimum gap
// between displays. Devices without an identity (synthetic lookups) have no
// display history and pass.
func (e *Evaluator) underDisplayLimits(ctx context.Context, n models.Notification, d models.Device) (Verdict, error) {
	if d.ID == "" {
		return pass(), nil
	}

	count, err := e.events.DisplayCount(ctx, n.ID, d.ID)
	if err != nil {
		return Verdict{}, err
	}
	if count >= n.MaxDisplays {
		return reject(ReasonDisplayCap), nil
	}
	if count > 0 && n.DisplayIntervalHours > 0 {
		last, err := e.events.LastDisplayedAt(ctx, n.ID, d.ID)
		if err != nil {
			return Verdict{}, err
		}
		if last != nil {
			elapsed := e.now().Sub(*last)
			if elapsed < time.Duration(n.DisplayIntervalHours)*time.Hour {
				return reject(ReasonDisplayInterval), nil
			}
		}
	}
	return pass(), nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
