// Package publication holds the lesson publication rules. Everything here is a pure
// function of a snapshot: no store access, no clocks, no side effects.
package publication

import (
	"time"

	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
)

// Reason is the stable code attached to a denied transition.
type Reason string

const (
	ReasonMissingRequiredAssets  Reason = "MISSING_REQUIRED_ASSETS"
	ReasonInvalidScheduleInstant Reason = "INVALID_SCHEDULE_INSTANT"
	ReasonInvalidTransition      Reason = "INVALID_TRANSITION"
)

// AssetRef is the subset of an asset the rules look at.
type AssetRef struct {
	Language  string
	Variant   content.AssetVariant
	AssetType content.AssetType
}

// LessonSnapshot is the lesson state a decision is made against.
type LessonSnapshot struct {
	Status                 content.LessonStatus
	ContentLanguagePrimary string
	Assets                 []AssetRef
}

// SnapshotOf copies the rule-relevant fields out of a loaded lesson.
func SnapshotOf(l *content.Lesson) LessonSnapshot {
	if l == nil {
		return LessonSnapshot{}
	}
	snap := LessonSnapshot{
		Status:                 l.Status,
		ContentLanguagePrimary: l.ContentLanguagePrimary,
		Assets:                 make([]AssetRef, 0, len(l.Assets)),
	}
	for _, a := range l.Assets {
		if a == nil {
			continue
		}
		snap.Assets = append(snap.Assets, AssetRef{Language: a.Language, Variant: a.Variant, AssetType: a.AssetType})
	}
	return snap
}

// Request asks whether a lesson may move to Target. PublishAt is only read for
// scheduled targets; Now is the instant the decision is made at.
type Request struct {
	Target    content.LessonStatus
	PublishAt *time.Time
	Now       time.Time
}

// Decision is the outcome of Evaluate. A denial is ordinary control flow, not an error.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Missing lists the thumbnail variants absent for the primary language on a
	// MISSING_REQUIRED_ASSETS denial.
	Missing []content.AssetVariant
	// Unchanged is set when the lesson is already in the target state and there is
	// nothing to write.
	Unchanged bool
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(r Reason) Decision { return Decision{Reason: r} }

var requiredThumbnailVariants = []content.AssetVariant{content.VariantPortrait, content.VariantLandscape}

// Evaluate decides whether snap may transition to req.Target.
//
// published requires a portrait and a landscape thumbnail in the primary content
// language. scheduled requires a publish instant at or after req.Now and never
// checks assets; they are validated when the schedule fires. archived and draft
// are always allowed.
func Evaluate(snap LessonSnapshot, req Request) Decision {
	switch req.Target {
	case content.LessonPublished:
		if snap.Status == content.LessonPublished {
			return Decision{Allowed: true, Unchanged: true}
		}
		if missing := MissingThumbnails(snap); len(missing) > 0 {
			d := Deny(ReasonMissingRequiredAssets)
			d.Missing = missing
			return d
		}
		return Allow()
	case content.LessonScheduled:
		if req.PublishAt == nil || req.PublishAt.IsZero() || req.PublishAt.Before(req.Now) {
			return Deny(ReasonInvalidScheduleInstant)
		}
		return Allow()
	case content.LessonArchived, content.LessonDraft:
		if snap.Status == req.Target {
			return Decision{Allowed: true, Unchanged: true}
		}
		return Allow()
	default:
		return Deny(ReasonInvalidTransition)
	}
}

// MissingThumbnails returns the required thumbnail variants the snapshot lacks for
// its primary language, in a stable order.
func MissingThumbnails(snap LessonSnapshot) []content.AssetVariant {
	var missing []content.AssetVariant
	for _, v := range requiredThumbnailVariants {
		if !hasThumbnail(snap, v) {
			missing = append(missing, v)
		}
	}
	return missing
}

func HasRequiredThumbnails(snap LessonSnapshot) bool {
	return len(MissingThumbnails(snap)) == 0
}

func hasThumbnail(snap LessonSnapshot, v content.AssetVariant) bool {
	for _, a := range snap.Assets {
		if a.AssetType == content.AssetThumbnail && a.Variant == v && a.Language == snap.ContentLanguagePrimary {
			return true
		}
	}
	return false
}

// ProgramNeedsPublish reports whether a lesson moving to lessonTarget must cascade
// its owning program into published. It is false once the program is published,
// which keeps the cascade idempotent.
func ProgramNeedsPublish(lessonTarget content.LessonStatus, programStatus content.ProgramStatus) bool {
	return lessonTarget == content.LessonPublished && programStatus != content.ProgramPublished
}
