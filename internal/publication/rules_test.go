package publication

import (
	"testing"
	"time"

	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/stretchr/testify/require"
)

func thumb(lang string, v content.AssetVariant) AssetRef {
	return AssetRef{Language: lang, Variant: v, AssetType: content.AssetThumbnail}
}

func TestEvaluatePublish(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		assets  []AssetRef
		allowed bool
		missing []content.AssetVariant
	}{
		{
			name:    "both thumbnails in primary language",
			assets:  []AssetRef{thumb("Telugu", content.VariantPortrait), thumb("Telugu", content.VariantLandscape)},
			allowed: true,
		},
		{
			name:    "landscape missing",
			assets:  []AssetRef{thumb("Telugu", content.VariantPortrait)},
			missing: []content.AssetVariant{content.VariantLandscape},
		},
		{
			name:    "thumbnails only in secondary language",
			assets:  []AssetRef{thumb("English", content.VariantPortrait), thumb("English", content.VariantLandscape)},
			missing: []content.AssetVariant{content.VariantPortrait, content.VariantLandscape},
		},
		{
			name: "posters do not count",
			assets: []AssetRef{
				{Language: "Telugu", Variant: content.VariantPortrait, AssetType: content.AssetPoster},
				thumb("Telugu", content.VariantLandscape),
			},
			missing: []content.AssetVariant{content.VariantPortrait},
		},
		{
			name:    "square and banner are not enough",
			assets:  []AssetRef{thumb("Telugu", content.VariantSquare), thumb("Telugu", content.VariantBanner)},
			missing: []content.AssetVariant{content.VariantPortrait, content.VariantLandscape},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := LessonSnapshot{Status: content.LessonScheduled, ContentLanguagePrimary: "Telugu", Assets: tc.assets}
			d := Evaluate(snap, Request{Target: content.LessonPublished, Now: now})
			require.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				require.Equal(t, ReasonMissingRequiredAssets, d.Reason)
				require.Equal(t, tc.missing, d.Missing)
			}
			require.Equal(t, tc.allowed, HasRequiredThumbnails(snap))
		})
	}
}

func TestEvaluatePublishAlreadyPublishedIsUnchanged(t *testing.T) {
	snap := LessonSnapshot{Status: content.LessonPublished, ContentLanguagePrimary: "Hindi"}
	d := Evaluate(snap, Request{Target: content.LessonPublished, Now: time.Now()})
	require.True(t, d.Allowed)
	require.True(t, d.Unchanged)
}

func TestEvaluateSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)
	snap := LessonSnapshot{Status: content.LessonDraft, ContentLanguagePrimary: "Telugu"}

	require.True(t, Evaluate(snap, Request{Target: content.LessonScheduled, PublishAt: &now, Now: now}).Allowed, "present instant is allowed")
	require.True(t, Evaluate(snap, Request{Target: content.LessonScheduled, PublishAt: &future, Now: now}).Allowed)

	d := Evaluate(snap, Request{Target: content.LessonScheduled, PublishAt: &past, Now: now})
	require.False(t, d.Allowed)
	require.Equal(t, ReasonInvalidScheduleInstant, d.Reason)

	d = Evaluate(snap, Request{Target: content.LessonScheduled, Now: now})
	require.Equal(t, ReasonInvalidScheduleInstant, d.Reason)
}

func TestEvaluateArchiveAndDraftAlwaysAllowed(t *testing.T) {
	for _, from := range []content.LessonStatus{content.LessonDraft, content.LessonScheduled, content.LessonPublished} {
		d := Evaluate(LessonSnapshot{Status: from}, Request{Target: content.LessonArchived, Now: time.Now()})
		require.True(t, d.Allowed, "archive from %s", from)
		require.False(t, d.Unchanged)
	}
	d := Evaluate(LessonSnapshot{Status: content.LessonArchived}, Request{Target: content.LessonArchived})
	require.True(t, d.Unchanged)
	require.True(t, Evaluate(LessonSnapshot{Status: content.LessonArchived}, Request{Target: content.LessonDraft}).Allowed)
}

func TestEvaluateUnknownTarget(t *testing.T) {
	d := Evaluate(LessonSnapshot{Status: content.LessonDraft}, Request{Target: "live"})
	require.False(t, d.Allowed)
	require.Equal(t, ReasonInvalidTransition, d.Reason)
}

func TestProgramNeedsPublish(t *testing.T) {
	require.True(t, ProgramNeedsPublish(content.LessonPublished, content.ProgramDraft))
	require.True(t, ProgramNeedsPublish(content.LessonPublished, content.ProgramArchived))
	require.False(t, ProgramNeedsPublish(content.LessonPublished, content.ProgramPublished))
	require.False(t, ProgramNeedsPublish(content.LessonArchived, content.ProgramDraft))
}

func TestSnapshotOf(t *testing.T) {
	l := &content.Lesson{
		Status:                 content.LessonScheduled,
		ContentLanguagePrimary: "Telugu",
		Assets: []*content.LessonAsset{
			{Language: "Telugu", Variant: content.VariantPortrait, AssetType: content.AssetThumbnail},
			nil,
		},
	}
	snap := SnapshotOf(l)
	require.Equal(t, content.LessonScheduled, snap.Status)
	require.Len(t, snap.Assets, 1)
	require.Equal(t, LessonSnapshot{}, SnapshotOf(nil))
}
