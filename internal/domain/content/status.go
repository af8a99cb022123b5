package content

// LessonStatus is the publication lifecycle of a lesson.
type LessonStatus string

const (
	LessonDraft     LessonStatus = "draft"
	LessonScheduled LessonStatus = "scheduled"
	LessonPublished LessonStatus = "published"
	LessonArchived  LessonStatus = "archived"
)

func (s LessonStatus) Valid() bool {
	switch s {
	case LessonDraft, LessonScheduled, LessonPublished, LessonArchived:
		return true
	}
	return false
}

// ProgramStatus is the publication lifecycle of a program.
type ProgramStatus string

const (
	ProgramDraft     ProgramStatus = "draft"
	ProgramPublished ProgramStatus = "published"
	ProgramArchived  ProgramStatus = "archived"
)

func (s ProgramStatus) Valid() bool {
	switch s {
	case ProgramDraft, ProgramPublished, ProgramArchived:
		return true
	}
	return false
}

type ContentType string

const (
	ContentVideo   ContentType = "video"
	ContentArticle ContentType = "article"
)

func (c ContentType) Valid() bool {
	return c == ContentVideo || c == ContentArticle
}

type AssetType string

const (
	AssetPoster    AssetType = "poster"
	AssetThumbnail AssetType = "thumbnail"
)

type AssetVariant string

const (
	VariantPortrait  AssetVariant = "portrait"
	VariantLandscape AssetVariant = "landscape"
	VariantSquare    AssetVariant = "square"
	VariantBanner    AssetVariant = "banner"
)

func (v AssetVariant) Valid() bool {
	switch v {
	case VariantPortrait, VariantLandscape, VariantSquare, VariantBanner:
		return true
	}
	return false
}
