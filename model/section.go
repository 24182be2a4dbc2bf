package model

// CanonicalName is one of the closed set of section identifiers the
// matcher resolves header text to.
type CanonicalName string

const (
	SectionContact        CanonicalName = "Contact"
	SectionSummary        CanonicalName = "Summary"
	SectionSkills         CanonicalName = "Skills"
	SectionExperience     CanonicalName = "Experience"
	SectionProjects       CanonicalName = "Projects"
	SectionEducation      CanonicalName = "Education"
	SectionCertifications CanonicalName = "Certifications"
	SectionAchievements   CanonicalName = "Achievements"
	SectionPublications   CanonicalName = "Publications"
	SectionLanguages      CanonicalName = "Languages"
	SectionVolunteer      CanonicalName = "Volunteer"
	SectionHobbies        CanonicalName = "Hobbies"
	SectionReferences     CanonicalName = "References"
	SectionDeclarations   CanonicalName = "Declarations"
	SectionUnknown        CanonicalName = "Unknown"
)

// CanonicalNames lists the closed enum in a stable, display-friendly
// order (Contact/Summary first, Unknown last).
var CanonicalNames = []CanonicalName{
	SectionContact, SectionSummary, SectionSkills, SectionExperience,
	SectionProjects, SectionEducation, SectionCertifications,
	SectionAchievements, SectionPublications, SectionLanguages,
	SectionVolunteer, SectionHobbies, SectionReferences,
	SectionDeclarations, SectionUnknown,
}

// MatchKind records how a header string resolved to a canonical name.
type MatchKind string

const (
	MatchExact      MatchKind = "exact"
	MatchNormalized MatchKind = "normalized"
	MatchEmbedding  MatchKind = "embedding"
	MatchPattern    MatchKind = "pattern"
	MatchUnknown    MatchKind = "unknown"
)

// SectionHeader is a Line identified as a section boundary, plus the
// outcome of matching its text against the section database.
type SectionHeader struct {
	Line      Line
	Canonical CanonicalName
	MatchKind MatchKind
	Score     float64
	RawText   string
}

// Section is a contiguous (after merge) run of body lines under one
// canonical name, plus the column regions it was assembled from.
type Section struct {
	Canonical   CanonicalName
	SourceCols  []ColumnRegionRef
	BodyLines   []Line
	PageSpan    [2]int // [first page, last page], 0-based inclusive
}

// ColumnRegionRef identifies a column region a Section drew lines from.
type ColumnRegionRef struct {
	Page        int
	ColumnIndex int
	BandIndex   int
}

// SectionDatabaseEntry is the persisted per-canonical-name learning
// state: the set of observed surface forms and, if embeddings are
// enabled, a running-mean centroid over their vectors.
type SectionDatabaseEntry struct {
	Canonical         CanonicalName
	Variants          map[string]struct{}
	EmbeddingCentroid []float64
	UsageCount        int
}

// NewSectionDatabaseEntry creates an entry with an empty variant set.
func NewSectionDatabaseEntry(name CanonicalName) *SectionDatabaseEntry {
	return &SectionDatabaseEntry{Canonical: name, Variants: make(map[string]struct{})}
}
