package sections

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/tsawler/resumecore/model"
)

// learnThreshold is the minimum non-exact match score that triggers
// auto-variant insertion (§4.6).
const learnThreshold = 0.70

// EmbeddingProvider is the optional capability §9 calls for: absence
// must never change match correctness, only recall.
type EmbeddingProvider interface {
	Embed(text string) ([]float64, error)
}

// patternRule is one entry in the substring → canonical rule table
// used by the Pattern match step (§4.6 step 4).
type patternRule struct {
	pattern   *regexp.Regexp
	canonical model.CanonicalName
	score     float64
}

var patternRules = []patternRule{
	{regexp.MustCompile(`developer|engineer|analyst`), model.SectionExperience, 0.8},
	{regexp.MustCompile(`university|bachelor|b\.tech|m\.s\.`), model.SectionEducation, 0.8},
	{regexp.MustCompile(`certified|certification`), model.SectionCertifications, 0.8},
	{regexp.MustCompile(`project|portfolio`), model.SectionProjects, 0.8},
	{regexp.MustCompile(`skill|expertise|proficiency`), model.SectionSkills, 0.75},
}

// Matcher runs the C6 match pipeline against a snapshot of the section
// database. A Matcher is built once per parse from Database.Snapshot
// and buffers learned variants for a single atomic Commit at the end.
type Matcher struct {
	mu               sync.Mutex
	entries          map[model.CanonicalName]*model.SectionDatabaseEntry
	embedder         EmbeddingProvider
	similarityThresh float64
	learnedCount     int
	falsePositives   int
}

// NewMatcher builds a Matcher over a database snapshot. embedder may
// be nil; similarityThreshold is ignored in that case.
func NewMatcher(entries map[model.CanonicalName]*model.SectionDatabaseEntry, embedder EmbeddingProvider, similarityThreshold float64) *Matcher {
	if similarityThreshold == 0 {
		similarityThreshold = 0.68
	}
	return &Matcher{entries: entries, embedder: embedder, similarityThresh: similarityThreshold}
}

// Normalize implements the §4.5 stylized-header normalization rule:
// lowercase, then drop every non-alphabetic character. This is also
// what collapses a stylized header like "E X P E R I E N C E" into
// "experience" — dropping the spaces does the collapsing for free. It
// is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	for _, r := range lower {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match runs the full pipeline for one candidate header string,
// learning any non-exact match at or above learnThreshold (§4.6).
// Callers must only invoke this on strings already confirmed to be
// section headers — calling it on arbitrary body text lets ordinary
// prose ("Senior Software Engineer") get learned as a header variant.
// Code that needs to test many substrings (multi-header span scans) or
// score a line before it has cleared the header threshold must use
// MatchNoLearn or ExactOnly instead.
func (m *Matcher) Match(raw string) model.SectionHeader {
	return m.matchPipeline(raw, true)
}

// MatchNoLearn runs the same exact/normalized/pattern/embedding
// pipeline as Match but never buffers a new variant, for callers that
// need pattern/embedding recall without the learning side effect
// (e.g. scanning every token span of a line for multi-header anchors).
func (m *Matcher) MatchNoLearn(raw string) model.SectionHeader {
	return m.matchPipeline(raw, false)
}

func (m *Matcher) matchPipeline(raw string, learn bool) model.SectionHeader {
	// Exact is raw-string equality, case/whitespace-insensitive only: a
	// known variant's spelling modulo case and leading/trailing space.
	// A spaced-out stylized header ("E X P E R I E N C E") has the same
	// letters as a seeded variant but is NOT the same string, so it must
	// fall through to the normalized tier below rather than short-circuit
	// here just because Normalize happens to collapse both to one value.
	rawFolded := strings.ToLower(strings.TrimSpace(raw))
	if name, score, ok := m.exactLookup(rawFolded); ok {
		return model.SectionHeader{Canonical: name, MatchKind: model.MatchExact, Score: score, RawText: raw}
	}

	normalized := Normalize(raw)
	if name, score, ok := m.exactLookup(normalized); ok {
		if learn {
			m.maybeLearn(name, rawFolded, model.MatchNormalized, score)
		}
		return model.SectionHeader{Canonical: name, MatchKind: model.MatchNormalized, Score: score, RawText: raw}
	}

	for _, rule := range patternRules {
		if rule.pattern.MatchString(normalized) {
			if learn {
				m.maybeLearn(rule.canonical, normalized, model.MatchPattern, rule.score)
			}
			return model.SectionHeader{Canonical: rule.canonical, MatchKind: model.MatchPattern, Score: rule.score, RawText: raw}
		}
	}

	if m.embedder != nil {
		if name, sim, ok := m.embeddingLookup(normalized); ok {
			if learn {
				m.maybeLearn(name, normalized, model.MatchEmbedding, sim)
			}
			return model.SectionHeader{Canonical: name, MatchKind: model.MatchEmbedding, Score: sim, RawText: raw}
		}
	}

	return model.SectionHeader{Canonical: model.SectionUnknown, MatchKind: model.MatchUnknown, Score: 0, RawText: raw}
}

// ExactOnly checks only the exact and normalized variant lookup tiers
// — no pattern rules, no embedding recall, no learning.
// This is §4.5 signal #1 ("matches a known canonical variant, exact or
// normalized") in isolation, safe to run on every line in a column
// regardless of whether it turns out to be a header.
func (m *Matcher) ExactOnly(raw string) model.SectionHeader {
	rawFolded := strings.ToLower(strings.TrimSpace(raw))
	if name, score, ok := m.exactLookup(rawFolded); ok {
		return model.SectionHeader{Canonical: name, MatchKind: model.MatchExact, Score: score, RawText: raw}
	}

	normalized := Normalize(raw)
	if name, score, ok := m.exactLookup(normalized); ok {
		return model.SectionHeader{Canonical: name, MatchKind: model.MatchNormalized, Score: score, RawText: raw}
	}

	return model.SectionHeader{Canonical: model.SectionUnknown, MatchKind: model.MatchUnknown, Score: 0, RawText: raw}
}

func (m *Matcher) exactLookup(normalized string) (model.CanonicalName, float64, bool) {
	if normalized == "" {
		return "", 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, entry := range m.entries {
		if _, ok := entry.Variants[normalized]; ok {
			return name, 1.0, true
		}
	}
	return "", 0, false
}

func (m *Matcher) embeddingLookup(normalized string) (model.CanonicalName, float64, bool) {
	vec, err := m.embedder.Embed(normalized)
	if err != nil || len(vec) == 0 {
		return "", 0, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var best model.CanonicalName
	bestSim := -1.0
	for name, entry := range m.entries {
		if len(entry.EmbeddingCentroid) == 0 {
			continue
		}
		sim := cosineSimilarity(vec, entry.EmbeddingCentroid)
		if sim > bestSim {
			bestSim = sim
			best = name
		}
	}
	if bestSim >= m.similarityThresh {
		return best, bestSim, true
	}
	return "", 0, false
}

// maybeLearn buffers a new variant on any successful non-exact match
// at or above learnThreshold (§4.6). An exact match at score 1.0 never
// needs learning; it is already a known variant.
func (m *Matcher) maybeLearn(name model.CanonicalName, normalized string, kind model.MatchKind, score float64) {
	if kind == model.MatchExact || score < learnThreshold {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[name]
	if !ok {
		entry = model.NewSectionDatabaseEntry(name)
		m.entries[name] = entry
	}
	if _, exists := entry.Variants[normalized]; exists {
		return
	}
	entry.Variants[normalized] = struct{}{}
	entry.UsageCount++
	m.learnedCount++

	if m.embedder != nil {
		if vec, err := m.embedder.Embed(normalized); err == nil && len(vec) > 0 {
			entry.EmbeddingCentroid = runningMean(entry.EmbeddingCentroid, vec, entry.UsageCount)
		}
	}
}

// LearnVariant records an observed surface form directly, used by the
// multi-section detector (§4.6: "Multi-section detection injects each
// detected canonical name's observed surface form as a learned
// variant") without going through the match pipeline's scoring.
func (m *Matcher) LearnVariant(name model.CanonicalName, raw string) {
	normalized := Normalize(raw)
	if normalized == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[name]
	if !ok {
		entry = model.NewSectionDatabaseEntry(name)
		m.entries[name] = entry
	}
	if _, exists := entry.Variants[normalized]; exists {
		return
	}
	entry.Variants[normalized] = struct{}{}
	entry.UsageCount++
	m.learnedCount++
}

// Entries returns the matcher's buffered (mutated) snapshot, ready for
// Database.Commit.
func (m *Matcher) Entries() map[model.CanonicalName]*model.SectionDatabaseEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries
}

// LearnedCount and FalsePositives report counters for diagnostics.
func (m *Matcher) LearnedCount() int   { return m.learnedCount }
func (m *Matcher) FalsePositives() int { return m.falsePositives }

func runningMean(centroid, next []float64, n int) []float64 {
	if len(centroid) == 0 {
		return append([]float64(nil), next...)
	}
	out := make([]float64, len(centroid))
	for i := range centroid {
		var nv float64
		if i < len(next) {
			nv = next[i]
		}
		out[i] = centroid[i] + (nv-centroid[i])/float64(n)
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
