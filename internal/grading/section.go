package grading

import (
	"strings"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/scoring"
)

// Section is a grading-time bucket for raw tallies. The verbal section is
// called "ela" on the SHSAT and "readingwriting" on the SAT/PSAT; both map to
// SectionVerbal here and the scorer picks the family name back out.
type Section string

const (
	SectionVerbal Section = "verbal"
	SectionMath   Section = "math"
)

// SHSAT ordinals: 1-57 ELA, 58-114 Math.
const (
	shsatELALast  = 57
	shsatMathLast = 114
)

// SAT/PSAT ordinals: 1-54 Reading & Writing, 55-98 Math.
const (
	satRWLast   = 54
	satMathLast = 98
)

// classifier assigns a question to a section, or reports no match.
type classifier func(q models.Question) (Section, bool)

// shsatClassifiers builds the layered SHSAT chain: explicit section-type
// parameter first, then category keyword, then ordinal range. First match
// wins. Section-only practice sets don't always carry reliable question
// numbers, which is why the ordinal rule comes last.
func shsatClassifiers(explicit scoring.SectionType) []classifier {
	return []classifier{
		classifyExplicit(explicit),
		classifySHSATCategory,
		classifySHSATOrdinal,
	}
}

// satClassifiers covers SAT and PSAT, which share section boundaries and
// assign purely by ordinal position.
func satClassifiers() []classifier {
	return []classifier{classifySATOrdinal}
}

func classifyExplicit(section scoring.SectionType) classifier {
	return func(models.Question) (Section, bool) {
		switch section {
		case scoring.SectionELA, scoring.SectionReadingWriting:
			return SectionVerbal, true
		case scoring.SectionMath:
			return SectionMath, true
		default:
			return "", false
		}
	}
}

func classifySHSATCategory(q models.Question) (Section, bool) {
	category := strings.ToLower(q.Category)
	switch {
	case strings.Contains(category, "math"):
		return SectionMath, true
	case strings.Contains(category, "ela"),
		strings.Contains(category, "english"),
		strings.Contains(category, "reading"),
		strings.Contains(category, "revising"):
		return SectionVerbal, true
	}
	return "", false
}

func classifySHSATOrdinal(q models.Question) (Section, bool) {
	switch {
	case q.Position >= 1 && q.Position <= shsatELALast:
		return SectionVerbal, true
	case q.Position > shsatELALast && q.Position <= shsatMathLast:
		return SectionMath, true
	}
	return "", false
}

func classifySATOrdinal(q models.Question) (Section, bool) {
	switch {
	case q.Position >= 1 && q.Position <= satRWLast:
		return SectionVerbal, true
	case q.Position > satRWLast && q.Position <= satMathLast:
		return SectionMath, true
	}
	return "", false
}

// classify runs the chain; questions no strategy claims are excluded from
// section tallies entirely.
func classify(chain []classifier, q models.Question) (Section, bool) {
	for _, fn := range chain {
		if section, ok := fn(q); ok {
			return section, true
		}
	}
	return "", false
}

// classifiersFor picks the chain for a test family. State tests have no
// section partition.
func classifiersFor(testType models.TestType, explicit scoring.SectionType) []classifier {
	switch testType {
	case models.TestSHSAT:
		return shsatClassifiers(explicit)
	case models.TestSAT, models.TestPSAT:
		return satClassifiers()
	default:
		return nil
	}
}
