package scoring

import "errors"

// SectionType selects which subset of a test a converter should score.
type SectionType string

const (
	SectionFull           SectionType = "full"
	SectionELA            SectionType = "ela"
	SectionMath           SectionType = "math"
	SectionReadingWriting SectionType = "readingwriting"
)

// ErrInvalidSection is returned when a converter is asked for a section it
// does not define (e.g. "ela" on the SAT).
var ErrInvalidSection = errors.New("invalid section")

// SectionScore is the scaled result for one section.
type SectionScore struct {
	RawScore    int `json:"raw_score"`
	ScaledScore int `json:"scaled_score"`
	MaxRaw      int `json:"max_raw"`
}

// TotalScore is the composite result across sections.
type TotalScore struct {
	Score            int    `json:"score"`
	Percentile       int    `json:"percentile"`
	PerformanceLevel string `json:"performance_level"`
}

type SHSATScores struct {
	ELA   *SectionScore `json:"ela,omitempty"`
	Math  *SectionScore `json:"math,omitempty"`
	Total int           `json:"total"`
}

type SATScores struct {
	ReadingWriting *SectionScore `json:"reading_writing,omitempty"`
	Math           *SectionScore `json:"math,omitempty"`
	Total          *TotalScore   `json:"total,omitempty"`
}

type PSATScores struct {
	ReadingWriting *SectionScore `json:"reading_writing,omitempty"`
	Math           *SectionScore `json:"math,omitempty"`
	Total          *TotalScore   `json:"total,omitempty"`
	NationalMerit  string        `json:"national_merit,omitempty"`
}

// performanceLevel walks a descending threshold ladder.
func performanceLevel(score int, thresholds []scoreBand) string {
	for _, band := range thresholds {
		if score >= band.min {
			return band.label
		}
	}
	return "Needs Improvement"
}

type scoreBand struct {
	min   int
	label string
}

var satPerformanceBands = []scoreBand{
	{1400, "Excellent"},
	{1200, "Good"},
	{1000, "Average"},
	{800, "Below Average"},
}

var psatPerformanceBands = []scoreBand{
	{1320, "Excellent"},
	{1120, "Good"},
	{920, "Average"},
	{720, "Below Average"},
}

var nationalMeritBands = []scoreBand{
	{1460, "Likely Semifinalist"},
	{1400, "Potential Semifinalist"},
	{1200, "Likely Commended"},
}

func nationalMerit(score int) string {
	for _, band := range nationalMeritBands {
		if score >= band.min {
			return band.label
		}
	}
	return "Not Qualifying"
}
