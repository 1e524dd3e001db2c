package scoring

const (
	satMathMaxRaw = 44
	satRWMaxRaw   = 54
	satMinTotal   = 400
	satMaxTotal   = 1600
)

// ScoreSAT converts raw SAT section counts to scaled scores. The full test
// yields both sections plus a composite with percentile and performance
// level; single-section variants yield just that section.
func ScoreSAT(rwRaw, mathRaw int, section SectionType) (*SATScores, error) {
	switch section {
	case SectionFull, "":
		rw := satSection(satReadingWritingTable, rwRaw, satRWMaxRaw)
		math := satSection(satMathTable, mathRaw, satMathMaxRaw)
		total := clampTotal(rw.ScaledScore+math.ScaledScore, satMinTotal, satMaxTotal)
		return &SATScores{
			ReadingWriting: rw,
			Math:           math,
			Total: &TotalScore{
				Score:            total,
				Percentile:       lookupPercentile(satPercentiles, total, satMinTotal),
				PerformanceLevel: performanceLevel(total, satPerformanceBands),
			},
		}, nil
	case SectionReadingWriting:
		return &SATScores{ReadingWriting: satSection(satReadingWritingTable, rwRaw, satRWMaxRaw)}, nil
	case SectionMath:
		return &SATScores{Math: satSection(satMathTable, mathRaw, satMathMaxRaw)}, nil
	default:
		return nil, ErrInvalidSection
	}
}

func satSection(table []int, raw, maxRaw int) *SectionScore {
	return &SectionScore{
		RawScore:    raw,
		ScaledScore: convertScaled(table, raw),
		MaxRaw:      maxRaw,
	}
}
