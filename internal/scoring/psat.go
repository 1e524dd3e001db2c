package scoring

const (
	psatMinTotal = 320
	psatMaxTotal = 1520
)

// ScorePSAT converts raw PSAT section counts to scaled scores. Section sizes
// match the SAT but the scale runs 160-760, and the full-test composite also
// carries a National Merit qualification band.
func ScorePSAT(rwRaw, mathRaw int, section SectionType) (*PSATScores, error) {
	switch section {
	case SectionFull, "":
		rw := satSection(psatReadingWritingTable, rwRaw, satRWMaxRaw)
		math := satSection(psatMathTable, mathRaw, satMathMaxRaw)
		total := clampTotal(rw.ScaledScore+math.ScaledScore, psatMinTotal, psatMaxTotal)
		return &PSATScores{
			ReadingWriting: rw,
			Math:           math,
			Total: &TotalScore{
				Score:            total,
				Percentile:       lookupPercentile(psatPercentiles, total, psatMinTotal),
				PerformanceLevel: performanceLevel(total, psatPerformanceBands),
			},
			NationalMerit: nationalMerit(total),
		}, nil
	case SectionReadingWriting:
		return &PSATScores{ReadingWriting: satSection(psatReadingWritingTable, rwRaw, satRWMaxRaw)}, nil
	case SectionMath:
		return &PSATScores{Math: satSection(psatMathTable, mathRaw, satMathMaxRaw)}, nil
	default:
		return nil, ErrInvalidSection
	}
}
