package scoring

const (
	shsatMaxRaw   = 57
	shsatMaxTotal = 730
)

// ScoreSHSAT converts raw SHSAT section counts to scaled scores. The SHSAT is
// scored per section on a shared 0-365 curve; the composite is the sum of the
// two section scaled scores. Section-only variants ("ela", "math") score just
// that section and report it as the total.
func ScoreSHSAT(elaRaw, mathRaw int, section SectionType) (*SHSATScores, error) {
	switch section {
	case SectionFull, "":
		ela := shsatSection(elaRaw)
		math := shsatSection(mathRaw)
		return &SHSATScores{
			ELA:   ela,
			Math:  math,
			Total: clampTotal(ela.ScaledScore+math.ScaledScore, 0, shsatMaxTotal),
		}, nil
	case SectionELA:
		ela := shsatSection(elaRaw)
		return &SHSATScores{ELA: ela, Total: ela.ScaledScore}, nil
	case SectionMath:
		math := shsatSection(mathRaw)
		return &SHSATScores{Math: math, Total: math.ScaledScore}, nil
	default:
		return nil, ErrInvalidSection
	}
}

func shsatSection(raw int) *SectionScore {
	return &SectionScore{
		RawScore:    raw,
		ScaledScore: convertScaled(shsatSectionTable, raw),
		MaxRaw:      shsatMaxRaw,
	}
}
