package scoring

// Conversion tables are fixed, process-wide constants: index = raw correct
// count, value = published scaled score. Raw scores are clamped into the
// table range before lookup, so a raw above maxRaw maps to the ceiling entry
// and a negative raw maps to the family floor.

// SHSAT per-section table, raw 0-57 -> scaled 0-365. Both sections (ELA and
// Math) use the same curve; the composite is the plain sum, at most 730.
var shsatSectionTable = []int{
	0, 8, 16, 24, 32, 40, 48, 56, 64, 72, 80,
	86, 92, 98, 104, 110, 116, 122, 128, 134, 140,
	145, 150, 155, 160, 165, 170, 175, 180, 185, 190,
	196, 201, 207, 213, 218, 224, 229, 235,
	240, 245, 251, 256, 261, 266,
	271, 276, 282, 287, 292, 297,
	307, 317, 327, 336, 346, 356, 365,
}

// SAT Math, raw 0-44 -> scaled 200-800.
var satMathTable = []int{
	200, 210, 230, 240, 250, 270, 280, 300, 310, 320,
	340, 350, 360, 380, 390, 400, 420, 430, 450, 460,
	470, 490, 500, 510, 530, 540, 550, 570, 580, 600,
	610, 620, 640, 650, 660, 680, 690, 700, 720, 730,
	750, 760, 770, 790, 800,
}

// SAT Reading & Writing, raw 0-54 -> scaled 200-800.
var satReadingWritingTable = []int{
	200, 210, 220, 230, 240, 260, 270, 280, 290, 300,
	310, 320, 330, 340, 360, 370, 380, 390, 400, 410,
	420, 430, 440, 460, 470, 480, 490, 500, 510, 520,
	530, 540, 560, 570, 580, 590, 600, 610, 620, 630,
	640, 660, 670, 680, 690, 700, 710, 720, 730, 740,
	760, 770, 780, 790, 800,
}

// PSAT Math, raw 0-44 -> scaled 160-760.
var psatMathTable = []int{
	160, 170, 190, 200, 210, 230, 240, 260, 270, 280,
	300, 310, 320, 340, 350, 360, 380, 390, 410, 420,
	430, 450, 460, 470, 490, 500, 510, 530, 540, 560,
	570, 580, 600, 610, 620, 640, 650, 660, 680, 690,
	710, 720, 730, 750, 760,
}

// PSAT Reading & Writing, raw 0-54 -> scaled 160-760.
var psatReadingWritingTable = []int{
	160, 170, 180, 190, 200, 220, 230, 240, 250, 260,
	270, 280, 290, 300, 320, 330, 340, 350, 360, 370,
	380, 390, 400, 420, 430, 440, 450, 460, 470, 480,
	490, 500, 520, 530, 540, 550, 560, 570, 580, 590,
	600, 620, 630, 640, 650, 660, 670, 680, 690, 700,
	720, 730, 740, 750, 760,
}

// Total-score percentile distributions. Lookup walks down from the score in
// steps of 10 and returns the first hit, so a score between entries inherits
// the next-lower decile. Intentional coarse binning.
var satPercentiles = map[int]int{
	1600: 99, 1550: 99, 1500: 98, 1450: 96, 1400: 94,
	1350: 91, 1300: 87, 1250: 81, 1200: 74, 1150: 67,
	1100: 58, 1050: 49, 1000: 40, 950: 31, 900: 23,
	850: 16, 800: 10, 750: 6, 700: 3, 650: 2,
	600: 1, 550: 1, 500: 1, 450: 1, 400: 1,
}

var psatPercentiles = map[int]int{
	1520: 99, 1470: 99, 1420: 97, 1370: 95, 1320: 93,
	1270: 89, 1220: 84, 1170: 78, 1120: 70, 1070: 62,
	1020: 53, 970: 44, 920: 35, 870: 26, 820: 18,
	770: 12, 720: 7, 670: 4, 620: 2, 570: 1,
	520: 1, 470: 1, 420: 1, 370: 1, 320: 1,
}

// convertScaled clamps raw into [0, len(table)-1] and returns the table entry.
func convertScaled(table []int, raw int) int {
	if raw < 0 {
		raw = 0
	}
	if max := len(table) - 1; raw > max {
		raw = max
	}
	return table[raw]
}

// lookupPercentile scans from score down to floor in steps of 10, returning
// the first table hit, defaulting to 1.
func lookupPercentile(table map[int]int, score, floor int) int {
	for s := score; s >= floor; s -= 10 {
		if p, ok := table[s]; ok {
			return p
		}
	}
	return 1
}

func clampTotal(total, min, max int) int {
	if total < min {
		return min
	}
	if total > max {
		return max
	}
	return total
}
