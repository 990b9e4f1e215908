package domain

// Polarity says whether larger values of a measure are desirable.
type Polarity string

const (
	HigherIsWorse  Polarity = "higher_is_worse"
	HigherIsBetter Polarity = "higher_is_better"
	Neutral        Polarity = "neutral"
)

// measurePolarity is keyed by the CDC PLACES measure ID and the AHRQ SDOH
// variable name. Unlisted measures are Neutral.
var measurePolarity = map[string]Polarity{
	// PLACES health outcomes and risk behaviors.
	"ACCESS2":    HigherIsWorse,
	"ARTHRITIS":  HigherIsWorse,
	"BINGE":      HigherIsWorse,
	"BPHIGH":     HigherIsWorse,
	"CANCER":     HigherIsWorse,
	"CASTHMA":    HigherIsWorse,
	"CHD":        HigherIsWorse,
	"COPD":       HigherIsWorse,
	"CSMOKING":   HigherIsWorse,
	"DIABETES":   HigherIsWorse,
	"HIGHCHOL":   HigherIsWorse,
	"KIDNEY":     HigherIsWorse,
	"LPA":        HigherIsWorse,
	"MHLTH":      HigherIsWorse,
	"OBESITY":    HigherIsWorse,
	"PHLTH":      HigherIsWorse,
	"SLEEP":      HigherIsWorse,
	"STROKE":     HigherIsWorse,
	"TEETHLOST":  HigherIsWorse,
	"DEPRESSION": HigherIsWorse,

	// PLACES prevention measures.
	"BPMED":        HigherIsBetter,
	"CHECKUP":      HigherIsBetter,
	"CHOLSCREEN":   HigherIsBetter,
	"COLON_SCREEN": HigherIsBetter,
	"COREM":        HigherIsBetter,
	"COREW":        HigherIsBetter,
	"DENTAL":       HigherIsBetter,
	"MAMMOUSE":     HigherIsBetter,
	"CERVICAL":     HigherIsBetter,

	// AHRQ SDOH county variables.
	"ACS_PCT_POV_BELOW_100":  HigherIsWorse,
	"ACS_PCT_UNEMPLOY":       HigherIsWorse,
	"ACS_PCT_UNINSURED":      HigherIsWorse,
	"ACS_PCT_NO_VEH":         HigherIsWorse,
	"ACS_PCT_LT_HS":          HigherIsWorse,
	"ACS_PCT_HH_FOOD_STMP":   HigherIsWorse,
	"ACS_PCT_DISABLE":        HigherIsWorse,
	"ACS_PCT_CROWDED_HOUSE":  HigherIsWorse,
	"ACS_MEDIAN_HH_INC":      HigherIsBetter,
	"ACS_PER_CAPITA_INC":     HigherIsBetter,
	"ACS_PCT_HEALTH_INS":     HigherIsBetter,
	"ACS_PCT_BACHELOR_DGR":   HigherIsBetter,
	"ACS_PCT_HH_INTERNET":    HigherIsBetter,
	"ACS_PCT_OWNER_HU":       HigherIsBetter,
	"ACS_PCT_HH_SMARTPHONE":  HigherIsBetter,
	"ACS_PCT_EMPLOYED":       HigherIsBetter,
	"ACS_PCT_HH_BROADBAND":   HigherIsBetter,
	"ACS_PCT_COLLEGE_ASSOC":  HigherIsBetter,
	"ACS_PCT_GRADUATE_DGR":   HigherIsBetter,
	"ACS_PCT_HH_PUB_ASSIST":  HigherIsWorse,
	"ACS_PCT_RENTER_HU_COST": HigherIsWorse,
}

// PolarityFor looks up a measure's polarity by identifier.
func PolarityFor(measureID string) Polarity {
	if p, ok := measurePolarity[measureID]; ok {
		return p
	}
	return Neutral
}

// Standard gradients. Good runs green to red as values rise; neutral runs
// light to dark blue.
var (
	GradientGoodToBad = Gradient{Start: ColorHigh, End: ColorLow}
	GradientNeutral   = Gradient{Start: RGB{R: 0xd6, G: 0xea, B: 0xf8}, End: RGB{R: 0x1b, G: 0x4f, B: 0x72}}
)

// GradientFor picks the gradient for a measure so that the "bad" end is red.
func GradientFor(measureID string) Gradient {
	switch PolarityFor(measureID) {
	case HigherIsWorse:
		return GradientGoodToBad
	case HigherIsBetter:
		return GradientGoodToBad.Reversed()
	default:
		return GradientNeutral
	}
}
