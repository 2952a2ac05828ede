package semantic

// Label pairs a tag name with the natural-language description embedded to
// build its centroid. Descriptions never change within a run, so centroids
// are built once per process.
type Label struct {
	Name        string
	Description string
}

// DefaultTheme is assigned when no theme clears the similarity floor.
const DefaultTheme = "comfort"

// themeFloor is the minimum cosine similarity for a theme tag to apply.
const themeFloor = 0.25

const (
	maxThemes = 3
	maxMoods  = 2
)

// Themes is the fixed 15-entry theme vocabulary.
var Themes = []Label{
	{"comfort", "assurance of God's care and relief from worry and burdens"},
	{"hope", "expectation of God's future goodness and promises"},
	{"trust", "placing confidence in God rather than self or fear"},
	{"wisdom", "guidance, understanding, prudence, counsel for living"},
	{"forgiveness", "pardoning sin, mercy, letting go of offense"},
	{"love", "love of God and neighbor, compassion, kindness"},
	{"joy", "gladness, rejoicing, praise, thanksgiving"},
	{"strength", "courage, perseverance, endurance through trials"},
	{"guidance", "direction, path, lamp, shepherding and leading"},
	{"peace", "rest, calm, stillness, absence of turmoil"},
	{"repentance", "turning from sin, confession, renewal"},
	{"healing", "restoration, recovery, God's care in sickness"},
	{"generosity", "giving, sharing, kindness to others in need"},
	{"patience", "waiting, longsuffering, self-control, restraint"},
	{"perseverance", "steadfastness under pressure, not giving up"},
}

// Moods is the fixed 9-entry mood vocabulary.
var Moods = []Label{
	{"anxious", "worry, fear, burdened, need reassurance"},
	{"tired", "weary, exhausted, need strength and rest"},
	{"grateful", "thankful, praise, appreciation"},
	{"hopeful", "expectation of good, trust in future"},
	{"sad", "sorrowful, downcast, lament"},
	{"lonely", "alone, abandoned, need presence"},
	{"guilty", "ashamed, confession, repentance"},
	{"angry", "wrath, frustration, need gentleness"},
	{"bereaved", "grief, loss, mourning"},
}

// Tones is the fixed 5-entry tone vocabulary; distributions over it preserve
// this order.
var Tones = []Label{
	{"calming", "gentle reassurance, peace, rest, comfort"},
	{"encouraging", "hope, promise, joy, uplift"},
	{"corrective", "rebuke, warning, command to change"},
	{"celebratory", "praise, thanksgiving, rejoicing"},
	{"contemplative", "wisdom, meditate, ponder, understanding"},
}

// Dayparts is the fixed 4-entry daypart vocabulary; distributions over it
// preserve this order.
var Dayparts = []Label{
	{"morning", "dawn, new mercies, light, beginning"},
	{"day", "labor, walking, sunshine, activity"},
	{"evening", "rest from labor, sunset, reflection"},
	{"night", "darkness, fear, protection, rest, peace in the night"},
}

// Prior distributions used on the degraded path when no real fingerprint is
// available.
var (
	daypartPrior = []float64{0.3, 0.4, 0.2, 0.1}
	tonePrior    = []float64{0.4, 0.3, 0.1, 0.1, 0.1}
)

// text returns the string that is embedded to form the label's centroid.
func (l Label) text() string {
	return l.Name + ": " + l.Description
}
