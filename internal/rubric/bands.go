package rubric

// Band is a named range of the normalized 0-100 score. Bounds are inclusive.
type Band struct {
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Contains reports whether score falls inside the band.
func (b Band) Contains(score int) bool {
	return score >= b.Min && score <= b.Max
}

var bands = []Band{
	{Min: 0, Max: 20, Name: "Unaware", Description: "No meaningful AI adoption. At risk of displacement."},
	{Min: 21, Max: 40, Name: "User", Description: "Basic AI usage. Follows instructions. Needs supervision."},
	{Min: 41, Max: 60, Name: "Practitioner", Description: "Daily productive use. Can evaluate quality. ~25% efficiency gain."},
	{Min: 61, Max: 80, Name: "Builder", Description: "Deploys reliable systems. Creates measurable business value."},
	{Min: 81, Max: 95, Name: "Architect", Description: "Advances practices. Mentors others. Trusted for critical work."},
	{Min: 96, Max: 100, Name: "Pioneer", Description: "Industry-recognized contribution. Shapes how AI is used."},
}

// Bands returns the score bands in ascending order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// BandFor returns the first band containing score. Scores outside 0-100
// resolve to the first band.
func BandFor(score int) Band {
	for _, b := range bands {
		if b.Contains(score) {
			return b
		}
	}
	return bands[0]
}

// BandNames lists band names in order.
func BandNames() []string {
	names := make([]string, len(bands))
	for i, b := range bands {
		names[i] = b.Name
	}
	return names
}
