package model

// Series maps a date key to a recorded reading. A nil reading means the date
// was recorded without a value; a missing key means the date was never recorded.
type Series map[string]*float64

// Ingredient is a named, date-indexed data series referenced by a recipe formula.
type Ingredient struct {
	Name   string `json:"name" yaml:"name"`
	Values Series `json:"values" yaml:"values"`
}

// Reading returns a pointer to v, for building Series literals.
func Reading(v float64) *float64 {
	return &v
}

// Lookup returns the reading at dateKey and whether the key exists at all.
func (s Series) Lookup(dateKey string) (reading *float64, recorded bool) {
	reading, recorded = s[dateKey]
	return reading, recorded
}
