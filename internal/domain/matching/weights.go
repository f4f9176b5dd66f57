package matching

// Weights defines the fraction of the total match score allocated to each
// component. The defaults sum to 1.0, so a total score always lies in [0, 1].
type Weights struct {
	Ranking   float64
	Grades    float64
	Statement float64
	Location  float64
	WorkMode  float64
}

// WeightsConfig allows overriding individual default weights.
// Zero values leave the corresponding default in place.
type WeightsConfig struct {
	Ranking   float64
	Grades    float64
	Statement float64
	Location  float64
	WorkMode  float64
}

// DefaultWeights returns the standard component weights:
// ranking 0.30, grades 0.30, statement 0.20, location 0.10, work mode 0.10.
func DefaultWeights() Weights {
	return Weights{
		Ranking:   0.30,
		Grades:    0.30,
		Statement: 0.20,
		Location:  0.10,
		WorkMode:  0.10,
	}
}

// NewWeights returns the default weights with any non-zero overrides from
// the given config applied.
func NewWeights(config WeightsConfig) Weights {
	w := DefaultWeights()

	if config.Ranking > 0 {
		w.Ranking = config.Ranking
	}
	if config.Grades > 0 {
		w.Grades = config.Grades
	}
	if config.Statement > 0 {
		w.Statement = config.Statement
	}
	if config.Location > 0 {
		w.Location = config.Location
	}
	if config.WorkMode > 0 {
		w.WorkMode = config.WorkMode
	}

	return w
}

// Sum returns the total of all component weights.
func (w Weights) Sum() float64 {
	return w.Ranking + w.Grades + w.Statement + w.Location + w.WorkMode
}
