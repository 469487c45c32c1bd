package index

// Weights sets the relative influence of each searchable field. Only the
// ratios matter; Build normalises them to sum to one.
type Weights struct {
	Name        float64
	Description float64
	Category    float64
	Tags        float64
	URL         float64
}

// DefaultWeights ranks name matches highest and url/tag matches lowest.
func DefaultWeights() Weights {
	return Weights{
		Name:        0.35,
		Description: 0.25,
		Category:    0.20,
		Tags:        0.10,
		URL:         0.10,
	}
}

func (w Weights) sum() float64 {
	return w.Name + w.Description + w.Category + w.Tags + w.URL
}

// normalized returns the weights in field order, scaled to sum to one.
// Non-positive totals fall back to the defaults.
func (w Weights) normalized() [fieldCount]float64 {
	total := w.sum()
	if total <= 0 {
		w = DefaultWeights()
		total = w.sum()
	}
	return [fieldCount]float64{
		w.Name / total,
		w.Description / total,
		w.Category / total,
		w.Tags / total,
		w.URL / total,
	}
}

// Options tunes approximate matching.
type Options struct {
	// Threshold is the worst per-field score still accepted as a match,
	// on a scale from 0 (perfect) to 1 (anything).
	Threshold float64

	// MinMatchCharLength is the shortest run of matched characters that
	// counts. Runs shorter than this are ignored.
	MinMatchCharLength int

	// Location is where in a field a match is expected to start.
	Location int

	// Distance is how far from Location a match may drift before its
	// score is fully penalised. Zero means only exact-location matches.
	Distance int

	// IgnoreLocation scores matches purely on errors, wherever they occur.
	IgnoreLocation bool

	Weights Weights
}

// DefaultOptions returns the directory's matching configuration.
func DefaultOptions() Options {
	return Options{
		Threshold:          0.3,
		MinMatchCharLength: 2,
		Location:           0,
		Distance:           100,
		Weights:            DefaultWeights(),
	}
}
