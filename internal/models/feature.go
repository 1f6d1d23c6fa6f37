package models

// FeatureLength is the wire length of a FeatureVector. Scoring models trained
// offline depend on it.
const FeatureLength = 39

type FeatureVector [FeatureLength]float64

func (vector FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureLength)
	copy(out, vector[:])
	return out
}
