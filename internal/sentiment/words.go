package sentiment

// buildBullishWords returns positive keywords with weights.
// Matched as substrings, so "surge" also covers "surges"/"surged".
func buildBullishWords() map[string]float64 {
	return map[string]float64{
		"surge":        1.0,
		"soar":         1.0,
		"rally":        0.95,
		"bullish":      0.95,
		"skyrocket":    1.0,
		"breakout":     0.9,
		"breakthrough": 0.9,
		"all-time high": 0.9,
		"record high":  0.9,
		"outperform":   0.85,
		"beat expectations": 0.85,
		"upgrade":      0.8,
		"jump":         0.8,
		"gain":         0.7,
		"profit":       0.7,
		"growth":       0.7,
		"boost":        0.7,
		"rebound":      0.7,
		"recover":      0.7,
		"strong":       0.6,
		"rise":         0.6,
		"climb":        0.6,
		"optimis":      0.6,
		"approval":     0.6,
		"adoption":     0.6,
		"partnership":  0.5,
		"momentum":     0.5,
		"upside":       0.5,
		"positive":     0.5,
	}
}

// buildBearishWords returns negative keywords with weights
func buildBearishWords() map[string]float64 {
	return map[string]float64{
		"crash":       1.0,
		"collapse":    1.0,
		"plunge":      1.0,
		"plummet":     0.95,
		"bearish":     0.95,
		"tumble":      0.9,
		"selloff":     0.85,
		"sell-off":    0.85,
		"panic":       0.9,
		"bankruptcy":  0.95,
		"fraud":       0.95,
		"hack":        0.9,
		"lawsuit":     0.8,
		"downgrade":   0.8,
		"recession":   0.8,
		"crisis":      0.8,
		"slump":       0.8,
		"miss expectations": 0.8,
		"drop":        0.7,
		"fall":        0.7,
		"decline":     0.7,
		"loss":        0.7,
		"warning":     0.7,
		"fear":        0.6,
		"weak":        0.6,
		"concern":     0.6,
		"uncertainty": 0.6,
		"pessimis":    0.6,
		"banned":      0.7,
		"ban on":      0.7,
		"crackdown":   0.7,
		"correction":  0.5,
		"volatil":     0.4,
		"negative":    0.5,
	}
}
