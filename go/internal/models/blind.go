package models

// BlindLevel is the stake pair for one round of a tournament.
type BlindLevel struct {
	Small int `json:"small" yaml:"small"`
	Big   int `json:"big" yaml:"big"`
}

// DefaultBlindLevels returns the stock tournament structure.
func DefaultBlindLevels() []BlindLevel {
	levels := make([]BlindLevel, 0, 32)
	appendRange := func(from, to, step int) {
		for small := from; small <= to; small += step {
			levels = append(levels, BlindLevel{Small: small, Big: small * 2})
		}
	}
	appendRange(5, 30, 5)
	appendRange(40, 100, 10)
	appendRange(125, 250, 25)
	appendRange(300, 800, 50)
	return levels
}
