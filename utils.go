package pdflayout

import (
	"math"
	"sort"
	"unicode"
)

// calculateMedian returns the median of values, 0 when empty.
func calculateMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateStdDev returns the population standard deviation of values.
func calculateStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := average(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// calculateBaseline estimates the baseline of a word, just above the descenders.
func calculateBaseline(word enrichedWord) float64 {
	return word.Box.Y1 - word.FontSize*0.15
}

// calculateXHeight estimates the height of the word's lowercase letters.
func calculateXHeight(word enrichedWord) float64 {
	for _, r := range word.Text {
		if unicode.IsLower(r) {
			return word.Box.Height() * 0.7
		}
	}
	return word.FontSize * 0.5
}

// quantizeAngle rounds an angle to the nearest multiple of step degrees.
func quantizeAngle(angle, step float64) float64 {
	return math.Round(angle/step) * step
}

// normalizeAngle maps an angle in degrees to [0, 360).
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// isVerticalAngle reports whether text at angle degrees runs up or down the page.
func isVerticalAngle(angle float64) bool {
	angle = normalizeAngle(angle)
	return (angle >= 45 && angle < 135) || (angle >= 225 && angle < 315)
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
