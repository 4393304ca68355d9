package game

// approach moves cur toward target by at most maxStep.
func approach(cur, target, maxStep float64) float64 {
	if maxStep <= 0 {
		return cur
	}
	switch {
	case target > cur+maxStep:
		return cur + maxStep
	case target < cur-maxStep:
		return cur - maxStep
	default:
		return target
	}
}
