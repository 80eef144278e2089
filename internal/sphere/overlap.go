package sphere

// RemoveOverlapping drops poses whose position lies within threshold
// (world units) of an earlier kept pose, then renumbers the survivors so
// indexes stay contiguous. Greedy in sequence order, so the first pose of
// any cluster wins and the result stays deterministic.
func RemoveOverlapping(poses []Pose, threshold float64) []Pose {
	if threshold <= 0 {
		return poses
	}
	kept := make([]Pose, 0, len(poses))
	for _, p := range poses {
		tooClose := false
		for _, k := range kept {
			if p.Position.Dist(k.Position) < threshold {
				tooClose = true
				break
			}
		}
		if !tooClose {
			p.Index = len(kept)
			kept = append(kept, p)
		}
	}
	return kept
}
