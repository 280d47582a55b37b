package xsys

func validateFileLimit(limit uint64) error {
	if limit == 0 {
		return ErrInvalidFileLimit
	}
	return nil
}

// raiseTarget 计算新的软限制：不超过 hard，不低于 cur。
func raiseTarget(cur, hard, want uint64) uint64 {
	target := min(want, hard)
	return max(target, cur)
}
