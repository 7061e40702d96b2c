package experiment

// SelectVariant draws an index from weights using seed. The draw is
// r = (seed mod 1000)/1000 * total and the first index whose running sum
// reaches r wins. Empty or all-zero weights select index 0. Negative weights
// count as zero.
func SelectVariant(weights []int, seed int32) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if len(weights) == 0 || total == 0 {
		return 0
	}

	m := int(seed % 1000)
	if m < 0 {
		m += 1000
	}
	r := float64(m) / 1000 * float64(total)

	acc := 0
	for i, w := range weights {
		if w > 0 {
			acc += w
		}
		if float64(acc) >= r {
			return i
		}
	}
	return 0
}
