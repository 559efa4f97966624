package search

// prefixScale is the Winkler boost per character of common prefix.
const prefixScale = 0.15

// JaroWinkler returns the similarity of a and b in [0, 1], comparing runes.
func JaroWinkler(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	j := jaro(ra, rb)

	p := 0
	for p < len(ra) && p < len(rb) && ra[p] == rb[p] {
		p++
	}

	return min(max(j+prefixScale*float64(p)*(1-j), 0), 1)
}

func jaro(a, b []rune) float64 {
	la, lb := len(a), len(b)
	switch {
	case la == 0 && lb == 0:
		return 1
	case la == 0 || lb == 0:
		return 0
	case la == 1 && lb == 1:
		if a[0] == b[0] {
			return 1
		}
		return 0
	}

	w := max(max(la, lb)/2-1, 0)

	consumed := make([]bool, lb)
	matches, transpositions := 0, 0
	prev := -1
	for i, r := range a {
		for j := max(0, i-w); j <= min(lb-1, i+w); j++ {
			if consumed[j] || b[j] != r {
				continue
			}
			consumed[j] = true
			matches++
			if j < prev {
				transpositions++
			}
			prev = j
			break
		}
	}

	if matches == 0 {
		return 0
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions))/m) / 3
}
