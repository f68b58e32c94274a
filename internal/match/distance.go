package match

// Distance returns the Levenshtein distance between a and b, ignoring case.
// Both strings are case folded and compared rune by rune.
func Distance(a, b string) int {
	ra := []rune(foldTitle(a))
	rb := []rune(foldTitle(b))

	// table[y][x]: edits to turn ra[:x] into rb[:y]
	table := make([][]int, len(rb)+1)
	for y := range table {
		table[y] = make([]int, len(ra)+1)
		table[y][0] = y
	}
	for x := range table[0] {
		table[0][x] = x
	}

	for y := 1; y <= len(rb); y++ {
		for x := 1; x <= len(ra); x++ {
			if ra[x-1] == rb[y-1] {
				table[y][x] = table[y-1][x-1]
				continue
			}
			table[y][x] = 1 + min(table[y][x-1], table[y-1][x], table[y-1][x-1])
		}
	}

	return table[len(rb)][len(ra)]
}
