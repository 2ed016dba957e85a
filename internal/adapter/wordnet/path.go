package wordnet

// PathSimilarity scores two synsets by the shortest path connecting them
// through a common hypernym: 1/(length+1). Synsets with no common ancestor
// score 0.
func (db *Database) PathSimilarity(a, b string) float64 {
	if a == b {
		if _, ok := db.synsets[a]; ok {
			return 1.0
		}
		return 0
	}

	ancA := db.hypernymDistances(a)
	ancB := db.hypernymDistances(b)
	if len(ancA) == 0 || len(ancB) == 0 {
		return 0
	}

	best := -1
	for node, da := range ancA {
		if dist, ok := ancB[node]; ok {
			if d := da + dist; best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	return 1 / float64(best+1)
}

// hypernymDistances returns the minimum number of hypernym edges from id to
// each of its ancestors, id itself included at 0. Results are cached.
func (db *Database) hypernymDistances(id string) map[string]int {
	if cached, ok := db.ancestors.Get(id); ok {
		return cached
	}
	if _, ok := db.synsets[id]; !ok {
		return nil
	}

	dist := map[string]int{id: 0}
	frontier := []string{id}
	for depth := 1; len(frontier) > 0; depth++ {
		var next []string
		for _, node := range frontier {
			for _, parent := range db.synsets[node].Hypernyms {
				if _, seen := dist[parent]; seen {
					continue
				}
				dist[parent] = depth
				next = append(next, parent)
			}
		}
		frontier = next
	}

	db.ancestors.Add(id, dist)
	return dist
}
