package query

// SimilarCandidates is the per-shard candidate pool of the approximate KNN
// search. Larger pools trade latency for recall.
const SimilarCandidates = 1000

// Similar finds the nearest neighbours of vector in audio-feature space.
// It asks for size+1 hits because the source track is normally its own
// nearest neighbour and is dropped by the caller.
func Similar(vector []float64, size int) Request {
	k := size + 1
	numCandidates := SimilarCandidates
	if numCandidates < k {
		numCandidates = k
	}

	return Request{
		Op:   "similar",
		Size: k,
		KNN: Object{
			"field":          FieldAudioVector,
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
	}
}
