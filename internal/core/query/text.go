package query

import "strings"

// Phrase matches the exact phrase against track titles.
func Phrase(title string, size int) Request {
	return Request{
		Op:   "search_phrase",
		Size: size,
		Query: Object{
			"match_phrase": Object{FieldTrackName: title},
		},
	}
}

// Partial matches titles containing any of the words of title.
func Partial(title string, size int) Request {
	return Request{
		Op:   "search_partial",
		Size: size,
		Query: Object{
			"multi_match": Object{
				"query":    title,
				"fields":   []string{FieldTrackName},
				"operator": "or",
			},
		},
	}
}

// Fuzzy matches a single term against track titles within an edit distance.
// An empty fuzziness means FuzzinessAuto. The term is lowercased because
// fuzzy queries bypass the analyzer that lowercased the indexed titles.
func Fuzzy(term, fuzziness string, size int) Request {
	if fuzziness == "" {
		fuzziness = FuzzinessAuto
	}
	return Request{
		Op:   "search_fuzzy",
		Size: size,
		Query: Object{
			"fuzzy": Object{
				FieldTrackName: Object{
					"value":     strings.ToLower(term),
					"fuzziness": fuzziness,
				},
			},
		},
	}
}
