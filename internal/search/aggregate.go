package search

// Aggregate merges a live-search result list and the locally cached catalog
// listing into one deduplicated, tab-partitioned sequence.
//
// Books tab: live results then catalog results, tagged by origin, deduplicated
// by id keeping the first occurrence — a live entry therefore shadows a catalog
// duplicate of the same id. Categories tab: mapped as-is (category ids are
// unique at the source). All tab: deduplicated books first, then categories.
// Insertion order is preserved throughout. Pure; empty inputs yield an empty
// (non-nil) slice.
func Aggregate(liveBooks, catalogBooks []Book, categories []Category, tab Tab) []Result {
	out := make([]Result, 0, len(liveBooks)+len(catalogBooks)+len(categories))

	if tab == TabAll || tab == TabBooks {
		out = append(out, dedupBooks(liveBooks, catalogBooks)...)
	}
	if tab == TabAll || tab == TabCategories {
		// Categories arrive from the live search call, so they carry its
		// provenance tag.
		for i := range categories {
			out = append(out, Result{Kind: KindCategory, Source: SourceLive, Category: &categories[i]})
		}
	}
	return out
}

// Partition splits an aggregated sequence back into its origin lists — the
// inverse of Aggregate over the all tab. Clients that fetch once and
// re-partition locally on tab changes use it to feed a session.
func Partition(results []Result) (liveBooks, catalogBooks []Book, categories []Category) {
	for _, r := range results {
		switch {
		case r.Kind == KindCategory && r.Category != nil:
			categories = append(categories, *r.Category)
		case r.Book != nil && r.Source == SourceCatalog:
			catalogBooks = append(catalogBooks, *r.Book)
		case r.Book != nil:
			liveBooks = append(liveBooks, *r.Book)
		}
	}
	return liveBooks, catalogBooks, categories
}

// Counts projects the badge count for every tab. It recomputes the same
// deduplication as Aggregate so badges match what a tab would actually show;
// All == Books + Categories holds for any input since book and category ids
// live in separate identity spaces.
func Counts(liveBooks, catalogBooks []Book, categories []Category) TabCounts {
	books := len(dedupBooks(liveBooks, catalogBooks))
	return TabCounts{
		Books:      books,
		Categories: len(categories),
		All:        books + len(categories),
	}
}

func dedupBooks(liveBooks, catalogBooks []Book) []Result {
	seen := make(map[string]struct{}, len(liveBooks)+len(catalogBooks))
	out := make([]Result, 0, len(liveBooks)+len(catalogBooks))

	appendFrom := func(books []Book, src Source) {
		for i := range books {
			id := books[i].ID
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, Result{Kind: KindBook, Source: src, Book: &books[i]})
		}
	}
	appendFrom(liveBooks, SourceLive)
	appendFrom(catalogBooks, SourceCatalog)
	return out
}
