package search

import "testing"

func books(ids ...string) []Book {
	out := make([]Book, 0, len(ids))
	for _, id := range ids {
		out = append(out, Book{ID: id, Title: "book-" + id})
	}
	return out
}

func cats(ids ...string) []Category {
	out := make([]Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, Category{ID: id, Title: "cat-" + id})
	}
	return out
}

func TestAggregateDedupFirstWins(t *testing.T) {
	live := books("42", "7")
	catalog := books("42", "9")

	got := Aggregate(live, catalog, nil, TabBooks)

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	hits := 0
	for _, r := range got {
		if r.ID() == "42" {
			hits++
			if r.Source != SourceLive {
				t.Errorf("duplicate id 42 should be live-sourced, got %s", r.Source)
			}
		}
	}
	if hits != 1 {
		t.Errorf("expected exactly one entry with id 42, got %d", hits)
	}
}

func TestAggregateOrdering(t *testing.T) {
	got := Aggregate(books("1", "2"), books("3"), cats("c1"), TabAll)

	want := []string{"1", "2", "3", "c1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID() != id {
			t.Errorf("position %d: expected id %s, got %s", i, id, got[i].ID())
		}
	}
	if got[3].Kind != KindCategory {
		t.Errorf("last entry should be a category, got %s", got[3].Kind)
	}
}

func TestAggregateTabPartitions(t *testing.T) {
	live, catalog, categories := books("1"), books("2"), cats("c1", "c2")

	if got := Aggregate(live, catalog, categories, TabBooks); len(got) != 2 {
		t.Errorf("books tab: expected 2, got %d", len(got))
	}
	if got := Aggregate(live, catalog, categories, TabCategories); len(got) != 2 {
		t.Errorf("categories tab: expected 2, got %d", len(got))
	}
	if got := Aggregate(live, catalog, categories, TabAll); len(got) != 4 {
		t.Errorf("all tab: expected 4, got %d", len(got))
	}
}

func TestAggregateNoDuplicateIdentity(t *testing.T) {
	got := Aggregate(books("1", "1", "2"), books("2", "1", "3"), cats("1"), TabAll)

	seen := make(map[[2]string]bool)
	for _, r := range got {
		key := [2]string{string(r.Kind), r.ID()}
		if r.Kind == KindBook && seen[key] {
			t.Errorf("duplicate (%s, %s) in aggregated output", r.Kind, r.ID())
		}
		seen[key] = true
	}
	// Book id "1" and category id "1" may coexist: different identity space.
	if !seen[[2]string{"book", "1"}] || !seen[[2]string{"category", "1"}] {
		t.Error("expected both book 1 and category 1 to survive")
	}
}

func TestAggregateCategoryProvenance(t *testing.T) {
	got := Aggregate(nil, nil, cats("c1"), TabCategories)
	if len(got) != 1 || got[0].Source != SourceLive {
		t.Errorf("categories come from the live search call, got source %s", got[0].Source)
	}
}

func TestPartitionInvertsAggregate(t *testing.T) {
	live, catalog, categories := books("1", "2"), books("2", "3"), cats("c1")
	agg := Aggregate(live, catalog, categories, TabAll)

	gotLive, gotCatalog, gotCats := Partition(agg)

	// "2" was deduped in favor of its live copy, so it comes back live-side.
	if len(gotLive) != 2 || gotLive[0].ID != "1" || gotLive[1].ID != "2" {
		t.Errorf("live books = %+v", gotLive)
	}
	if len(gotCatalog) != 1 || gotCatalog[0].ID != "3" {
		t.Errorf("catalog books = %+v", gotCatalog)
	}
	if len(gotCats) != 1 || gotCats[0].ID != "c1" {
		t.Errorf("categories = %+v", gotCats)
	}

	// Re-aggregating the partition reproduces the same sequence.
	again := Aggregate(gotLive, gotCatalog, gotCats, TabAll)
	if len(again) != len(agg) {
		t.Fatalf("round trip changed length: %d vs %d", len(again), len(agg))
	}
	for i := range agg {
		if agg[i].ID() != again[i].ID() || agg[i].Source != again[i].Source {
			t.Errorf("position %d: (%s,%s) vs (%s,%s)",
				i, agg[i].ID(), agg[i].Source, again[i].ID(), again[i].Source)
		}
	}
}

func TestCountsConsistency(t *testing.T) {
	tests := []struct {
		name       string
		live, cat  []Book
		categories []Category
	}{
		{"Empty everything", nil, nil, nil},
		{"Only live", books("1", "2"), nil, nil},
		{"Overlapping sources", books("1", "2"), books("2", "3"), cats("c1")},
		{"Only categories", nil, nil, cats("c1", "c2", "c3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Counts(tt.live, tt.cat, tt.categories)
			if c.All != c.Books+c.Categories {
				t.Errorf("All (%d) != Books (%d) + Categories (%d)", c.All, c.Books, c.Categories)
			}
			shown := Aggregate(tt.live, tt.cat, tt.categories, TabBooks)
			if c.Books != len(shown) {
				t.Errorf("books badge %d does not match books tab size %d", c.Books, len(shown))
			}
		})
	}
}

func TestAggregateEmptyInputs(t *testing.T) {
	got := Aggregate(nil, nil, nil, TabAll)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
	if c := Counts(nil, nil, nil); c.All != 0 || c.Books != 0 || c.Categories != 0 {
		t.Errorf("expected zero counts, got %+v", c)
	}
}

func TestParseTab(t *testing.T) {
	if ParseTab("books") != TabBooks || ParseTab("categories") != TabCategories {
		t.Error("known tab names should round-trip")
	}
	if ParseTab("") != TabAll || ParseTab("bogus") != TabAll {
		t.Error("unknown tab names should default to all")
	}
}
