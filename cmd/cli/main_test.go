package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ebiblio/internal/search"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		liveBooks := []search.Book{{ID: "42", Title: "Dune"}}
		catalogBooks := []search.Book{{ID: "7", Title: "Hyperion"}}
		categories := []search.Category{{ID: "c1", Title: "Fiction"}}
		resp := search.Response{
			Query:   r.URL.Query().Get("q"),
			Tab:     search.TabAll,
			Results: search.Aggregate(liveBooks, catalogBooks, categories, search.TabAll),
			Counts:  search.Counts(liveBooks, catalogBooks, categories),
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	return newShell(srv.URL, &buf), &buf
}

func TestCategoryQuerySwitchesTab(t *testing.T) {
	sh, buf := newTestShell(t)

	sh.handle("category:Fiction")

	if got := sh.sess.Snapshot().ActiveTab; got != search.TabCategories {
		t.Fatalf("category query left the active tab on %s", got)
	}
	out := buf.String()
	if !strings.Contains(out, "[Tab]: categories") {
		t.Errorf("output does not show the switched tab:\n%s", out)
	}
	// The categories tab shows only categories.
	if strings.Contains(out, "Dune") || !strings.Contains(out, "Fiction") {
		t.Errorf("categories tab rendered book rows:\n%s", out)
	}
}

func TestTitleQuerySwitchesTab(t *testing.T) {
	sh, _ := newTestShell(t)
	sh.handle("title:Dune")
	if got := sh.sess.Snapshot().ActiveTab; got != search.TabBooks {
		t.Errorf("title query left the active tab on %s", got)
	}
}

func TestGeneralQueryKeepsTab(t *testing.T) {
	sh, _ := newTestShell(t)
	sh.handle("category:Fiction")
	sh.handle("dune") // general must not switch back
	if got := sh.sess.Snapshot().ActiveTab; got != search.TabCategories {
		t.Errorf("general query moved the tab to %s", got)
	}
}

func TestTabCommandSelectsTab(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.handle("dune")
	buf.Reset()

	sh.handle(":tab books")

	if got := sh.sess.Snapshot().ActiveTab; got != search.TabBooks {
		t.Fatalf(":tab books set tab to %s", got)
	}
	out := buf.String()
	if !strings.Contains(out, "Active tab: books") {
		t.Errorf("missing tab confirmation:\n%s", out)
	}
	// Re-partitioned from the last fetch without a new request.
	if !strings.Contains(out, "Dune") || strings.Contains(out, "Fiction") {
		t.Errorf("books tab rendered wrong rows:\n%s", out)
	}
}
