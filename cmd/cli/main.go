package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"ebiblio/internal/config"
	"ebiblio/internal/search"
)

// shell holds the REPL state: one search session owning the active tab and
// the staleness token for in-flight fetches.
type shell struct {
	gatewayURL string
	client     *http.Client
	sess       *search.Session
	out        io.Writer
}

func newShell(gatewayURL string, out io.Writer) *shell {
	return &shell{
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		sess:       search.NewSession(),
		out:        out,
	}
}

func main() {
	cfg := config.Get()
	sh := newShell(cfg.CLI.GatewayURL, os.Stdout)

	if len(os.Args) > 1 {
		sh.handle(strings.Join(os.Args[1:], " "))
		return
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.CLI.HistoryFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.CLI.HistoryFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("Ebiblio Interactive Shell")
	fmt.Println("Modes: plain text, \"quoted phrase\", title:..., category:...")
	fmt.Println("Commands: :tab all|books|categories, exit")
	for {
		input, err := line.Prompt("ebiblio> ")
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return
		}
		line.AppendHistory(input)
		sh.handle(input)
	}
}

// handle processes one line of input: a :tab command re-partitions the last
// results for the chosen tab, anything else runs a search through the session.
func (s *shell) handle(input string) {
	if tab, ok := strings.CutPrefix(input, ":tab "); ok {
		s.sess.TabSelected(search.ParseTab(strings.TrimSpace(tab)))
		st := s.sess.Snapshot()
		fmt.Fprintf(s.out, "Active tab: %s\n", st.ActiveTab)
		s.render(st.Results)
		return
	}
	s.search(input)
}

// search routes the query through the session: classification may switch the
// active tab (category: → categories, title: → books), and the issued token
// makes sure a fetch that lost the race to a newer query is dropped.
func (s *shell) search(q string) {
	start := time.Now()
	_, _, token := s.sess.QueryChanged(q)

	// Fetch everything once; tab partitioning happens locally in the session.
	apiURL := fmt.Sprintf("%s/search?q=%s&tab=%s", s.gatewayURL, url.QueryEscape(q), search.TabAll)
	resp, err := s.client.Get(apiURL)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var res search.Response
	if err := json.Unmarshal(body, &res); err != nil {
		fmt.Fprintf(s.out, "API Error: %s\n", string(body))
		return
	}

	liveBooks, catalogBooks, categories := search.Partition(res.Results)
	if !s.sess.ResultsArrived(token, liveBooks, catalogBooks, categories) {
		return // superseded by a newer query
	}

	st := s.sess.Snapshot()
	elapsed := time.Since(start)

	fmt.Fprintf(s.out, "\n[Mode]: %s  [Term]: %s  [Tab]: %s\n", res.Mode, res.Term, st.ActiveTab)
	fmt.Fprintf(s.out, "[Tabs]: all=%d books=%d categories=%d\n", st.Counts.All, st.Counts.Books, st.Counts.Categories)
	fmt.Fprintf(s.out, "[Trace]: %s\n", resp.Header.Get("X-Trace-ID"))
	if res.Warning != "" {
		fmt.Fprintf(s.out, "[Warning]: %s\n", res.Warning)
	}
	s.render(st.Results)
	fmt.Fprintf(s.out, "\n⏱ Search took: %v\n\n", elapsed)
}

func (s *shell) render(results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(s.out, "No results found.")
		return
	}
	fmt.Fprintf(s.out, "%-10s | %-8s | %-8s | %-30s\n", "ID", "Kind", "Source", "Title")
	fmt.Fprintln(s.out, strings.Repeat("-", 64))
	for _, r := range results {
		title := ""
		switch {
		case r.Book != nil:
			title = r.Book.Title
		case r.Category != nil:
			title = r.Category.Title
		}
		fmt.Fprintf(s.out, "%-10s | %-8s | %-8s | %-30s\n", r.ID(), r.Kind, r.Source, title)
	}
}
