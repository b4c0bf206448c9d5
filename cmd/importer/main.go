package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"

	"ebiblio/internal/catalog"
	"ebiblio/internal/config"
	"ebiblio/internal/search"
)

var log = logrus.New()

// Expected CSV columns:
// id,title,author,cover_url,category_id,category_title,created_at
const columns = 7

func main() {
	srcPath := flag.String("src", "", "Path to CSV book dump")
	charset := flag.String("charset", "utf-8", "Source file charset (htmlindex name, e.g. windows-1251)")
	threads := flag.Int("threads", 4, "Number of import workers")
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05", ForceColors: true,
	})

	if *srcPath == "" {
		log.Fatal("-src is required")
	}

	cfg := config.Get()
	store, err := catalog.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog store: %v", err)
	}
	defer store.Close()

	records, err := readDump(*srcPath, *charset)
	if err != nil {
		log.Fatalf("Failed to read dump: %v", err)
	}

	bar := progressbar.Default(int64(len(records)), "📥 "+*srcPath)

	var (
		wg       sync.WaitGroup
		imported int32
		failed   int32
	)
	jobs := make(chan []string)
	ctx := context.Background()
	seenCats := sync.Map{}

	for i := 0; i < *threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				if err := importRecord(ctx, store, &seenCats, rec); err != nil {
					log.WithError(err).WithField("id", rec[0]).Warn("Skipping record")
					atomic.AddInt32(&failed, 1)
				} else {
					atomic.AddInt32(&imported, 1)
				}
				_ = bar.Add(1)
			}
		}()
	}

	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	total, _ := store.CountBooks(ctx)
	log.WithFields(logrus.Fields{
		"imported": atomic.LoadInt32(&imported),
		"failed":   atomic.LoadInt32(&failed),
		"in_store": total,
	}).Info("Import complete")
}

func readDump(path, charset string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if !strings.EqualFold(charset, "utf-8") {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, err
		}
		src = enc.NewDecoder().Reader(f)
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = columns

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	// Drop a header row if present.
	if len(records) > 0 && records[0][0] == "id" {
		records = records[1:]
	}
	return records, nil
}

func importRecord(ctx context.Context, store *catalog.Store, seenCats *sync.Map, rec []string) error {
	id, title, author := rec[0], rec[1], rec[2]
	coverURL, catID, catTitle, createdAt := rec[3], rec[4], rec[5], rec[6]

	b := search.Book{
		ID:       strings.TrimSpace(id),
		Title:    strings.TrimSpace(title),
		Author:   strings.TrimSpace(author),
		CoverURL: strings.TrimSpace(coverURL),
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(createdAt)); err == nil {
		b.CreatedAt = t
	}

	if catID != "" {
		if _, done := seenCats.LoadOrStore(catID, true); !done {
			if err := store.UpsertCategory(ctx, search.Category{ID: catID, Title: catTitle}); err != nil {
				return err
			}
		}
	}
	return store.UpsertBook(ctx, b, catID)
}
