package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"ebiblio/internal/auth"
	"ebiblio/internal/backend"
	"ebiblio/internal/catalog"
	"ebiblio/internal/config"
	"ebiblio/internal/delivery"
	"ebiblio/internal/logger"
	"ebiblio/internal/middleware"
	"ebiblio/internal/query"
	"ebiblio/internal/search"
)

// provider glues the live backend client and the local catalog store into
// the single collaborator the search service expects.
type provider struct {
	live  *backend.Client
	store *catalog.Store
}

func (p provider) Search(ctx context.Context, term string, mode query.Mode) ([]search.Book, []search.Category, error) {
	return p.live.Search(ctx, term, mode)
}

func (p provider) ListCatalog(ctx context.Context, f search.CatalogFilter) ([]search.Book, error) {
	return p.store.List(ctx, f)
}

func main() {
	cfg := config.Get()
	log := logrus.StandardLogger()
	logger.SetDebug(cfg.Gateway.Debug)

	store, err := catalog.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open catalog store: %v", err)
	}
	defer store.Close()

	mgr, err := auth.Init(cfg.Auth.UsersFile)
	if err != nil {
		log.Fatalf("failed to init auth manager: %v", err)
	}
	defer mgr.Close()

	unsub := mgr.Subscribe(func(u *auth.User) {
		if u == nil {
			log.Info("auth: logged out")
			return
		}
		log.WithField("user", u.Email).Info("auth: logged in")
	})
	defer unsub()

	live := backend.New(cfg.Backend, log)

	srv := &delivery.Server{
		Log:    log,
		Search: search.New(provider{live: live, store: store}),
		Store:  store,
		Auth:   mgr,
	}

	handler := middleware.CORS(
		middleware.Trace(
			middleware.RequestLogger(log)(srv.Routes())))

	addr := cfg.Gateway.Address()
	log.Infof("📚 Gateway started on http://%s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("failed to start gateway: %v", err)
	}
}
