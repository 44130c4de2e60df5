// Package app wires configuration, storage, probes, the download engine and
// the catalog into one unit the command line drives.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/NamanBalaji/vidvault/internal/catalog"
	"github.com/NamanBalaji/vidvault/internal/config"
	"github.com/NamanBalaji/vidvault/internal/coordinator"
	"github.com/NamanBalaji/vidvault/internal/engine"
	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/probe"
	"github.com/NamanBalaji/vidvault/internal/repository"
	"github.com/NamanBalaji/vidvault/internal/transfer"
	"github.com/NamanBalaji/vidvault/internal/video"
	httpPkg "github.com/NamanBalaji/vidvault/pkg/http"
)

type App struct {
	Config      *config.Config
	Store       *repository.BboltStore
	Client      *httpPkg.Client
	Disk        probe.ResourceProbe
	Network     probe.NetworkProbe
	Engine      *engine.Engine
	Coordinator *coordinator.Coordinator
	Catalog     *catalog.Service
}

type Option func(*options)

type options struct {
	opener  transfer.Opener
	disk    probe.ResourceProbe
	network probe.NetworkProbe
}

// WithOpener replaces the grab-backed transfer opener.
func WithOpener(open transfer.Opener) Option {
	return func(o *options) {
		o.opener = open
	}
}

// WithProbes replaces the statfs and HTTP probes.
func WithProbes(disk probe.ResourceProbe, network probe.NetworkProbe) Option {
	return func(o *options) {
		o.disk = disk
		o.network = network
	}
}

// New opens the database and builds every component. The caller must Close
// the app.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := repository.NewBboltStore(cfg.DBPath())
	if err != nil {
		return nil, err
	}

	client := httpPkg.NewClient(httpPkg.WithRateLimit(cfg.RequestsPerSecond, 1))

	if o.opener == nil {
		o.opener = transfer.NewGrabOpener(client, cfg.ProgressInterval)
	}

	if o.disk == nil {
		o.disk = probe.NewDiskProbe(cfg.DownloadDir)
	}

	if o.network == nil {
		o.network = probe.NewHTTPProbe(client, cfg.ProbeURL)
	}

	coord := coordinator.New(store, nil, o.disk, o.network, coordinator.WithMinFreeBytes(cfg.MinFreeBytes))
	eng := engine.New(cfg.DownloadDir, o.opener, coord.HandleEvent)
	coord.SetEngine(eng)
	coord.Load()

	logger.Infof("vidvault ready: downloads in %s, data in %s", cfg.DownloadDir, cfg.DataDir)

	return &App{
		Config:      cfg,
		Store:       store,
		Client:      client,
		Disk:        o.disk,
		Network:     o.network,
		Engine:      eng,
		Coordinator: coord,
		Catalog:     catalog.NewService(catalog.NewHTTPFetcher(client, cfg.CatalogURL), store, o.network, coord),
	}, nil
}

// Background is the app leaving the foreground: every active download is
// paused.
func (a *App) Background(ctx context.Context) error {
	logger.Infof("Entering background")
	return a.Coordinator.PauseAll(ctx)
}

// Foreground resumes paused downloads and re-checks free space.
func (a *App) Foreground(ctx context.Context) error {
	logger.Infof("Entering foreground")

	err := a.Coordinator.ResumeAll(ctx)

	if a.Coordinator.LowOnSpace(ctx) {
		info := a.Coordinator.StorageInfo(ctx)
		logger.Warnf("Low on storage: %.2f GB free", info.FreeGB())
	}

	return err
}

// FindEntry looks id up in the cached catalog, then in the downloaded
// records. A title is accepted in place of an id.
func (a *App) FindEntry(id string) (video.Entry, error) {
	for _, e := range repository.LoadCatalog(a.Store) {
		if e.ID == id || strings.EqualFold(e.Title, id) {
			return e, nil
		}
	}

	for _, r := range a.Coordinator.Downloaded() {
		if r.ID == id || strings.EqualFold(r.Title, id) {
			return video.Entry{
				ID:           r.ID,
				Title:        r.Title,
				Description:  r.Description,
				Author:       r.Author,
				Duration:     r.Duration,
				Views:        r.Views,
				ThumbnailURL: r.ThumbnailURL,
			}, nil
		}
	}

	return video.Entry{}, errors.Wrap("lookup", id, errors.ErrNotFound)
}

// Close closes the database. In-flight transfers are not waited for.
func (a *App) Close() error {
	a.Coordinator.Close()

	return a.Store.Close()
}
