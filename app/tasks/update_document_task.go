package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/shelfcard/app/cfg"
	"github.com/lysyi3m/shelfcard/app/document"
	"github.com/lysyi3m/shelfcard/app/feed"
	"github.com/lysyi3m/shelfcard/app/pace"
	"github.com/lysyi3m/shelfcard/app/progress"
	"github.com/lysyi3m/shelfcard/app/render"
)

type UpdateDocumentTask struct {
	Task
	cfg      *cfg.Cfg
	client   *feed.Client
	parser   *feed.Parser
	resolver *progress.Resolver
	renderer *render.Renderer
	patcher  *document.Patcher
	out      io.Writer
	now      func() time.Time
}

// NewUpdateDocumentTask wires one run over cfg.Document. out receives the
// patched document in dry-run mode.
func NewUpdateDocumentTask(c *cfg.Cfg, client *feed.Client, parser *feed.Parser, resolver *progress.Resolver, renderer *render.Renderer, patcher *document.Patcher, out io.Writer) *UpdateDocumentTask {
	return &UpdateDocumentTask{
		Task:     NewTask(TaskTypeUpdateDocument, c.Document),
		cfg:      c,
		client:   client,
		parser:   parser,
		resolver: resolver,
		renderer: renderer,
		patcher:  patcher,
		out:      out,
		now:      time.Now,
	}
}

func (t *UpdateDocumentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	original, err := document.Read(t.Document)
	if err != nil {
		return err
	}

	currentShelf, readShelf := t.fetchShelves(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}

	now := t.now()
	resolution := t.resolver.Run(ctx, original, currentShelf.First())
	layout := t.cfg.Layout

	card := render.Card{Progress: resolution, Now: now}
	if readShelf != nil {
		if velocity, ok := pace.Estimate(readShelf.Items); ok {
			percent, known := resolution.Percent()
			eta := pace.EstimateETA(velocity, t.cfg.NominalPages, percent, known)
			card.Velocity = &velocity
			card.ETA = &eta
		} else {
			slog.Debug("Not enough dated books for velocity", "shelf", readShelf.Name)
		}

		if layout.WindowDays > 0 {
			card.WindowDays = layout.WindowDays
			card.WindowCount = pace.WindowCount(readShelf.Items, now, time.Duration(layout.WindowDays)*24*time.Hour)
		}
	}

	regions := []document.Region{
		{Tag: layout.Regions.Card, Body: t.renderer.ReadingCard(card)},
		{Tag: layout.Regions.LastUpdated, Body: t.renderer.LastUpdated(now)},
	}
	if currentShelf != nil {
		regions = append(regions, document.Region{Tag: layout.Regions.CurrentlyReading, Body: t.renderer.CurrentlyReading(currentShelf.Items)})
	}
	if readShelf != nil {
		regions = append(regions, document.Region{Tag: layout.Regions.RecentlyRead, Body: t.renderer.RecentlyRead(readShelf.Items, layout.RecentLimit)})
	}

	content, applied := t.patcher.Apply(original, regions)
	if len(applied) == 0 {
		slog.Warn("No regions found in document", "document", t.Document)
	}

	changed := false
	if t.cfg.DryRun {
		if _, err := io.WriteString(t.out, content); err != nil {
			return fmt.Errorf("failed to print document: %w", err)
		}
	} else {
		changed, err = document.Write(t.Document, original, content)
		if err != nil {
			return err
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"id", t.GetID(),
		"document", t.Document,
		"duration", t.GetDuration(),
		"progress", resolution.String(),
		"regions", len(applied),
		"changed", changed,
		"dry_run", t.cfg.DryRun)

	return nil
}

// fetchShelves downloads both shelves concurrently. A shelf that cannot be
// fetched or parsed comes back nil.
func (t *UpdateDocumentTask) fetchShelves(ctx context.Context) (*feed.Shelf, *feed.Shelf) {
	var current, read *feed.Shelf

	var g errgroup.Group
	g.Go(func() error {
		current = t.fetchShelf(ctx, t.cfg.CurrentShelf)
		return nil
	})
	g.Go(func() error {
		read = t.fetchShelf(ctx, t.cfg.ReadShelf)
		return nil
	})
	_ = g.Wait()

	return current, read
}

func (t *UpdateDocumentTask) fetchShelf(ctx context.Context, name string) *feed.Shelf {
	shelfURL := feed.ShelfURL(t.cfg.FeedURLTemplate, t.cfg.UserID, name)

	data, err := t.client.Fetch(ctx, shelfURL)
	if err != nil {
		slog.Warn("Shelf feed unavailable", "shelf", name, "error", err)
		return nil
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		slog.Warn("Shelf feed unusable", "shelf", name, "error", err)
		return nil
	}

	slog.Debug("Shelf fetched", "shelf", name, "items", len(items))
	return &feed.Shelf{Name: name, Metadata: metadata, Items: items}
}
