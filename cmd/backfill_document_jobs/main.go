package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/trainforge/trainforge-backend/internal/app"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
)

// Resubmits document processing for assets whose extraction never finished.
// Useful after a provider outage or when new providers come online.
func main() {
	assetIDs := flag.String("assets", "", "comma-separated asset ids to resubmit (default: every unprocessed asset)")
	dryRun := flag.Bool("dry-run", false, "print planned submissions without sending them")
	limit := flag.Int("limit", 0, "cap the number of assets processed")
	flag.Parse()

	if err := run(*assetIDs, *dryRun, *limit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(assetIDs string, dryRun bool, limit int) error {
	application, err := app.New()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	rows, err := loadAssets(dbc, application, assetIDs, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no matching assets found")
		return nil
	}

	submitted := 0
	for _, row := range rows {
		if row.AiAvailable {
			continue
		}
		if dryRun {
			fmt.Printf("would submit asset %d (%s)\n", row.ID, row.Filename)
			continue
		}
		job, err := application.Services.Document.SubmitAsset(ctx, row.ID, 0)
		if err != nil {
			fmt.Printf("submit asset %d: %v\n", row.ID, err)
			continue
		}
		fmt.Printf("submitted asset %d as %s job %s\n", row.ID, job.Provider, job.ProviderJobID)
		submitted++
	}
	fmt.Printf("done: %d submitted, %d scanned\n", submitted, len(rows))
	return nil
}

// loadAssets resolves the flag into rows: explicit ids when given, otherwise
// every asset still waiting on extraction. Malformed ids are skipped.
func loadAssets(dbc dbctx.Context, application *app.App, assetIDs string, limit int) ([]*types.Asset, error) {
	assetIDs = strings.TrimSpace(assetIDs)
	if assetIDs == "" {
		rows, err := application.Repos.Asset.ListUnprocessed(dbc, limit)
		if err != nil {
			return nil, fmt.Errorf("list unprocessed assets: %w", err)
		}
		return rows, nil
	}

	var rows []*types.Asset
	for _, part := range strings.Split(assetIDs, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		row, err := application.Repos.Asset.GetByID(dbc, uint(id))
		if err != nil {
			return nil, fmt.Errorf("load asset %d: %w", id, err)
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
