// Copyright 2025 RnD Map contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	rndmap "github.com/ionplatox-blip/rnd-map-moscow-2025"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/ingestion"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/reindex"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/search"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/semantic"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "rndmap",
		Usage: "Search engine for the Moscow R&D organizations map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank organizations against a query",
				ArgsUsage: "[query...]",
				Action:    searchCommand,
				Flags: append(sessionFlags(),
					&cli.StringFlag{
						Name:  "scope",
						Usage: "Restrict matching (all, organizations, projects, ip)",
						Value: "all",
					},
					&cli.StringFlag{
						Name:  "funding",
						Usage: "Funding tier filter (all, small, medium, large)",
						Value: "all",
					},
					&cli.BoolFlag{
						Name:  "highlights",
						Usage: "Print the map highlight set",
					},
				),
			},
			{
				Name:      "show",
				Usage:     "Show one organization with its ranked project and IP lists",
				ArgsUsage: "ogrn",
				Action:    showCommand,
				Flags: append(sessionFlags(),
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query to rank the lists against",
					},
					&cli.StringFlag{
						Name:  "pin",
						Usage: "Registration number or name to pin at the head of its list",
					},
				),
			},
			{
				Name:      "semantic",
				Usage:     "Query the remote semantic search service",
				ArgsUsage: "query...",
				Action:    semanticCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "service",
						Usage: "Semantic search service base URL",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to request",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "rewrite",
						Usage: "Let the service rewrite the query",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "rerank",
						Usage: "Let the service rerank results",
						Value: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Abort the request after this long",
						Value: 60 * time.Second,
					},
				},
			},
			{
				Name:   "warm",
				Usage:  "Prefetch organization details into a local cache",
				Action: warmCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cache",
						Aliases:  []string{"c"},
						Usage:    "Path to the cache directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "data",
						Usage: "Dataset host base URL",
						Value: "http://localhost:8000",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of concurrent detail fetches",
						Value: 4,
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "Detail fetches per second",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "burst",
						Usage: "Fetch burst size",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Warm only the first N organizations by funding (0 = all)",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the text index from cached organization details",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cache",
						Aliases:  []string{"c"},
						Usage:    "Path to the cache directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Organizations indexed per store write",
						Value: reindex.DefaultBatchSize,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// sessionFlags are shared by the commands that assemble a full session.
func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "data",
			Usage: "Dataset host base URL",
			Value: "http://localhost:8000",
		},
		&cli.StringFlag{
			Name:    "cache",
			Aliases: []string{"c"},
			Usage:   "Path to the cache directory (empty = in-memory)",
		},
	}
}

func newSession(c *cli.Context) (*rndmap.Session, error) {
	opts := []rndmap.SessionOption{
		rndmap.WithDataBaseURL(c.String("data")),
	}
	if path := c.String("cache"); path != "" {
		opts = append(opts, rndmap.WithCachePath(path))
	}
	return rndmap.NewSession(opts...)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	scope, err := core.ParseScope(c.String("scope"))
	if err != nil {
		return err
	}
	tier, err := core.ParseFundingTier(c.String("funding"))
	if err != nil {
		return err
	}

	session, err := newSession(c)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	ctx := context.Background()
	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	session.ToggleScope(scope)
	session.SetFundingTier(tier)
	session.CommitQuery(query)

	ranking := session.Ranking()
	fmt.Printf("Found %d organizations\n", len(ranking.Organizations))
	for i, org := range ranking.Organizations {
		line := fmt.Sprintf("%d: %s %s", i+1, org.OGRN, displayName(org))
		if score, ok := ranking.Scores[org.OGRN]; ok {
			line += fmt.Sprintf(" [%.1f]", score)
		}
		if reason, ok := ranking.Reasons[org.OGRN]; ok {
			line += " (" + describeReason(reason) + ")"
		}
		fmt.Println(line)
	}

	if c.Bool("highlights") {
		fmt.Printf("Highlighted: %s\n", strings.Join(session.Highlights(), ", "))
	}
	return nil
}

func showCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one OGRN argument")
	}
	ogrn := c.Args().First()

	session, err := newSession(c)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	ctx := context.Background()
	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	session.CommitQuery(c.String("query"))
	detail, err := session.SelectPinned(ctx, ogrn, c.String("pin"))
	if err != nil {
		return fmt.Errorf("failed to load organization %s: %w", ogrn, err)
	}

	view := session.DetailView()

	fmt.Printf("%s (%s)\n", detail.Name, detail.OGRN)
	if detail.ShortName != "" {
		fmt.Printf("Short name: %s\n", detail.ShortName)
	}
	fmt.Printf("Funding: %.0f thousand rubles, %d projects, %d IP assets\n",
		detail.TotalFunding, detail.ProjectCount, detail.RIDCount)

	fmt.Printf("\nProjects (%d):\n", len(view.Projects))
	for i, project := range view.Projects {
		mark := matchMark(view, project.Name, project.RegistrationNumber)
		year := core.YearOf(project.StageStartDate)
		fmt.Printf("%d:%s %s %s", i+1, mark, project.RegistrationNumber, project.Name)
		if project.Status != "" || year > 0 {
			fmt.Printf(" [%s %d]", project.Status, year)
		}
		fmt.Println()
	}

	fmt.Printf("\nIP assets (%d):\n", len(view.RIDs))
	for i, asset := range view.RIDs {
		mark := matchMark(view, asset.Name, asset.RegistrationNumber)
		fmt.Printf("%d:%s %s %s [%s %d]\n", i+1, mark, asset.RegistrationNumber,
			asset.Name, asset.RIDType, core.YearOf(asset.CreatedDate))
	}
	return nil
}

func semanticCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	cfgOpts := []semantic.ConfigOption{
		semantic.WithTopK(c.Int("top-k")),
		semantic.WithRewrite(c.Bool("rewrite")),
		semantic.WithRerank(c.Bool("rerank")),
		semantic.WithRequestTimeout(c.Duration("timeout")),
	}
	if service := c.String("service"); service != "" {
		cfgOpts = append(cfgOpts, semantic.WithBaseURL(service))
	}

	client, err := semantic.NewClient(semantic.NewConfig(cfgOpts...))
	if err != nil {
		return fmt.Errorf("failed to create semantic client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	resp, err := client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("semantic search failed: %w", err)
	}

	if resp.RewrittenQuery != "" && resp.RewrittenQuery != query {
		fmt.Printf("Query rewritten to: %s\n", resp.RewrittenQuery)
	}
	fmt.Printf("Found %d results\n", len(resp.Results))
	for i, result := range resp.Results {
		fmt.Printf("%d: %s - %s (%s) [%.3f]\n", i+1, result.Title,
			result.CenterName, result.Year, result.Score)
		if result.WhyMatched != "" {
			fmt.Printf("   %s\n", result.WhyMatched)
		}
	}
	return nil
}

func warmCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("cache"), false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer backend.Close()

	source, err := ingestion.NewDatasetClient(c.String("data"))
	if err != nil {
		return err
	}

	loader, err := ingestion.NewLoader(source,
		badger.NewOrganizationRepository(backend),
		badger.NewDetailRepository(backend),
		badger.NewTextIndexRepository(backend),
		badger.NewSnapshotRepository(backend),
		ingestion.WithPoolSize(c.Int("concurrency")),
		ingestion.WithRateLimit(c.Float64("rate"), c.Int("burst")),
	)
	if err != nil {
		return err
	}
	defer loader.Release()

	result, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	ogrns := make([]string, 0, len(result.Organizations))
	for _, org := range result.Organizations {
		ogrns = append(ogrns, org.OGRN)
	}
	if top := c.Int("top"); top > 0 && top < len(ogrns) {
		ogrns = ogrns[:top]
	}

	fmt.Fprintf(os.Stderr, "Dataset: %s\n", c.String("data"))
	fmt.Fprintf(os.Stderr, "Cache: %s\n", c.String("cache"))
	fmt.Fprintf(os.Stderr, "Warming %d organizations\n\n", len(ogrns))

	stats, err := loader.WarmDetails(ctx, ogrns)
	if err != nil {
		return fmt.Errorf("warm-up failed: %w", err)
	}

	fmt.Printf("Fetched %d, skipped %d, failed %d\n", stats.Fetched, stats.Skipped, stats.Failed)
	return nil
}

func reindexCommand(c *cli.Context) error {
	backend, err := badger.OpenBackend(c.String("cache"), false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer backend.Close()

	config := &reindex.Config{BatchSize: c.Int("batch-size")}
	indexer := reindex.NewIndexer(
		badger.NewDetailRepository(backend),
		badger.NewTextIndexRepository(backend),
		config, os.Stderr)

	stats, err := indexer.Run(context.Background())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Printf("Indexed %d organizations: %d project texts, %d IP texts\n",
		stats.Organizations, stats.Projects, stats.RIDs)
	return nil
}

func displayName(org *core.Organization) string {
	if org.ShortName != "" {
		return org.ShortName
	}
	return org.Name
}

func describeReason(reason core.MatchReason) string {
	desc := reason.Kind.String()
	if reason.Detail != "" {
		desc += ": " + reason.Detail
	}
	if reason.Count > 0 {
		desc += fmt.Sprintf(", %d records", reason.Count)
	}
	return desc
}

func matchMark(view *search.DetailRanking, name, registrationNumber string) string {
	if view.Matched[name] || view.Matched[registrationNumber] {
		return " *"
	}
	return ""
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
