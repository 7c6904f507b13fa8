package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/config"
	"github.com/justestif/genrefixer/internal/genre"
	"github.com/justestif/genrefixer/internal/itunes"
	"github.com/justestif/genrefixer/internal/lastfm"
	"github.com/justestif/genrefixer/internal/logging"
	"github.com/justestif/genrefixer/internal/resolver"
	"github.com/justestif/genrefixer/internal/spotify"
	"github.com/justestif/genrefixer/internal/tags"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "genrefixer",
		Short:         "Fill grouping and genre fields from Last.fm tags.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides GENREFIXER_LOG_LEVEL")
	root.PersistentFlags().String("log-format", "", "Log format (console, json); overrides GENREFIXER_LOG_FORMAT")
	root.PersistentFlags().String("genre-table", "", "Canonical genre table file; overrides GENREFIXER_GENRE_TABLE")
	root.PersistentFlags().Int("max-tags", 0, "Maximum tags kept per Last.fm answer; overrides GENREFIXER_MAX_TAGS")
	root.PersistentFlags().Int("min-scrobs", 0, "Minimum tag popularity; overrides GENREFIXER_MIN_SCROBS")

	root.AddCommand(
		newFixCommand(),
		newLookupCommand(),
		newGenresCommand(),
		newServeCommand(),
		newImportCommand(),
	)
	return root
}

// app holds what every command needs.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	index *genre.Index
}

// loadApp reads the environment, applies flags and loads the genre table.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if v, _ := flags.GetString("genre-table"); v != "" {
		cfg.GenreTable = v
	}
	if flags.Changed("max-tags") {
		cfg.MaxTags, _ = flags.GetInt("max-tags")
	}
	if flags.Changed("min-scrobs") {
		cfg.MinScrobs, _ = flags.GetInt("min-scrobs")
	}
	if flags.Lookup("set-genre") != nil && flags.Changed("set-genre") {
		cfg.SetGenre, _ = flags.GetBool("set-genre")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	table, err := genre.LoadTable(cfg.GenreTable)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		index: genre.NewIndex(table, log.Named("genre")),
	}, nil
}

// newResolver wires the upstream clients. Spotify is added as a second
// catalog when credentials are configured and usable.
func (a *app) newResolver(ctx context.Context, concurrency int) (*resolver.Resolver, error) {
	if err := a.cfg.RequireLastFM(); err != nil {
		return nil, err
	}

	catalogs := []tags.Catalog{itunes.NewClient(a.log.Named("itunes"))}
	if a.cfg.HasSpotify() {
		tokens, err := spotify.DefaultTokenCache()
		if err != nil {
			a.log.Debug("spotify token cache unavailable", zap.Error(err))
		}
		sp, err := spotify.NewFromCredentials(ctx, a.cfg.SpotifyID, a.cfg.SpotifySecret, tokens)
		if err != nil {
			a.log.Warn("spotify catalog disabled", zap.Error(err))
		} else {
			catalogs = append(catalogs, sp)
		}
	}

	tagCfg := tags.DefaultConfig()
	tagCfg.MaxTags = a.cfg.MaxTags
	tagCfg.MinCount = a.cfg.MinScrobs

	source := tags.NewSource(
		lastfm.NewClient(&lastfm.Config{APIKey: a.cfg.LastFMAPIKey}),
		tags.WithCatalogs(catalogs...),
		tags.WithConfig(tagCfg),
		tags.WithLogger(a.log.Named("tags")),
		tags.WithConcurrency(concurrency),
	)

	return resolver.New(a.index, source, resolver.WithLogger(a.log.Named("resolver"))), nil
}
