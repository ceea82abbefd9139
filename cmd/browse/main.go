package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trip_hotel/internal/adapters/observability"
	redisad "trip_hotel/internal/adapters/redis"
	"trip_hotel/internal/adapters/searchapi"
	"trip_hotel/internal/console"
	"trip_hotel/internal/search"
	"trip_hotel/internal/session"
	"trip_hotel/internal/shared"
)

var (
	apiURL    string
	city      string
	keyword   string
	sessionID string
	lang      string
	appEnv    string
	noSession bool

	cfg shared.Config
)

var rootCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the hotel list from the terminal",
	Long: `browse shows hotels page by page from the search API.
Filters are changed with line commands; type help once it starts.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	cfg = shared.Load()
	rootCmd.Flags().StringVar(&apiURL, "api", cfg.SearchAPIURL, "search API base URL")
	rootCmd.Flags().StringVar(&city, "city", "", "initial destination city")
	rootCmd.Flags().StringVar(&keyword, "keyword", "", "initial keyword")
	rootCmd.Flags().StringVar(&sessionID, "session", cfg.SessionID, "session id for history and favorites")
	rootCmd.Flags().StringVar(&lang, "lang", "zh", "hotel name language (zh or en)")
	rootCmd.Flags().StringVar(&appEnv, "env", cfg.AppEnv, "log format: dev for console output")
	rootCmd.Flags().BoolVar(&noSession, "no-session", false, "keep history and favorites in memory only")
}

func run(cmd *cobra.Command, args []string) error {
	logger := observability.NewLoggerTo(os.Stderr, appEnv).Level(zerolog.WarnLevel)
	if appEnv == "dev" || appEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := searchapi.New(apiURL, cfg.SearchRPS)
	if err != nil {
		return err
	}

	history, favs := openSession(ctx, logger)

	filters := search.NewFilterState()
	filters.SetDestination(city)
	filters.SetKeyword(keyword)

	ctl := search.NewController(client,
		search.WithLogger(logger),
		search.WithFilters(filters),
	)
	defer ctl.Close()

	c := console.New(ctl, history, favs, cmd.OutOrStdout(),
		console.WithLogger(logger),
		console.WithLanguage(lang),
		console.WithDetails(client),
	)
	return c.Run(ctx, cmd.InOrStdin())
}

// openSession loads history and favorites from Redis, falling back to memory.
func openSession(ctx context.Context, logger zerolog.Logger) (*session.History, *session.Favorites) {
	var store session.Store
	if !noSession {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := cache.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("session store unavailable, using memory")
		} else {
			store = redisad.NewSessionStore(cache, sessionID)
		}
	}

	history, favs := session.NewHistory(store), session.NewFavorites(store)
	if err := history.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("history not loaded")
	}
	if err := favs.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("favorites not loaded")
	}
	return history, favs
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
