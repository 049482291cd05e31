package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wordlebot/wordlebot/internal/api"
	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/db"
)

func openHistory(cfg *config.Config) (*db.HistoryDatabase, error) {
	if err := checkValidation(config.ValidateServices(cfg)); err != nil {
		return nil, err
	}
	app := cfg.GetApplicationData()
	if !app.History.Enabled {
		return nil, fmt.Errorf("game history is disabled in %s", cfg.Path())
	}
	return db.NewHistoryDatabase(app.History.Path)
}

// cmdHistory lists recorded games.
func (c *CLI) cmdHistory(args []string) error {
	fs := c.newFlagSet("history")
	configPath := fs.String("c", "", "config file")
	limit := fs.Int("n", 20, "number of games to show (0 shows all)")
	verbose := fs.Bool("v", false, "debug logging")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return usagef("history takes no arguments")
	}

	cfg, err := loadConfig(*configPath, *verbose)
	if err != nil {
		return err
	}
	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer history.Close()

	games, err := history.ListGames(*limit)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	stats, err := history.Stats()
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	renderGames(c.stdout, games)
	renderStats(c.stdout, stats)
	return nil
}

// cmdShow prints one game with its guesses.
func (c *CLI) cmdShow(args []string) error {
	fs := c.newFlagSet("show")
	configPath := fs.String("c", "", "config file")
	verbose := fs.Bool("v", false, "debug logging")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usagef("show needs exactly one <game-id>")
	}
	id, err := strconv.ParseInt(positional[0], 10, 64)
	if err != nil {
		return usagef("invalid game id %q", positional[0])
	}

	cfg, err := loadConfig(*configPath, *verbose)
	if err != nil {
		return err
	}
	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer history.Close()

	game, err := history.GetGame(id)
	if err != nil {
		return fmt.Errorf("game %d: %w", id, err)
	}

	renderGame(c.stdout, game)
	return nil
}

// cmdServe runs the history API until ctx is cancelled.
func (c *CLI) cmdServe(ctx context.Context, args []string) error {
	fs := c.newFlagSet("serve")
	configPath := fs.String("c", "", "config file")
	addr := fs.String("addr", "", "listen address (default :8080)")
	verbose := fs.Bool("v", false, "debug logging")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return usagef("serve takes no arguments")
	}

	cfg, err := loadConfig(*configPath, *verbose)
	if err != nil {
		return err
	}
	if *addr != "" {
		app := cfg.GetApplicationData()
		app.API.Addr = *addr
		cfg.SetApplicationData(app)
	}

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer history.Close()

	server := api.NewServer(cfg.GetApplicationData().API, history, *verbose)
	return server.Start(ctx)
}
