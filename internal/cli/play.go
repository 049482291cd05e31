package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/connector"
	"github.com/wordlebot/wordlebot/internal/db"
	"github.com/wordlebot/wordlebot/internal/events"
	"github.com/wordlebot/wordlebot/internal/game"
	"github.com/wordlebot/wordlebot/internal/solver"
	"github.com/wordlebot/wordlebot/internal/telemetry"
	"github.com/wordlebot/wordlebot/internal/words"
)

// cmdPlay plays one game and prints the flag.
func (c *CLI) cmdPlay(ctx context.Context, args []string) error {
	fs := c.newFlagSet("play")
	configPath := fs.String("c", "", "config file (default config/config.json)")
	port := fs.Int("p", 0, "server port (default 27993, or 27994 with -s)")
	useTLS := fs.Bool("s", false, "connect with TLS")
	wordsFile := fs.String("w", "", "word list file (default: built-in list)")
	strategy := fs.String("strategy", "", "guess selection strategy: first or random")
	readTimeout := fs.Int("timeout", 0, "seconds to wait for each server reply (0 waits forever)")
	verbose := fs.Bool("v", false, "debug logging")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return usagef("play needs <hostname> and <username>, got %d arguments", len(positional))
	}

	cfg, err := loadConfig(*configPath, *verbose)
	if err != nil {
		return err
	}

	gd := cfg.GetGameData()
	gd.Host = positional[0]
	gd.Username = positional[1]
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			gd.Port = *port
		case "s":
			gd.TLS = *useTLS
		case "w":
			gd.WordsFile = *wordsFile
		case "strategy":
			gd.Strategy = *strategy
		case "timeout":
			gd.ReadTimeoutSec = *readTimeout
		}
	})
	cfg.SetGameData(gd)

	if err := checkValidation(config.Validate(cfg)); err != nil {
		return err
	}

	flagValue, err := play(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, flagValue)
	return nil
}

// play wires the dictionary, the observers and the client for one game.
func play(ctx context.Context, cfg *config.Config) (string, error) {
	gd := cfg.GetGameData()
	app := cfg.GetApplicationData()

	dict, err := loadDictionary(gd)
	if err != nil {
		return "", err
	}

	selector, err := solver.NewSelector(gd.Strategy)
	if err != nil {
		return "", err
	}

	bus := events.NewEventBus()
	defer bus.Stop()

	if app.History.Enabled {
		history, err := db.NewHistoryDatabase(app.History.Path)
		if err != nil {
			log.Warn().Err(err).Msg("game history disabled")
		} else {
			defer history.Close()
			db.NewRecorder(history).Register(bus)
		}
	}

	if app.MQTT.Enabled {
		mqttHandler, err := telemetry.NewMQTTHandler(app.MQTT)
		if err == nil {
			err = mqttHandler.Connect(ctx)
		}
		if err != nil {
			log.Warn().Err(err).Msg("MQTT telemetry disabled")
		} else {
			defer mqttHandler.Close()
			mqttHandler.Register(bus)
		}
	}

	controller := game.NewController(game.ControllerConfig{
		Words:    dict.Words(),
		Selector: selector,
		Strategy: gd.Strategy,
		Server:   gd.Addr(),
		Bus:      bus,
	})

	client := game.NewClient(game.ClientConfig{
		Endpoint: connector.Endpoint{
			Host:        gd.Host,
			Port:        gd.EffectivePort(),
			TLS:         gd.TLS,
			DialTimeout: time.Duration(gd.DialTimeoutSec) * time.Second,
		},
		Username:    gd.Username,
		ReadTimeout: time.Duration(gd.ReadTimeoutSec) * time.Second,
	}, controller)

	log.Info().
		Str("server", gd.Addr()).
		Bool("tls", gd.TLS).
		Str("username", gd.Username).
		Str("strategy", gd.Strategy).
		Int("words", dict.Len()).
		Msg("starting game")

	return client.Run(ctx)
}

func loadDictionary(gd config.GameData) (*words.Dictionary, error) {
	if gd.WordsFile == "" {
		if gd.WordLength != words.DefaultLength {
			return nil, fmt.Errorf("built-in word list has %d-letter words; word_length %d needs a words file",
				words.DefaultLength, gd.WordLength)
		}
		return words.Default()
	}
	return words.Load(gd.WordsFile, gd.WordLength)
}
