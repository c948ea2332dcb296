package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"

	"gridsnake/audio"
	"gridsnake/config"
	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/ui"
	"gridsnake/ui/desktop"
	"gridsnake/ui/terminal"
	"gridsnake/ui/web"
)

var (
	cfg       config.Config
	logOutput io.Writer = os.Stdout
	appLogger game.Logger
	loop      *game.Loop
	screen    tcell.Screen
)

func newLogger(name, color string) game.Logger {
	l, err := logger.New(name, color, logOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Creating %s logger: %v\n", name, err)
		os.Exit(1)
	}
	return l
}

func initConfig() {
	configLogger, _ := logger.New("CONFIG", config.ColorYellow, os.Stderr)
	var err error
	cfg, err = config.Load(os.Args[1:], configLogger)
	if err != nil {
		configLogger.Error(err.Error())
		os.Exit(2)
	}
}

// initLogOutput moves logs to a file while the terminal front-end owns the screen.
func initLogOutput() func() {
	if cfg.UI != config.UITerminal {
		return func() {}
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Opening log file %s: %v\n", cfg.LogFile, err)
		os.Exit(1)
	}
	logOutput = f
	return func() { _ = f.Close() }
}

func initScreen() {
	s, err := tcell.NewScreen()
	if err == nil {
		err = s.Init()
	}
	if err != nil {
		appLogger.Error(fmt.Sprintf("Initializing terminal: %v", err))
		os.Exit(1)
	}
	screen = s
	appLogger.Info("Terminal initialized")
}

// gameGrid sizes the board from the terminal or from the configured viewport.
func gameGrid() (types.Grid, error) {
	if screen != nil {
		return terminal.GridFor(screen)
	}
	return types.GridFromViewport(cfg.ViewportWidth, cfg.ViewportHeight, cfg.CellSize, cfg.CellSize), nil
}

func initLoop() {
	policy, err := manager.ParsePlacementPolicy(cfg.FoodPolicy)
	if err != nil {
		appLogger.Error(err.Error())
		os.Exit(2)
	}
	grid, err := gameGrid()
	if err != nil {
		// Restore the terminal so the message is visible.
		if screen != nil {
			screen.Fini()
		}
		appLogger.Error(err.Error())
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	start := types.Cell{X: cfg.StartX, Y: cfg.StartY}
	if !grid.Contains(start) {
		start = types.Cell{X: grid.Width / 2, Y: grid.Height / 2}
		appLogger.Warning(fmt.Sprintf("Start cell (%d,%d) is off the %dx%d grid, using %s",
			cfg.StartX, cfg.StartY, grid.Width, grid.Height, start))
	}

	var gen manager.CellGenerator
	if cfg.Seed != 0 {
		gen = manager.NewRandGenerator(cfg.Seed)
	}

	l, err := game.NewLoop(game.LoopConfig{
		Factory: func() (*game.Game, error) {
			return game.New(game.Options{
				Grid:      grid,
				Start:     start,
				Direction: types.Right,
				Generator: gen,
				Policy:    policy,
			})
		},
		Interval:   cfg.TickInterval,
		Logger:     newLogger("LOOP", config.ColorBlue),
		Scoreboard: manager.NewScoreboard(),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game loop: %v", err))
		os.Exit(1)
	}
	loop = l
	appLogger.Info(fmt.Sprintf("Game loop initialized: %dx%d grid, %s per tick, %s food",
		grid.Width, grid.Height, cfg.TickInterval, policy))
}

// driver wraps the loop with the audio watcher when sound is enabled.
func driver() ui.Driver {
	if !cfg.Audio {
		return loop
	}
	sink, err := audio.NewOtoSink(0.5)
	if err != nil {
		appLogger.Warning(fmt.Sprintf("Audio disabled: %v", err))
		return loop
	}
	appLogger.Info("Audio initialized")
	return ui.Tap(loop, audio.NewWatcher(sink).Observe)
}

func main() {
	initConfig()
	closeLog := initLogOutput()
	defer closeLog()
	appLogger = newLogger("APP", config.ColorGreen)

	if cfg.UI == config.UITerminal {
		initScreen()
		defer screen.Fini()
	}
	initLoop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	d := driver()
	var err error
	switch cfg.UI {
	case config.UITerminal:
		err = terminal.Run(ctx, screen, d)
	case config.UIDesktop:
		err = desktop.Run(ctx, d, int32(cfg.ViewportWidth), int32(cfg.ViewportHeight))
	case config.UIWeb:
		gin.SetMode(gin.ReleaseMode)
		err = web.NewServer(d, newLogger("WEB", config.ColorPurple)).Run(ctx, cfg.WebAddr)
	}
	if err != nil {
		appLogger.Error(fmt.Sprintf("Front-end stopped: %v", err))
	}

	stop()
	if err := <-loopDone; err != nil {
		appLogger.Error(fmt.Sprintf("Game loop: %v", err))
		if screen != nil {
			screen.Fini()
		}
		fmt.Fprintf(os.Stderr, "Game loop: %v\n", err)
	}

	sum := loop.Scoreboard().Summary()
	appLogger.Info(fmt.Sprintf("Played %d games, high score %d", sum.GamesPlayed, sum.HighScore))
}
