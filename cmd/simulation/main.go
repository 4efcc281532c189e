package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"gridpilot/internal/audio"
	"gridpilot/internal/config"
	"gridpilot/internal/simulation"
	"gridpilot/internal/terminal"
	"gridpilot/internal/visualization"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse(args, os.Stderr)
	if err != nil {
		return err
	}

	logger, closer, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	sim, err := simulation.New(cfg.SimulationOptions(), logger)
	if err != nil {
		return err
	}

	switch cfg.Frontend {
	case config.FrontendHeadless:
		err = runHeadless(cfg, sim, logger)
	case config.FrontendWindow:
		err = runWindow(cfg, sim, logger)
	default:
		err = runTerminal(cfg, sim, logger)
	}
	if err != nil {
		return err
	}

	summary := sim.Stats().Summary()
	logger.WithFields(logrus.Fields{
		"episodes":   summary.Episodes,
		"mean_steps": summary.MeanSteps,
	}).Info("simulation finished")
	fmt.Println(summary)
	return nil
}

func newChimer(cfg *config.Config, logger logrus.FieldLogger) audio.Chimer {
	if !cfg.Sound {
		return audio.Silent{}
	}
	s, err := audio.NewSpeaker()
	if err != nil {
		logger.WithError(err).Warn("sound disabled")
		return audio.Silent{}
	}
	return s
}

func runHeadless(cfg *config.Config, sim *simulation.Simulation, logger logrus.FieldLogger) error {
	report := sim.RunHeadless(cfg.Episodes, cfg.MaxEpisodeSteps)
	logger.WithFields(logrus.Fields{
		"unsolvable": report.Unsolvable,
		"exhausted":  report.Exhausted,
		"truncated":  report.Truncated,
		"mismatches": report.Mismatches,
	}).Info("headless run complete")
	return report.Err()
}

func runTerminal(cfg *config.Config, sim *simulation.Simulation, logger logrus.FieldLogger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	fe, err := terminal.New(screen, newChimer(cfg, logger))
	if err != nil {
		return err
	}
	defer fe.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = sim.Loop(ctx, fe, cfg.Pacing())
	if errors.Is(err, simulation.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runWindow(cfg *config.Config, sim *simulation.Simulation, logger logrus.FieldLogger) error {
	chime := newChimer(cfg, logger)
	defer chime.Close()

	r := visualization.NewRenderer(sim, visualization.Options{
		Pacing:   cfg.Pacing(),
		CellSize: cfg.CellSize,
		Chime:    chime,
		Logger:   logger,
	})
	ebiten.SetWindowSize(r.WindowSize(cfg.CellSize))
	ebiten.SetWindowTitle("Grid World with BFS")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(r); err != nil {
		return fmt.Errorf("window frontend: %w", err)
	}
	return nil
}
