package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-board/model"
	"github.com/sheikhrachel/go-gol-board/session"
	"github.com/sheikhrachel/go-gol-board/tui"
	"github.com/sheikhrachel/go-gol-board/utils"
)

// runInteractive hands the terminal to the tcell board until the user quits
func runInteractive(ctx context.Context, sess *session.Session) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "[runInteractive] failed to create screen")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "[runInteractive] failed to initialize screen")
	}
	defer screen.Fini()

	return tui.NewBoard(screen, sess).Run(ctx)
}

// runHeadless auto-plays the session, redrawing the terminal after every generation
func runHeadless(ctx context.Context, sess *session.Session) error {
	var (
		config        = sess.Config()
		renderer      = &model.TerminalRenderer{}
		stagnantCount = 0
	)
	displayGameInfo(config, sess.Grid())

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	if err := sess.OnAutoStartRequested(ctx); err != nil {
		return errors.Wrap(err, "[runHeadless] failed to start auto-play")
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n🛑 Shutting down gracefully...")
			displayFinalStats(sess)
			return nil
		case ev, ok := <-updates:
			if !ok {
				return nil
			}
			if ev.Kind != session.EventStep {
				continue
			}

			renderer.Clear()
			grid := sess.Grid()
			livingCells, density, status, isStagnant := updateGameState(sess, grid)

			// Update stagnation counter
			if isStagnant {
				stagnantCount++
			} else {
				stagnantCount = 0
			}

			displayGameStatus(ev.Generation, livingCells, density, status, sess.Stats())
			if err := renderer.Display(os.Stdout, grid); err != nil {
				return errors.Wrap(err, "[runHeadless] failed to render grid")
			}

			// Check for max generations limit
			if config.MaxGenerations > 0 && ev.Generation >= config.MaxGenerations {
				sess.OnAutoStopRequested()
				fmt.Printf("\n🏁 Reached maximum generations limit (%d)\n", config.MaxGenerations)
				displayFinalStats(sess)
				return nil
			}

			if shouldRestart, reason := checkRestartConditions(livingCells, stagnantCount, config); shouldRestart {
				fmt.Printf("🔄 Restarting due to %s...\n", reason)
				if err := restartGame(ctx, sess); err != nil {
					return err
				}
				stagnantCount = 0
			}
		}
	}
}

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, grid *model.Grid) {
	fmt.Printf("Features: Memory Pool: %v, Parallel: %v, Auto Restart: %v\n",
		config.UseMemoryPool, config.UseParallel, config.AutoRestart)
	fmt.Printf("Grid: %dx%d | Initial living cells: %d | Tick: %v\n",
		grid.GetRows(), grid.GetCols(), grid.CountLivingCells(), config.TickDelay)
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// updateGameState derives the status line values for the current grid
func updateGameState(sess *session.Session, grid *model.Grid) (int, float64, string, bool) {
	livingCells := grid.CountLivingCells()
	density := float64(livingCells) / float64(grid.GetRows()*grid.GetCols()) * 100

	isStagnant := sess.IsStagnant()

	status := "Active"
	if isStagnant {
		status = "Stagnant"
	}
	if livingCells == 0 {
		status = "Extinct"
	}

	return livingCells, density, status, isStagnant
}

// displayGameStatus shows the current game status
func displayGameStatus(
	generation, livingCells int,
	density float64,
	status string,
	stats utils.Stats,
) {
	fmt.Printf("Gen: %d | Living: %d | Density: %.1f%% | Status: %s\n",
		generation, livingCells, density, status)
	fmt.Printf("Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.Runtime().Seconds())
	fmt.Println()
}

func displayFinalStats(sess *session.Session) {
	stats := sess.Stats()
	fmt.Printf("Final stats: %d generations in %.1f seconds\n",
		sess.Generation(), stats.Runtime().Seconds())
	fmt.Printf("Average: %.1f gen/sec, %.1f avg population, %d peak\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.PeakPopulation)
}

// checkRestartConditions determines if the game should restart
func checkRestartConditions(livingCells, stagnantCount int, config utils.Config) (bool, string) {
	if !config.AutoRestart {
		return false, ""
	}
	if livingCells == 0 {
		return true, "extinction"
	}
	if stagnantCount >= config.StagnationThreshold {
		return true, "stagnation detected"
	}
	return false, ""
}

// restartGame resets the board, reseeds it and resumes auto-play
func restartGame(ctx context.Context, sess *session.Session) error {
	if err := sess.OnResetRequested(); err != nil {
		return errors.Wrap(err, "[restartGame] failed to reset")
	}
	if err := sess.Setup(); err != nil {
		return errors.Wrap(err, "[restartGame] failed to reseed")
	}
	fmt.Printf("✨ New board loaded! Living cells: %d\n", sess.Grid().CountLivingCells())
	return errors.Wrap(sess.OnAutoStartRequested(ctx), "[restartGame] failed to resume auto-play")
}
