package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"starlane/internal/config"
	"starlane/internal/loop"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.GetEnv("STARLANE_CONFIG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "starlane: %v\n", err)
		os.Exit(1)
	}

	// The terminal is in raw mode while the game runs, so log lines would
	// land on top of the frame. They go to a file or nowhere.
	logger := log.New(io.Discard)
	if path := config.GetEnv("STARLANE_LOG", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "starlane: open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = log.New(f)
	}

	game, err := loop.NewGame(cfg, loop.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "starlane: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "starlane: raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	if err := game.Run(context.Background(), bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "starlane: %v\n", err)
		os.Exit(1)
	}
}
