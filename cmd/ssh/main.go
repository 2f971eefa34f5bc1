package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"

	"starlane/internal/config"
	"starlane/internal/draw"
	"starlane/internal/loop"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = ".ssh/starlane_host_key"
	drainTimeout       = 15 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "starlane",
	})

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)

	cfg, err := config.Load(config.GetEnv("STARLANE_CONFIG", ""))
	if err != nil {
		logger.Fatal("load config", "err", err)
	}

	sessions := newRegistry()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware(cfg, sessions, logger),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "host", host, "port", port)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done

	// Tell every live session the server is going away, then give the
	// on-screen countdowns time to finish before closing the listener.
	logger.Info("shutting down", "sessions", sessions.count())
	sessions.notifyShutdown()
	sessions.drain(drainTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		logger.Error("shutdown error", "err", err)
	}
}

// gameMiddleware runs one game per SSH session.
func gameMiddleware(cfg config.Config, sessions *registry, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			sessLogger := logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
			sessLogger.Info("session opened",
				"terminal", pty.Term,
				"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

			// Track terminal size updates from window change events
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			game, err := loop.NewGame(cfg, loop.Options{
				TermSizeFunc: sizeTracker.getSize,
				Logger:       sessLogger,
			})
			if err != nil {
				sessLogger.Error("session setup failed", "err", err)
				fmt.Fprintln(sess, "Error: could not start the game")
				return
			}

			sessions.add(game)
			defer sessions.remove(game)

			if err := game.Run(sess.Context(), bufio.NewReader(sess), sess); err != nil && !errors.Is(err, context.Canceled) {
				sessLogger.Error("session failed", "err", err)
			}

			sessLogger.Info("session closed", "score", game.Score())
			next(sess)
		}
	}
}

// registry tracks live games so a shutdown can warn every player and wait
// for their sessions to wind down.
type registry struct {
	mu    sync.Mutex
	games map[*loop.Game]struct{}
}

func newRegistry() *registry {
	return &registry{games: make(map[*loop.Game]struct{})}
}

func (r *registry) add(g *loop.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g] = struct{}{}
}

func (r *registry) remove(g *loop.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, g)
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

func (r *registry) notifyShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for g := range r.games {
		g.NotifyShutdown()
	}
}

// drain waits for sessions to end on their own, up to timeout.
func (r *registry) drain(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.count() == 0 {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
