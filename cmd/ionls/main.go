// Command ionls is the Ion language server: a JSON-RPC stdio process that
// multiplexes client messages, VFS overlay edits, filesystem-watcher events
// and pool task completions onto a single loop thread.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ion-lang/ionls/internal/config"
	"github.com/ion-lang/ionls/internal/debug"
	"github.com/ion-lang/ionls/internal/engine"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/dispatch"
	"github.com/ion-lang/ionls/internal/lsp/loop"
	"github.com/ion-lang/ionls/internal/lsp/world"
	"github.com/ion-lang/ionls/internal/lspool"
	"github.com/ion-lang/ionls/internal/version"
	"github.com/ion-lang/ionls/internal/watch"
)

func main() {
	app := &cli.App{
		Name:                   "ionls",
		Usage:                  "Language server for Ion",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Workspace root directory (defaults to the current directory)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable verbose logging to a log file (never to stdout/stderr in stdio mode)",
			},
			&cli.StringFlag{
				Name:   "log-file",
				Usage:  "Write debug logs to this path instead of the default location (hidden flag)",
				Hidden: true,
			},
		},
		Before: func(c *cli.Context) error {
			debug.SetStdioMode(true)
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				if path := c.String("log-file"); path != "" {
					f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
					if err != nil {
						fmt.Fprintf(os.Stderr, "ionls: failed to open log file: %v\n", err)
					} else {
						debug.SetOutput(f)
					}
				} else if _, err := debug.InitLogFile(); err != nil {
					fmt.Fprintf(os.Stderr, "ionls: failed to open log file: %v\n", err)
				}
			}
			return nil
		},
		Action: serve,
	}

	defer debug.CloseLogFile()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ionls: %v\n", err)
		os.Exit(1)
	}
}

// serve wires the configured workspace into a Loop and runs it to
// completion over stdio, returning only once the client has requested
// shutdown or a fatal transport/VFS error has occurred.
func serve(c *cli.Context) error {
	wsRoot := c.String("root")
	if wsRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving workspace root: %w", err)
		}
		wsRoot = wd
	}

	cfg, err := config.Load(wsRoot)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Project.Root = wsRoot

	db := engine.NewFakeDatabase()
	w := world.New(db, []string{wsRoot})

	watcher, err := watch.New(cfg, w.VFS)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := watcher.Start(wsRoot); err != nil {
		return fmt.Errorf("watching %s: %w", wsRoot, err)
	}
	defer watcher.Stop()

	poolSize := cfg.Pool.Size
	if poolSize <= 0 {
		poolSize = config.DefaultPoolSize
	}
	pool := lspool.New(poolSize)
	taskCh := make(chan lspool.Task, poolSize*2)
	d := dispatch.New(pool, taskCh)
	// Handler business logic is supplied by the analysis engine this
	// binary is linked against; none is registered here.

	readFile := os.ReadFile
	readFileText := func(path string) (string, error) {
		b, err := readFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	out := loop.NewWriterOutbound(jsonrpc.NewWriter(os.Stdout))
	l := loop.New(cfg, w, pool, d, readFileText, taskCh, out)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		debug.LogLoop("received shutdown signal, terminating")
		os.Exit(0)
	}()

	reader := jsonrpc.NewReader(os.Stdin)
	msgCh := make(chan jsonrpc.Inbound, 32)
	go func() {
		defer close(msgCh)
		for {
			body, err := reader.Read()
			if err != nil {
				debug.LogRPC("stdin closed: %v", err)
				return
			}
			in, err := jsonrpc.ParseInbound(body)
			if err != nil {
				debug.LogRPC("dropping unparseable message: %v", err)
				continue
			}
			msgCh <- in
		}
	}()

	loader := engine.NewFakeLoader()
	return l.Run(msgCh, loader, wsRoot)
}
