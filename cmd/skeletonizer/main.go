// Command skeletonizer is the process entry point: invoked with no
// arguments, it treats the working directory as the project root, runs
// the initial sweep synchronously, then serves MCP requests over stdio
// until stdin hits EOF or a shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramigb/semantic-skeletonizer/internal/index"
	"github.com/ramigb/semantic-skeletonizer/internal/logging"
	"github.com/ramigb/semantic-skeletonizer/internal/rpc"
	"github.com/ramigb/semantic-skeletonizer/internal/scanner"
)

const component = "main"

func main() {
	os.Exit(run())
}

func run() int {
	logging.SetDebug(os.Getenv("DEBUG") != "")

	root, err := os.Getwd()
	if err != nil {
		logging.Warn(component, "failed to resolve working directory: %v", err)
		return 1
	}

	idx := index.New()
	sc := scanner.New(root, idx)

	// The sweep must complete before the watcher or the server start, so
	// that the first resources/list reflects a fully-scanned project.
	if err := sc.Sweep(); err != nil {
		logging.Warn(component, "initial sweep failed: %v", err)
		return 1
	}
	logging.Info(component, "initial sweep complete: %d files indexed", idx.Len())

	watcher, err := scanner.NewWatcher(sc)
	if err != nil {
		logging.Warn(component, "failed to establish filesystem watch: %v", err)
		return 1
	}
	defer watcher.Stop()

	server := rpc.New(root, idx, sc.Changes(), os.Stdin, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Warn(component, "server exited with error: %v", err)
			return 1
		}
		return 0

	case sig := <-sigCh:
		logging.Info(component, "received signal %v, shutting down", sig)
		cancel()

		select {
		case <-errCh:
			return 0
		case <-time.After(2 * time.Second):
			fmt.Fprintln(os.Stderr, "graceful shutdown timed out")
			return 1
		}
	}
}
