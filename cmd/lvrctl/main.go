package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xknxwledge/lvrctl/internal/api"
	"github.com/0xknxwledge/lvrctl/internal/config"
	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/fetch"
	"github.com/0xknxwledge/lvrctl/internal/logging"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
	"github.com/0xknxwledge/lvrctl/internal/processor"
	"github.com/0xknxwledge/lvrctl/internal/validator"
)

func main() {
	config.LoadDotEnv()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "process":
		err = runProcess(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "lvrctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lvrctl <process|validate|serve> [flags]")
}

// runProcess drives a chunked ingestion run over [start-block, end-block).
// It starts no query API, so its progress is not published over the
// websocket hub.
func runProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	startBlock := fs.Uint64("start-block", domain.MergeBlock, "first block in scope (inclusive)")
	endBlock := fs.Uint64("end-block", 20_000_000, "last block in scope (exclusive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logging.New()
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	storeCfg := config.LoadObjectStore()
	store, err := objstore.New(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("constructing object store: %w", err)
	}

	auroraCfg, err := config.LoadAurora()
	if err != nil {
		return fmt.Errorf("loading aurora config: %w", err)
	}
	brontesCfg, err := config.LoadBrontes()
	if err != nil {
		return fmt.Errorf("loading brontes config: %w", err)
	}

	aurora := fetch.NewAuroraFetcher(auroraCfg, log)
	defer aurora.Close()
	brontes := fetch.NewBrontesFetcher(brontesCfg, log)
	defer brontes.Close()

	proc := processor.New(*startBlock, *endBlock, aurora, brontes, store, log, validator.Callback(log))

	log.Infow("starting ingestion run", "start_block", *startBlock, "end_block", *endBlock)
	if err := proc.ProcessBlocks(ctx); err != nil {
		return fmt.Errorf("processing blocks: %w", err)
	}
	log.Info("ingestion run completed successfully")
	return nil
}

// runValidate runs the post-chunk cross-check on an already-processed data
// directory, without re-fetching from either upstream source.
func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	dataDir := fs.String("data-dir", "", "local data directory to validate (overrides LVR_DATA_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logging.New()
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	storeCfg := config.LoadObjectStore()
	if *dataDir != "" {
		storeCfg.DataDir = *dataDir
	}
	store, err := objstore.New(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("constructing object store: %w", err)
	}

	results, err := validator.New(store, log).ValidateAll(ctx)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	var failures int
	for key, stats := range results {
		if stats.Difference != 0 {
			failures++
			log.Errorw("checkpoint/interval mismatch", "key", key,
				"checkpoint_total", stats.CheckpointTotal, "intervals_total", stats.IntervalsTotal,
				"difference", stats.Difference, "difference_percent", stats.DifferencePercent)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d (pool, markout) pairs failed validation", failures, len(results))
	}
	log.Infow("validation passed", "pairs_checked", len(results))
	return nil
}

// runServe starts the query API over whatever artifacts are already on the
// configured object store.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	host := fs.String("host", "0.0.0.0", "listen host")
	port := fs.Int("port", 8080, "listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logging.New()
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	storeCfg := config.LoadObjectStore()
	store, err := objstore.New(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("constructing object store: %w", err)
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	router := api.SetupRouter(store, nil, wsHub)
	addr := fmt.Sprintf("%s:%d", *host, *port)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infow("query API listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
