// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	densky "github.com/densky-framework/densky"
	"github.com/densky-framework/densky/internal/pluginffi"
	"github.com/densky-framework/densky/internal/slogpretty"
	"github.com/densky-framework/densky/internal/watch"
	"github.com/spf13/cobra"
)

var devCmd = &cobra.Command{
	Use:   "dev [folder]",
	Short: "Walk a routes folder and regenerate the dispatch source on every change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDev,
}

func init() {
	devCmd.Flags().Int("update-port", 0, "port the running child process advertises for update-event POSTs, overrides densky.jsonc")
	rootCmd.AddCommand(devCmd)
}

func runDev(cmd *cobra.Command, args []string) error {
	folder := "."
	if len(args) == 1 {
		folder = args[0]
	}

	log := devLogger()

	cfg, err := densky.LoadConfig(filepath.Join(folder, "densky.jsonc"))
	if err != nil {
		log.Fatal("cli", err)
		return err
	}
	updatePort, _ := cmd.Flags().GetInt("update-port")
	if updatePort == 0 {
		updatePort = cfg.Densky.UpdatePort
	}

	hosts := make(map[string]*pluginffi.Host)
	defer func() {
		for _, h := range hosts {
			_ = h.Close()
		}
	}()

	for name := range cfg.Clouds {
		path, err := cfg.ResolveCloudPath(name, sharedLibraryFilename)
		if err != nil {
			log.Fatal(name, err)
			return err
		}
		host, err := pluginffi.Load(path)
		if err != nil {
			log.Fatal(name, err)
			return err
		}
		hosts[name] = host
	}

	output := cfg.Densky.Output
	if output == "" {
		output = ".densky"
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("%w: %v", densky.ErrConfig, err)
	}

	if err := buildOnce(folder, output, hosts, log); err != nil {
		log.Fatal("cli", err)
		return err
	}

	w, err := watch.New(folder, 150*time.Millisecond)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go w.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Batches():
			if !ok {
				return nil
			}
			log.Raw().Info("densky.cli: rebuild triggered", "events", len(batch))
			if err := buildOnce(folder, output, hosts, log); err != nil {
				log.Raw().Warn("densky.cli: rebuild failed", "error", err)
			}
			if updatePort != 0 {
				if err := postUpdateBatch(ctx, updatePort, batch); err != nil {
					log.Raw().Warn("densky.cli: update-event POST failed", "error", err)
				}
			}
		}
	}
}

// buildOnce runs a full Strategy walk plus ManifestAssembler pass for every configured
// cloud and writes the generated dispatch file for each under output, per §4.4/§4.6 and
// the "full re-walk per watch batch" Open Question resolution in SPEC_FULL.md.
func buildOnce(folder, output string, hosts map[string]*pluginffi.Host, log *densky.BuildLogger) error {
	for name, host := range hosts {
		start := time.Now()

		resolver, err := densky.NewFileResolver(host)
		if err != nil {
			return err
		}

		store, err := densky.Walk(folder, resolver, log)
		if err != nil {
			return err
		}

		assembler := densky.NewManifestAssembler(store, host)
		update, err := assembler.Assemble()
		if err != nil {
			return err
		}

		dest := filepath.Join(output, name+".gen.js")
		if err := os.WriteFile(dest, []byte(update.Content), 0o644); err != nil {
			return err
		}

		log.BuildComplete(name, time.Since(start))
	}
	return nil
}

// postUpdateBatch converts a watch batch into update events and delivers them to the
// child process listening on port, per §6.
func postUpdateBatch(ctx context.Context, port int, batch watch.Batch) error {
	events := make([]densky.UpdateEvent, 0, len(batch))
	for _, ev := range batch {
		events = append(events, densky.UpdateEvent{Kind: string(ev.Kind), Path: ev.Path})
	}
	return densky.PostUpdateEvents(ctx, port, events)
}

func devLogger() *densky.BuildLogger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("DENSKY_LOG")) {
	case "none":
		level = slog.LevelError + 1
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "debug", "trace":
		level = slog.LevelDebug
	}

	handler := &slogpretty.Handler{
		We:  os.Stderr,
		Wo:  os.Stdout,
		Lvl: level,
	}
	return densky.NewBuildLogger(handler)
}

func sharedLibraryFilename(name string) string {
	return "libdensky_" + name + ".so"
}
