package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/urfave/cli"

	"github.com/crumbshare/crumbshare"
)

var (
	watchDebounce time.Duration

	watchFlags = append(sourceFlags(),
		cli.DurationFlag{
			Name:        "debounce",
			Usage:       "quiet period after a write before rechecking (default: 2s)",
			Value:       2 * time.Second,
			Destination: &watchDebounce,
		},
	)
)

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	path, err := resolveStorePath()
	if err != nil {
		printRuntimeErr(ctx, "watch", "resolve_store", err)
		return nil
	}

	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "watch", "open_store", err)
		return nil
	}
	defer st.Close()
	tracker := crumbshare.NewTracker(st)

	w, err := crumbshare.NewStoreWatcher(path, watchDebounce)
	if err != nil {
		printRuntimeErr(ctx, "watch", "new_watcher", err)
		return nil
	}
	if err := w.Start(); err != nil {
		printRuntimeErr(ctx, "watch", "start", err)
		return nil
	}
	defer w.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("store", path).Str("domain", domainName).Msg("watching cookie store")
	bg := context.Background()
	for {
		select {
		case <-sigChan:
			log.Info().Msg("stopping")
			return nil
		case werr := <-w.Errors():
			if werr != nil {
				log.Error().Err(werr).Msg("watcher error")
			}
		case change := <-w.Events():
			checkDrift(bg, tracker, change.Path)
		}
	}
}

func checkDrift(ctx context.Context, tracker *crumbshare.Tracker, path string) {
	cookies, warnings, err := crumbshare.ImportCookies(ctx, path, domainName)
	if err != nil {
		log.Error().Err(err).Str("store", path).Msg("import failed")
		return
	}
	for _, w := range warnings {
		log.Warn().Str("store", path).Msg(w)
	}
	drifted, err := tracker.HasDrifted(ctx, domainName, cookies)
	if err != nil {
		log.Error().Err(err).Msg("drift check failed")
		return
	}
	if drifted {
		log.Info().Str("domain", domainName).Int("cookies", len(cookies)).Msg("drift detected")
		return
	}
	log.Debug().Str("domain", domainName).Int("cookies", len(cookies)).Msg("no drift")
}

func stores(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	locs := crumbshare.FindAllBrowserStores()
	if len(locs) == 0 {
		fmt.Println("no browser cookie stores found")
		return nil
	}
	bg := context.Background()
	for _, loc := range locs {
		format, err := crumbshare.DetectStoreFormat(bg, loc.Path)
		if err != nil {
			log.Debug().Err(err).Str("path", loc.Path).Msg("detect failed")
			format = crumbshare.FormatUnknown
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", loc.Browser, loc.Profile, format, loc.Path)
	}
	return nil
}
