package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/urfave/cli"

	"github.com/crumbshare/crumbshare"
)

var (
	loadFormat string
	loadOutput string

	saveFlags = sourceFlags()

	loadFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "domain, d",
			Usage:       "cookie domain the profile belongs to",
			EnvVar:      "CRUMBSHARE_DOMAIN",
			Destination: &domainName,
		},
		cli.StringFlag{
			Name:        "format, f",
			Usage:       "output format: json, netscape or header (default: json)",
			Destination: &loadFormat,
		},
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "write to this file instead of stdout",
			Destination: &loadOutput,
		},
	}

	driftFlags = sourceFlags()

	profilesFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "domain, d",
			Usage:       "cookie domain to list profiles for",
			EnvVar:      "CRUMBSHARE_DOMAIN",
			Destination: &domainName,
		},
	}

	profilesShowFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "domain, d",
			Usage:       "cookie domain the profile belongs to",
			EnvVar:      "CRUMBSHARE_DOMAIN",
			Destination: &domainName,
		},
		cli.StringFlag{
			Name:        "format, f",
			Usage:       "output format: json, netscape or header (default: json)",
			Destination: &loadFormat,
		},
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "write to this file instead of stdout",
			Destination: &loadOutput,
		},
	}
)

func save(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return printErrWithCmdHelp(ctx, errors.New("no profile name provided"))
	}
	if name == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	bg := context.Background()
	cookies, err := collectCookies(bg)
	if err != nil {
		printRuntimeErr(ctx, "save", "collect", err)
		return nil
	}
	if len(cookies) == 0 {
		printRuntimeErr(ctx, "save", "collect", fmt.Errorf("no cookies matched %s", domainName))
		return nil
	}

	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "save", "open_store", err)
		return nil
	}
	defer st.Close()

	rec, err := st.SaveProfile(bg, domainName, name, cookies)
	if err != nil {
		printRuntimeErr(ctx, "save", "save_profile", err)
		return nil
	}
	fmt.Printf("saved profile %q for %s (%d cookies)\n", rec.Name, rec.Domain, len(rec.Cookies))
	return nil
}

func load(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return printErrWithCmdHelp(ctx, errors.New("no profile name provided"))
	}
	if name == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	bg := context.Background()
	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "load", "open_store", err)
		return nil
	}
	defer st.Close()

	cookies, err := st.ProfileCookies(bg, domainName, name)
	if err != nil {
		printRuntimeErr(ctx, "load", "read_profile", err)
		return nil
	}
	tracker := crumbshare.NewTracker(st)
	if err := tracker.MarkProfileLoaded(bg, domainName, name, cookies); err != nil {
		printRuntimeErr(ctx, "load", "mark_loaded", err)
		return nil
	}
	log.Info().Str("domain", domainName).Str("profile", name).Msg("profile loaded; drift detection armed")

	format := loadFormat
	if format == "" {
		format = cfg.DefaultFormat
	}
	if err := writeCookies(cookies, format, loadOutput); err != nil {
		printRuntimeErr(ctx, "load", "write", err)
	}
	return nil
}

func drift(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	bg := context.Background()
	cookies, err := collectCookies(bg)
	if err != nil {
		printRuntimeErr(ctx, "drift", "collect", err)
		return nil
	}

	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "drift", "open_store", err)
		return nil
	}
	defer st.Close()

	tracker := crumbshare.NewTracker(st)
	drifted, err := tracker.HasDrifted(bg, domainName, cookies)
	if err != nil {
		printRuntimeErr(ctx, "drift", "check", err)
		return nil
	}
	meta, err := tracker.Metadata(bg, domainName)
	if err != nil {
		printRuntimeErr(ctx, "drift", "metadata", err)
		return nil
	}
	if meta == nil || meta.LastLoadedProfile == "" {
		fmt.Printf("no profile loaded for %s; nothing to compare\n", domainName)
		return nil
	}
	if drifted {
		fmt.Printf("drift detected: cookies for %s no longer match profile %q\n", domainName, meta.LastLoadedProfile)
		return nil
	}
	fmt.Printf("no drift: %d cookies for %s still match profile %q\n", len(cookies), domainName, meta.LastLoadedProfile)
	return nil
}

func profilesList(ctx *cli.Context) error {
	bg := context.Background()
	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "profiles", "open_store", err)
		return nil
	}
	defer st.Close()

	if domainName == "" {
		domains, err := st.Domains(bg)
		if err != nil {
			printRuntimeErr(ctx, "profiles", "list_domains", err)
			return nil
		}
		if len(domains) == 0 {
			fmt.Println("no profiles saved")
			return nil
		}
		for _, d := range domains {
			fmt.Println(d)
		}
		return nil
	}

	recs, err := st.ListProfiles(bg, domainName)
	if err != nil {
		printRuntimeErr(ctx, "profiles", "list", err)
		return nil
	}
	if len(recs) == 0 {
		fmt.Printf("no profiles saved for %s\n", domainName)
		return nil
	}
	meta, _ := st.Get(bg, domainName)
	for _, rec := range recs {
		marker := ""
		if meta != nil && meta.LastLoadedProfile == rec.Name {
			marker = " (loaded)"
			if meta.Modified {
				marker = " (loaded, drifted)"
			}
		}
		fmt.Printf("%s\t%d cookies\tupdated %s%s\n",
			rec.Name, len(rec.Cookies), rec.UpdatedAt.Format(time.RFC3339), marker)
	}
	return nil
}

func profilesShow(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return printErrWithCmdHelp(ctx, errors.New("no profile name provided"))
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "profiles", "open_store", err)
		return nil
	}
	defer st.Close()

	cookies, err := st.ProfileCookies(context.Background(), domainName, name)
	if err != nil {
		printRuntimeErr(ctx, "profiles", "read_profile", err)
		return nil
	}
	format := loadFormat
	if format == "" {
		format = cfg.DefaultFormat
	}
	if err := writeCookies(cookies, format, loadOutput); err != nil {
		printRuntimeErr(ctx, "profiles", "write", err)
	}
	return nil
}

func profilesDelete(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return printErrWithCmdHelp(ctx, errors.New("no profile name provided"))
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	bg := context.Background()
	st, err := openStore()
	if err != nil {
		printRuntimeErr(ctx, "profiles", "open_store", err)
		return nil
	}
	defer st.Close()

	if err := st.DeleteProfile(bg, domainName, name); err != nil {
		printRuntimeErr(ctx, "profiles", "delete", err)
		return nil
	}
	tracker := crumbshare.NewTracker(st)
	if err := tracker.ClearLoadedProfile(bg, domainName, name); err != nil {
		printRuntimeErr(ctx, "profiles", "clear_loaded", err)
		return nil
	}
	fmt.Printf("deleted profile %q for %s\n", name, domainName)
	return nil
}
