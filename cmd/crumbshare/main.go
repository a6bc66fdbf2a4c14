package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/urfave/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose   bool
	configPth string

	globalFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "verbose",
			Usage:       "enable debug logging (default: false)",
			EnvVar:      "CRUMBSHARE_VERBOSE",
			Destination: &verbose,
		},
		cli.StringFlag{
			Name:        "config",
			Usage:       "path to the config file (default: ~/.config/crumbshare/config.ini)",
			EnvVar:      "CRUMBSHARE_CONFIG",
			Destination: &configPth,
		},
		cli.StringFlag{
			Name:        "store-dir",
			Usage:       "directory for the profile store (default: ~/.config/crumbshare/store)",
			EnvVar:      "CRUMBSHARE_STORE_DIR",
			Destination: &storeDir,
		},
	}
)

func setup(ctx *cli.Context) error {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	log.DefaultLogger = log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
			EndWithMessage: true,
			Writer:         os.Stderr,
		},
	}
	return loadConfig(configPth)
}

func main() {
	app := cli.App{
		Name:                  "Crumbshare",
		HelpName:              "crumbshare",
		Usage:                 "Share, store and diff browser cookies.",
		Version:               fmt.Sprintf("%s (%s)", version, commit),
		UsageText:             "crumbshare <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Before:                setup,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:                   "share",
				Aliases:                []string{"s"},
				Usage:                  "build a share link from cookies or profiles",
				Action:                 share,
				Flags:                  shareFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ShareDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "decode",
				Aliases:                []string{"d"},
				Usage:                  "decode a share link or token",
				Action:                 decode,
				Flags:                  decodeFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            DecodeDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "inspect",
				Aliases:                []string{"i"},
				Usage:                  "describe a share link without printing values",
				Action:                 inspect,
				Flags:                  inspectFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            InspectDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "save",
				Usage:                  "import cookies and save them as a profile",
				Action:                 save,
				Flags:                  saveFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            SaveDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "load",
				Usage:                  "print a saved profile and arm drift detection",
				Action:                 load,
				Flags:                  loadFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            LoadDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "drift",
				Usage:                  "check browser cookies against the loaded profile",
				Action:                 drift,
				Flags:                  driftFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            DriftDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:               "profiles",
				Aliases:            []string{"p"},
				Usage:              "list, show or delete saved profiles",
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ProfilesDescription,
				Subcommands: []cli.Command{
					{
						Name:   "list",
						Usage:  "list profiles saved for a domain",
						Action: profilesList,
						Flags:  profilesFlags,
					},
					{
						Name:   "show",
						Usage:  "print the cookies of one profile",
						Action: profilesShow,
						Flags:  profilesShowFlags,
					},
					{
						Name:   "delete",
						Usage:  "delete a profile",
						Action: profilesDelete,
						Flags:  profilesFlags,
					},
				},
			},
			{
				Name:                   "watch",
				Aliases:                []string{"w"},
				Usage:                  "watch a cookie store and report drift",
				Action:                 watch,
				Flags:                  watchFlags,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            WatchDescription,
				UseShortOptionHandling: true,
			},
			{
				Name:               "stores",
				Usage:              "list browser cookie stores on this machine",
				Action:             stores,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StoresDescription,
			},
			{
				Name:               "strength",
				Usage:              "score a share password",
				Action:             strength,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StrengthDescription,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of crumbshare",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Printf("crumbshare: %s\n", err.Error())
		os.Exit(1)
	}
}
