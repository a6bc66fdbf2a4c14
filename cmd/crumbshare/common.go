package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/phuslu/log"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/crumbshare/crumbshare"
	"github.com/crumbshare/crumbshare/store"
)

func help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		cli.ShowAppHelpAndExit(ctx, 0)
		return nil
	}
	err := cli.ShowCommandHelp(ctx, arg)
	if err != nil {
		return err
	}
	return printErrWithHelp(ctx, err)
}

func getVersion(ctx *cli.Context) error {
	fmt.Printf(
		"%s %s (%s_%s)\nBuild: %s=%s\n",
		ctx.App.Name,
		ctx.App.Version,
		runtime.GOOS,
		runtime.GOARCH,
		date, commit,
	)
	return nil
}

func printRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

func printErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			err := cli.ShowCommandHelp(ctx, ctx.Command.Name)
			if err != nil {
				fmt.Println(err.Error())
			}
		},
	)
}

func printErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			cli.ShowAppHelpAndExit(ctx, 1)
		},
	)
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return help(ctx)
	}
	if strings.Contains(estr, "-version") ||
		strings.Contains(estr, "-v") {
		return getVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

func usageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return printErrWithCmdHelp(ctx, err)
	}
	return printErrWithHelp(ctx, err)
}

// Cookie source flags shared by share, save, drift and watch. Exactly
// one source is used per invocation; inline payloads win over stores.
var (
	domainName  string
	browserName string
	storePath   string
	cookiesJSON string
	cookiesFile string
	cookiesB64  string
)

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:        "domain, d",
			Usage:       "cookie domain to operate on",
			EnvVar:      "CRUMBSHARE_DOMAIN",
			Destination: &domainName,
		},
		cli.StringFlag{
			Name:        "browser, b",
			Usage:       "browser to read cookies from (chrome, chromium, edge, brave, vivaldi, opera, firefox, all)",
			Destination: &browserName,
		},
		cli.StringFlag{
			Name:        "store",
			Usage:       "path to a cookie store file (overrides --browser)",
			Destination: &storePath,
		},
		cli.StringFlag{
			Name:        "cookies-json",
			Usage:       "inline JSON cookie payload",
			Destination: &cookiesJSON,
		},
		cli.StringFlag{
			Name:        "cookies-file",
			Usage:       "path to a JSON cookie payload",
			Destination: &cookiesFile,
		},
		cli.StringFlag{
			Name:        "cookies-b64",
			Usage:       "base64-encoded JSON cookie payload",
			Destination: &cookiesB64,
		},
	}
}

// resolveStorePath picks the cookie store file named by --store, or
// discovers one for --browser.
func resolveStorePath() (string, error) {
	if storePath != "" {
		return storePath, nil
	}
	if browserName == "" {
		return "", errors.New("no cookie source: pass --browser, --store or a --cookies-* flag")
	}
	b, err := crumbshare.ParseBrowser(browserName)
	if err != nil {
		return "", err
	}
	locs := crumbshare.FindBrowserStores(b)
	if len(locs) == 0 {
		return "", fmt.Errorf("no cookie store found for %s", b)
	}
	log.Debug().Str("browser", string(b)).Str("path", locs[0].Path).Msg("using discovered cookie store")
	return locs[0].Path, nil
}

// collectCookies resolves the cookie source flags to a cookie slice.
// Warnings from store imports are logged, not fatal.
func collectCookies(ctx context.Context) ([]crumbshare.Cookie, error) {
	if cookiesJSON != "" || cookiesB64 != "" || cookiesFile != "" {
		cookies, err := crumbshare.ReadCookiePayload(crumbshare.CookiePayload{
			JSON:   []byte(cookiesJSON),
			Base64: cookiesB64,
			File:   cookiesFile,
		})
		if err != nil {
			return nil, err
		}
		return crumbshare.FilterCookies(cookies, domainName), nil
	}

	var (
		cookies  []crumbshare.Cookie
		warnings []string
		err      error
	)
	switch {
	case storePath != "":
		cookies, warnings, err = crumbshare.ImportCookies(ctx, storePath, domainName)
	case browserName == "all":
		cookies, warnings, err = crumbshare.ReadAllBrowserCookies(ctx, domainName)
	case browserName != "":
		var b crumbshare.Browser
		b, err = crumbshare.ParseBrowser(browserName)
		if err != nil {
			return nil, err
		}
		cookies, warnings, err = crumbshare.ReadBrowserCookies(ctx, b, domainName)
	default:
		return nil, errors.New("no cookie source: pass --browser, --store or a --cookies-* flag")
	}
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	return cookies, nil
}

func openStore() (*store.Store, error) {
	dir := storeDir
	if dir == "" {
		dir = cfg.StoreDir
	}
	return store.Open(dir)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal; pass the password via a flag or CRUMBSHARE_SHARE_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// resolvePassword picks the share password for domain: the flag wins,
// then the environment and keyring, then a prompt when ask is set.
func resolvePassword(domain, flagValue string, ask bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.KeyringEnabled {
		if pw, ok := crumbshare.LookupSharePassword(domain); ok {
			return pw, nil
		}
	} else if pw := os.Getenv("CRUMBSHARE_SHARE_PASSWORD"); pw != "" {
		return pw, nil
	}
	if ask {
		return promptPassword("share password: ")
	}
	return "", nil
}

// writeCookies renders cookies in the requested format to stdout or to
// the file named by output.
func writeCookies(cookies []crumbshare.Cookie, format, output string) error {
	var data []byte
	switch format {
	case "", "json":
		var err error
		data, err = crumbshare.ExportJSON(cookies)
		if err != nil {
			return err
		}
		data = append(data, '\n')
	case "netscape":
		data = crumbshare.ExportNetscape(cookies)
	case "header":
		data = []byte(crumbshare.CookieHeader(cookies) + "\n")
	default:
		return fmt.Errorf("unknown format %q (want json, netscape or header)", format)
	}
	if output == "" || output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o600)
}
