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
	shareProfile   string
	shareProfiles  bool
	shareTTL       time.Duration
	sharePassword  string
	shareAsk       bool
	shareRemember  bool
	sharePageURL   string
	shareTokenOnly bool

	shareFlags = append(sourceFlags(),
		cli.StringFlag{
			Name:        "profile, p",
			Usage:       "share the cookies of a saved profile",
			Destination: &shareProfile,
		},
		cli.BoolFlag{
			Name:        "profiles",
			Usage:       "share every profile saved for the domain (default: false)",
			Destination: &shareProfiles,
		},
		cli.DurationFlag{
			Name:        "ttl, t",
			Usage:       "how long the link stays valid, 0 means forever (default: 0)",
			Destination: &shareTTL,
		},
		cli.StringFlag{
			Name:        "password",
			Usage:       "encrypt the payload with this password",
			Destination: &sharePassword,
		},
		cli.BoolFlag{
			Name:        "ask-password, a",
			Usage:       "prompt for an encryption password (default: false)",
			Destination: &shareAsk,
		},
		cli.BoolFlag{
			Name:        "remember",
			Usage:       "store the password in the OS keyring (default: false)",
			Destination: &shareRemember,
		},
		cli.StringFlag{
			Name:        "url, u",
			Usage:       "page URL to attach the share fragment to",
			Destination: &sharePageURL,
		},
		cli.BoolFlag{
			Name:        "token-only",
			Usage:       "print the bare token instead of a fragment (default: false)",
			Destination: &shareTokenOnly,
		},
	)
)

func share(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if domainName == "" {
		return printErrWithCmdHelp(ctx, errors.New("no domain provided"))
	}

	ttl := shareTTL
	if !ctx.IsSet("ttl") && cfg.DefaultTTL > 0 {
		ttl = cfg.DefaultTTL
	}

	env, err := buildShareEnvelope(context.Background(), ttl)
	if err != nil {
		printRuntimeErr(ctx, "share", "build_envelope", err)
		return nil
	}

	password := sharePassword
	if password == "" && shareAsk {
		password, err = promptNewPassword()
		if err != nil {
			printRuntimeErr(ctx, "share", "read_password", err)
			return nil
		}
	}
	if shareRemember && password != "" {
		if err := crumbshare.RememberSharePassword(domainName, password); err != nil {
			log.Warn().Err(err).Msg("could not store password in keyring")
		}
	}

	out, err := renderShare(env, password)
	if err != nil {
		printRuntimeErr(ctx, "share", "encode", err)
		return nil
	}
	fmt.Println(out)
	return nil
}

func buildShareEnvelope(ctx context.Context, ttl time.Duration) (*crumbshare.Envelope, error) {
	if shareProfiles || shareProfile != "" {
		st, err := openStore()
		if err != nil {
			return nil, err
		}
		defer st.Close()

		if shareProfiles {
			profiles, err := st.ProfileMap(ctx, domainName)
			if err != nil {
				return nil, err
			}
			if len(profiles) == 0 {
				return nil, fmt.Errorf("no profiles saved for %s", domainName)
			}
			return crumbshare.NewProfileEnvelope(domainName, profiles, ttl), nil
		}

		cookies, err := st.ProfileCookies(ctx, domainName, shareProfile)
		if err != nil {
			return nil, err
		}
		return crumbshare.NewCookieEnvelope(domainName, cookies, ttl), nil
	}

	cookies, err := collectCookies(ctx)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies matched %s", domainName)
	}
	log.Debug().Int("cookies", len(cookies)).Str("domain", domainName).Msg("sharing cookies")
	return crumbshare.NewCookieEnvelope(domainName, cookies, ttl), nil
}

func renderShare(env *crumbshare.Envelope, password string) (string, error) {
	if shareTokenOnly {
		if password != "" {
			return "", errors.New("--token-only emits a plain token; drop it or the password")
		}
		return crumbshare.EncodeEnvelope(env)
	}
	if sharePageURL != "" {
		return crumbshare.BuildShareURL(sharePageURL, env, password)
	}
	frag, err := crumbshare.BuildShareFragment(env, password)
	if err != nil {
		return "", err
	}
	return "#" + frag, nil
}

// promptNewPassword asks twice and warns on weak choices. The score is
// advisory; any non-empty password is accepted.
func promptNewPassword() (string, error) {
	pw, err := promptPassword("share password: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("empty password")
	}
	confirm, err := promptPassword("confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	if s := crumbshare.EvaluatePasswordStrength(pw); s.Level == crumbshare.StrengthWeak {
		for _, f := range s.Feedback {
			log.Warn().Msg("weak password: " + f)
		}
	}
	return pw, nil
}

func strength(ctx *cli.Context) error {
	password := ctx.Args().First()
	if password == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if password == "" {
		var err error
		password, err = promptPassword("password: ")
		if err != nil {
			printRuntimeErr(ctx, "strength", "read_password", err)
			return nil
		}
	}
	s := crumbshare.EvaluatePasswordStrength(password)
	fmt.Printf("score\t: %d\nlevel\t: %s\n", s.Score, s.Level)
	for _, f := range s.Feedback {
		fmt.Printf("hint\t: %s\n", f)
	}
	return nil
}
