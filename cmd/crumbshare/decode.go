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
	decodePassword string
	decodeDomain   string
	decodeFormat   string
	decodeOutput   string
	decodeProfile  string
	decodeSave     bool
	decodeName     string

	decodeFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "password for encrypted payloads",
			Destination: &decodePassword,
		},
		cli.StringFlag{
			Name:        "domain, d",
			Usage:       "domain hint for the keyring lookup",
			Destination: &decodeDomain,
		},
		cli.StringFlag{
			Name:        "format, f",
			Usage:       "output format: json, netscape or header (default: json)",
			Destination: &decodeFormat,
		},
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "write to this file instead of stdout",
			Destination: &decodeOutput,
		},
		cli.StringFlag{
			Name:        "profile",
			Usage:       "pick one profile out of a profile payload",
			Destination: &decodeProfile,
		},
		cli.BoolFlag{
			Name:        "save",
			Usage:       "save the decoded cookies into the profile store (default: false)",
			Destination: &decodeSave,
		},
		cli.StringFlag{
			Name:        "name",
			Usage:       "profile name used with --save (default: shared)",
			Value:       "shared",
			Destination: &decodeName,
		},
	}

	inspectFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "password for encrypted payloads",
			Destination: &decodePassword,
		},
		cli.StringFlag{
			Name:        "domain, d",
			Usage:       "domain hint for the keyring lookup",
			Destination: &decodeDomain,
		},
	}
)

func decode(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return printErrWithCmdHelp(ctx, errors.New("no share link or token provided"))
	}
	if arg == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	env, err := decodeArg(arg, true)
	if err != nil {
		printRuntimeErr(ctx, "decode", "decode", err)
		return nil
	}

	if decodeSave {
		if err := saveDecoded(context.Background(), env); err != nil {
			printRuntimeErr(ctx, "decode", "save", err)
			return nil
		}
	}

	format := decodeFormat
	if format == "" {
		format = cfg.DefaultFormat
	}
	cookies, err := pickCookies(env)
	if err != nil {
		printRuntimeErr(ctx, "decode", "select", err)
		return nil
	}
	if err := writeCookies(cookies, format, decodeOutput); err != nil {
		printRuntimeErr(ctx, "decode", "write", err)
	}
	return nil
}

// decodeArg turns a URL or bare token into an envelope. Encrypted
// payloads resolve their password from the flag, environment, keyring
// and finally a prompt when prompt is set.
func decodeArg(arg string, prompt bool) (*crumbshare.Envelope, error) {
	ext := crumbshare.ExtractToken(arg)
	if ext == nil {
		env, err := crumbshare.DecodeEnvelope(arg)
		if err != nil {
			return nil, friendlyDecodeErr(err)
		}
		return env, nil
	}

	log.Debug().Str("kind", string(ext.Kind)).Bool("encrypted", ext.Encrypted).Msg("share payload found")
	if !ext.Encrypted {
		env, err := crumbshare.DecodeEnvelope(ext.Token)
		if err != nil {
			return nil, friendlyDecodeErr(err)
		}
		return env, nil
	}

	password, err := resolvePassword(decodeDomain, decodePassword, prompt)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, errors.New("payload is encrypted; pass --password or set CRUMBSHARE_SHARE_PASSWORD")
	}
	env, err := crumbshare.DecodeEncryptedEnvelope(ext.Blob, password)
	if err != nil {
		return nil, friendlyDecodeErr(err)
	}
	return env, nil
}

func friendlyDecodeErr(err error) error {
	switch {
	case errors.Is(err, crumbshare.ErrExpired):
		return errors.New("share link has expired")
	case errors.Is(err, crumbshare.ErrDecryptionFailed):
		return errors.New("decryption failed: wrong password or corrupted payload")
	case errors.Is(err, crumbshare.ErrUnsupportedVersion):
		return errors.New("share link uses a newer format; update crumbshare")
	default:
		return err
	}
}

// pickCookies flattens the envelope to one cookie set for output.
func pickCookies(env *crumbshare.Envelope) ([]crumbshare.Cookie, error) {
	if env.Kind == crumbshare.KindCookies {
		return env.Cookies, nil
	}
	if decodeProfile != "" {
		cookies, ok := env.Profiles[decodeProfile]
		if !ok {
			return nil, fmt.Errorf("payload has no profile %q", decodeProfile)
		}
		return cookies, nil
	}
	if len(env.Profiles) == 1 {
		for _, cookies := range env.Profiles {
			return cookies, nil
		}
	}
	return nil, fmt.Errorf("payload carries %d profiles; pick one with --profile", len(env.Profiles))
}

func saveDecoded(ctx context.Context, env *crumbshare.Envelope) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if env.Kind == crumbshare.KindCookies {
		_, err := st.SaveProfile(ctx, env.Domain, decodeName, env.Cookies)
		if err == nil {
			log.Info().Str("domain", env.Domain).Str("profile", decodeName).Msg("profile saved")
		}
		return err
	}
	for name, cookies := range env.Profiles {
		if _, err := st.SaveProfile(ctx, env.Domain, name, cookies); err != nil {
			return err
		}
		log.Info().Str("domain", env.Domain).Str("profile", name).Msg("profile saved")
	}
	return nil
}

func inspect(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return printErrWithCmdHelp(ctx, errors.New("no share link or token provided"))
	}
	if arg == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	ext := crumbshare.ExtractToken(arg)
	if ext == nil {
		// Not a recognized fragment; maybe a bare token.
		env, err := crumbshare.DecodeEnvelope(arg)
		if err != nil {
			printRuntimeErr(ctx, "inspect", "decode", friendlyDecodeErr(err))
			return nil
		}
		printEnvelopeInfo(env, false)
		return nil
	}

	if ext.Encrypted {
		password, err := resolvePassword(decodeDomain, decodePassword, false)
		if err == nil && password != "" {
			env, err := crumbshare.DecodeEncryptedEnvelope(ext.Blob, password)
			if err != nil {
				printRuntimeErr(ctx, "inspect", "decrypt", friendlyDecodeErr(err))
				return nil
			}
			printEnvelopeInfo(env, true)
			return nil
		}
		fmt.Printf(`Share Payload
Kind`+"\t"+`: %s
Encrypted`+"\t"+`: yes (no password available; counts hidden)
`, ext.Kind)
		return nil
	}

	env, err := crumbshare.DecodeEnvelope(ext.Token)
	if err != nil {
		printRuntimeErr(ctx, "inspect", "decode", friendlyDecodeErr(err))
		return nil
	}
	printEnvelopeInfo(env, false)
	return nil
}

func printEnvelopeInfo(env *crumbshare.Envelope, encrypted bool) {
	enc := "no"
	if encrypted {
		enc = "yes"
	}
	expires := "never"
	if env.ExpiresAt > 0 {
		expires = time.UnixMilli(env.ExpiresAt).Format(time.RFC3339)
	}
	count := len(env.Cookies)
	unit := "cookies"
	if env.Kind == crumbshare.KindProfiles {
		count = len(env.Profiles)
		unit = "profiles"
	}
	fmt.Printf(`Share Payload
Kind`+"\t"+`: %s
Encrypted`+"\t"+`: %s
Domain`+"\t"+`: %s
Entries`+"\t"+`: %d %s
Created`+"\t"+`: %s
Expires`+"\t"+`: %s
`, env.Kind, enc, env.Domain, count, unit,
		time.UnixMilli(env.CreatedAt).Format(time.RFC3339), expires)
}
