package main

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DESCRIPTION = `
Crumbshare packs browser cookies and extension profiles into
self-contained share links, optionally encrypted with a password,
and tracks whether a loaded profile has drifted from the cookies
currently sitting in the browser.
`

const (
	ShareDescription = `The share command reads cookies from a saved profile, a browser
cookie store or an inline payload and prints a share link (or a
bare fragment) that carries them. Pass a password to encrypt the
payload with AES-256-GCM.

Example:
        crumbshare share --domain example.com --browser chrome --url https://app.example.com/settings
        crumbshare share --domain example.com --profile work --ask-password

`
	DecodeDescription = `The decode command extracts the share token from a URL (or takes
a bare token), decodes it and prints the carried cookies or
profiles. Encrypted tokens need the password via --password,
the CRUMBSHARE_SHARE_PASSWORD variable, the keyring or a prompt.

Example:
        crumbshare decode 'https://app.example.com/#ce-profiles-extension-share=eyJ2Ij...'
        crumbshare decode --format netscape --output cookies.txt <token>

`
	InspectDescription = `The inspect command shows what a share link carries without
printing any cookie values: payload kind, encryption, domain,
entry counts and the creation/expiry timestamps.

Example:
        crumbshare inspect 'https://app.example.com/#ce-cookies-extension-share-encrypted=data=...'

`
	SaveDescription = `The save command imports cookies from a browser store or an
inline payload and stores them as a named profile for the domain.

Example:
        crumbshare save work --domain example.com --browser chrome
        crumbshare save staging --domain example.com --cookies-file cookies.json

`
	LoadDescription = `The load command prints the cookies of a saved profile and
records it as the profile currently loaded for the domain, which
arms drift detection.

Example:
        crumbshare load work --domain example.com --format header

`
	DriftDescription = `The drift command compares the cookies currently in a browser
store (or an inline payload) against the profile recorded by the
load command and reports whether they have drifted apart.

Example:
        crumbshare drift --domain example.com --browser chrome

`
	ProfilesDescription = `The profiles command manages saved profiles: list them for a
domain, show one, or delete one.

Example:
        crumbshare profiles list --domain example.com
        crumbshare profiles delete work --domain example.com

`
	WatchDescription = `The watch command follows a browser cookie store and re-runs the
drift check whenever the browser writes to it. Stop with Ctrl+C.

Example:
        crumbshare watch --domain example.com --browser firefox

`
	StoresDescription = `The stores command lists the browser cookie stores found on this
machine along with their detected format.

Example:
        crumbshare stores

`
	StrengthDescription = `The strength command scores a share password and prints
suggestions for improving it. With no argument it prompts without
echoing.

Example:
        crumbshare strength 'correct horse battery staple'

`
)
