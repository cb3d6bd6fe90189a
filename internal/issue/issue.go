// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NpmNotFoundId Id = iota + 1
	CommandNotFoundId
	InstallFailedId
	UserDeclinedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also: "
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	npmNotFoundIssue = &Issue{
		id: NpmNotFoundId,
		mdMsg: `
# npm not found!

runx delegates package installation to npm, but no npm binary was found
on your PATH.

## Things you can try:
- Install Node.js (npm ships with it): https://nodejs.org
- Point runx at a specific npm binary:
~~~
$ runx --npm /path/to/npm <command>
~~~

- Or set it once in your config file:
~~~toml
npm_path = "/path/to/npm"
~~~`,
		extLinks: []HttpLink{"https://docs.npmjs.com/downloading-and-installing-node-js-and-npm"},
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The requested command is not on your PATH, not in ./node_modules/.bin,
and could not be provisioned.

## Things you can try:
- Check for typos in the command name
- Name the package that provides the command explicitly:
~~~
$ runx --package <pkg> <command>
~~~

- Allow on-demand installation (drop --no-install)`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# Package installation failed!

npm exited non-zero while installing the requested packages into the
throwaway prefix. The ephemeral directory has been cleaned up; nothing
was left behind.

## Common causes:
- Package name does not exist in the registry
- Network or registry outage
- Version range matches nothing

## Things you can try:
- Re-run with --verbose to see the npm invocation
- Try installing the package manually:
~~~
$ npm install <pkg>
~~~`,
	}

	userDeclinedIssue = &Issue{
		id: UserDeclinedId,
		mdMsg: `
# Installation declined

The command requires installing a package, and the confirmation prompt
was answered with no.

## Things you can try:
- Re-run and confirm the prompt
- Skip the prompt entirely:
~~~
$ runx --yes <command>
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the runx configuration file.

## Configuration file locations:
- Linux: ~/.config/runx/config.toml
- macOS: ~/Library/Application Support/runx/config.toml
- Windows: %APPDATA%\runx\config.toml

## Things you can try:
- Recreate a default configuration:
~~~
$ runx config init
~~~

- Remove the config file to use defaults`,
	}

	issues = map[Id]*Issue{
		npmNotFoundIssue.Id():      npmNotFoundIssue,
		commandNotFoundIssue.Id():  commandNotFoundIssue,
		installFailedIssue.Id():    installFailedIssue,
		userDeclinedIssue.Id():     userDeclinedIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
