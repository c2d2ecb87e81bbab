// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	RootNotFoundId Id = iota + 1
	ConfigLoadFailedId
	InvalidMetadataId
	InvalidPatternId
	ArchiveExistsId
	AlreadyInstalledId
	InvalidArchiveId
	PermissionDeniedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# No contracts directory found!

The configured root does not exist or is not a directory, so the package
would contain no contract files.

## Things you can try:
- Run contractpack from the directory that holds your contracts
- Point it at the right directory:
~~~
$ contractpack manifest --root src/contracts
~~~

- Or set it once in contractpack.cue:
~~~cue
root: "src/contracts"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Search locations (in order of precedence):
1. The file given with --config
2. contractpack.cue in the current directory
3. config.cue in the user configuration directory

## Things you can try:
- Print the effective configuration:
~~~
$ contractpack config show
~~~

- Write a fresh default file and compare:
~~~
$ contractpack config init
~~~`,
	}

	invalidMetadataIssue = &Issue{
		id: InvalidMetadataId,
		mdMsg: `
# Invalid package metadata!

Every package needs a name, a semantic version and an author.

## Example:
~~~cue
metadata: {
	name:    "openzeppelin-contracts"
	version: "5.1.0"
	author:  "OpenZeppelin"
}
~~~

## Things you can try:
- Names start with a letter and use only letters, digits, '.', '_' and '-'
- Versions need all three parts, e.g. 1.0.0 rather than 1.0
- Run the checks on their own:
~~~
$ contractpack check
~~~`,
	}

	invalidPatternIssue = &Issue{
		id: InvalidPatternId,
		mdMsg: `
# Invalid include or exclude pattern!

Patterns are doublestar globs matched against paths relative to the root,
always written with forward slashes.

## Examples:
~~~cue
include: ["**/*.sol"]
exclude: ["mocks", "**/test/**"]
~~~`,
	}

	archiveExistsIssue = &Issue{
		id: ArchiveExistsId,
		mdMsg: `
# Archive already exists!

An archive for this name and version has already been built.

## Things you can try:
- Bump the version in your configuration
- Replace the existing archive:
~~~
$ contractpack build --overwrite
~~~`,
	}

	alreadyInstalledIssue = &Issue{
		id: AlreadyInstalledId,
		mdMsg: `
# Package already installed!

The destination already holds a directory for this package version.

## Things you can try:
- Install somewhere else with --dest
- Replace the installed copy:
~~~
$ contractpack install <archive> --overwrite
~~~`,
	}

	invalidArchiveIssue = &Issue{
		id: InvalidArchiveId,
		mdMsg: `
# Invalid package archive!

The archive was not produced by 'contractpack build', has been altered, or
contains entries that would be written outside the destination.

## Things you can try:
- Rebuild the archive from the original sources
- Check that the download completed
- Only install archives from sources you trust`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A directory under the contracts root, the output directory or the
install destination could not be read or written.

## Things you can try:
- Check file and directory permissions
- Exclude directories you cannot read:
~~~cue
exclude: ["private"]
~~~

- Build into a directory you own with --output`,
	}

	issues = map[Id]*Issue{
		rootNotFoundIssue.Id():     rootNotFoundIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		invalidMetadataIssue.Id():  invalidMetadataIssue,
		invalidPatternIssue.Id():   invalidPatternIssue,
		archiveExistsIssue.Id():    archiveExistsIssue,
		alreadyInstalledIssue.Id(): alreadyInstalledIssue,
		invalidArchiveIssue.Id():   invalidArchiveIssue,
		permissionDeniedIssue.Id(): permissionDeniedIssue,
	}
)

// Values returns every catalog issue, sorted by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for v := range maps.Values(issues) {
		values = append(values, v)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
