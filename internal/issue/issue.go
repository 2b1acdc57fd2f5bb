// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DependencyRootNotFoundId Id = iota + 1
	GateUnsatisfiedId
	ToolScriptNotFoundId
	NodeNotFoundId
	ToolInvocationFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

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

// Render renders the issue as terminal markdown using the given glamour
// style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	dependencyRootNotFoundIssue = &Issue{
		id: DependencyRootNotFoundId,
		mdMsg: `
# No node_modules directory found!

ngcc-jest walked up from the current directory to the filesystem root and
none of the directories on the way contained a ` + "`node_modules`" + ` folder.

## Things you can try:
- Run jest (and therefore ngcc-jest) from the root level of your project
- Install your dependencies first:
~~~
$ npm install
~~~
- If your install directory has another name, set it in ngcc-jest.cue:
~~~cue
dependency: dir_name: "node_modules"
~~~`,
		extLinks: []HttpLink{"https://docs.npmjs.com/cli/configuring-npm/folders"},
	}

	gateUnsatisfiedIssue = &Issue{
		id: GateUnsatisfiedId,
		mdMsg: `
# ngcc was not started!

Either the jest arguments contain an introspection flag
(` + "`--clearCache`, `--help`, `--init`, `--listTests`, `--showConfig`" + `)
or ` + "`@angular/core`" + ` is not installed under the resolved node_modules.

## Things you can try:
- Run ngcc-jest from the root level of your project
- Check that ` + "`@angular/core`" + ` is listed in package.json and installed
- To let introspection flags pass without an error, enable:
~~~cue
gate: skip_quietly: true
~~~`,
	}

	toolScriptNotFoundIssue = &Issue{
		id: ToolScriptNotFoundId,
		mdMsg: `
# ngcc entry point not found!

The ngcc main script could not be resolved inside node_modules.
ngcc ships with ` + "`@angular/compiler-cli`" + ` up to Angular 15.

## Things you can try:
- Install the compiler:
~~~
$ npm install --save-dev @angular/compiler-cli
~~~
- Point ngcc-jest at a different entry point with ` + "`tool.script`" + ``,
	}

	nodeNotFoundIssue = &Issue{
		id: NodeNotFoundId,
		mdMsg: `
# Node.js executable not found!

ngcc is a Node.js program and ngcc-jest needs ` + "`node`" + ` to start it.

## Things you can try:
- Make sure ` + "`node`" + ` is on your PATH
- Or configure it explicitly:
~~~
$ NGCC_JEST_TOOL_NODE_PATH=/usr/local/bin/node ngcc-jest run
~~~`,
		extLinks: []HttpLink{"https://nodejs.org/en/download"},
	}

	toolInvocationFailedIssue = &Issue{
		id: ToolInvocationFailedId,
		mdMsg: `
# ngcc failed!

ngcc exited with a non-zero status. Its own diagnostics are printed above.

## Things you can try:
- Remove stale ngcc artifacts and lock files, then retry:
~~~
$ rm -f node_modules/@angular/compiler-cli/ngcc/__ngcc_lock_file__
~~~
- Reinstall dependencies (` + "`npm ci`" + `)
- Run with ` + "`--verbose`" + ` to see the exact command line`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The ngcc-jest configuration file could not be read or did not match the schema.

## Things you can try:
- Check the CUE syntax of ` + "`ngcc-jest.cue`" + `
- Print the effective defaults:
~~~
$ ngcc-jest config dump
~~~`,
	}

	issues = map[Id]*Issue{
		dependencyRootNotFoundIssue.Id(): dependencyRootNotFoundIssue,
		gateUnsatisfiedIssue.Id():        gateUnsatisfiedIssue,
		toolScriptNotFoundIssue.Id():     toolScriptNotFoundIssue,
		nodeNotFoundIssue.Id():           nodeNotFoundIssue,
		toolInvocationFailedIssue.Id():   toolInvocationFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for i := range maps.Values(issues) {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
