package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type showCmd struct {
	markdown bool
	width    int
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "renders the dashboard in the terminal" }
func (*showCmd) Usage() string {
	return `dashctl show [-markdown] [-width N]

Renders the dashboard the way it would be sent to the display, styled for the
terminal. With -markdown the intermediate markdown is printed as is.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.markdown, "markdown", false, "Print the raw markdown.")
	f.IntVar(&c.width, "width", 80, "Word wrap width.")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	srv, err := openServer()
	if err != nil {
		return fail("%v", err)
	}
	defer srv.Close()

	content, err := srv.Display().Preview(ctx)
	if err != nil {
		return fail("could not load dashboard: %v", err)
	}

	if c.markdown {
		fmt.Fprint(stdout, content.Markdown)
		return subcommands.ExitSuccess
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(c.width))
	if err != nil {
		return fail("%v", err)
	}
	out, err := r.Render(content.Markdown)
	if err != nil {
		return fail("could not render dashboard: %v", err)
	}
	fmt.Fprint(stdout, out)
	return subcommands.ExitSuccess
}
