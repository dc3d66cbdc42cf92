package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type todosCmd struct {
	add string
}

func (*todosCmd) Name() string     { return "todos" }
func (*todosCmd) Synopsis() string { return "lists the todos, or adds one" }
func (*todosCmd) Usage() string {
	return `dashctl todos [-add <text>]

Prints the todo list in display order. With -add, a todo with the given text
is appended first. A running server picks the change up from the data file.
`
}

func (c *todosCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "Append a todo with this text.")
}

func (c *todosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	srv, err := openServer()
	if err != nil {
		return fail("%v", err)
	}
	defer srv.Close()
	svc := srv.Dashboard()

	if c.add != "" {
		todos, err := svc.AddTodo(ctx)
		if err != nil {
			return fail("could not add todo: %v", err)
		}
		if err := svc.UpdateTodoText(ctx, todos[len(todos)-1].ID, c.add); err != nil {
			return fail("could not set todo text: %v", err)
		}
	}

	todos, err := svc.ListTodos(ctx)
	if err != nil {
		return fail("could not load todos: %v", err)
	}
	for i, td := range todos {
		fmt.Fprintf(stdout, "%2d. %s\n", i+1, td.Text)
	}
	return subcommands.ExitSuccess
}
