package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/page"
)

func (cli *commandLine) treeCmd() *cobra.Command {
	var by, search string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tests grouped by discipline or by teacher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := grouping(by)
			if err != nil {
				return err
			}
			return cli.printTree(cmd.Context(), cmd.OutOrStdout(), group, search)
		},
	}
	cmd.Flags().StringVar(&by, "by", byDisciplines, "grouping: disciplines or teachers")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by discipline (or teacher) name")
	return cmd
}

func (cli *commandLine) printTree(ctx context.Context, w io.Writer, by, search string) error {
	alerts := cli.newAlerts()
	lines, err := cli.loadLines(ctx, alerts, by, search)
	if err != nil {
		fmt.Fprint(w, renderAlerts(alerts.Active()))
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, noticeStyle.Render("Nenhum resultado"))
		return nil
	}
	fmt.Fprint(w, renderLines(lines, -1))
	return nil
}

// loadLines loads the page of the given grouping once and returns its rendered rows.
func (cli *commandLine) loadLines(ctx context.Context, alerts *alert.Queue, by, search string) ([]line, error) {
	if by == byTeachers {
		p := page.NewInstructorsPage(cli.pageOptions(alerts))
		p.SetSession(cli.token)
		p.SetSearch(search)
		if err := p.Load(ctx); err != nil {
			return nil, err
		}
		return teacherLines(p.Tree()), nil
	}

	p := page.NewDisciplinesPage(cli.pageOptions(alerts))
	p.SetSession(cli.token)
	p.SetSearch(search)
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	return termLines(p.Tree()), nil
}
