package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/page"
	"github.com/thalesor/repoprovas/core/views"
)

// opener is the part of a page used to open one of its tests.
type opener interface {
	SetSession(token string)
	Load(ctx context.Context) error
	Open(ctx context.Context, testID int) (exam.Test, views.Snapshot, <-chan views.Result, error)
}

func (cli *commandLine) openCmd() *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "open TEST_ID",
		Short: "Print the PDF link of a test and count the view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return errors.Errorf("test id must be a positive number (got %q)", args[0])
			}
			group, err := grouping(by)
			if err != nil {
				return err
			}
			return cli.openTest(cmd.Context(), cmd.OutOrStdout(), group, id)
		},
	}
	cmd.Flags().StringVar(&by, "by", byDisciplines, "page the test is opened from: disciplines or teachers")
	return cmd
}

func (cli *commandLine) openTest(ctx context.Context, w io.Writer, by string, testID int) error {
	alerts := cli.newAlerts()
	var p opener
	if by == byTeachers {
		p = page.NewInstructorsPage(cli.pageOptions(alerts))
	} else {
		p = page.NewDisciplinesPage(cli.pageOptions(alerts))
	}
	p.SetSession(cli.token)
	if err := p.Load(ctx); err != nil {
		fmt.Fprint(w, renderAlerts(alerts.Active()))
		return err
	}

	t, _, results, err := p.Open(ctx, testID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(t.Name), t.PdfURL)

	select {
	case res := <-results:
		if res.Err != nil {
			fmt.Fprintln(w, noticeStyle.Render("contador de visualizações não atualizado"))
		}
		if badge, ok := res.Badge(); ok {
			fmt.Fprintf(w, "visualizações: %s\n", badge)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
