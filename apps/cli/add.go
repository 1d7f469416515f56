package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/page"
)

func (cli *commandLine) addCmd() *cobra.Command {
	var (
		nt   exam.NewTest
		list bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a new test",
		Long: "Submit a new test. Every flag is required; run with --list to see the categories and disciplines,\n" +
			"and with --list --discipline ID to see who teaches a discipline.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return cli.listChoices(cmd.Context(), cmd.OutOrStdout(), nt.DisciplineID)
			}
			return cli.addTest(cmd.Context(), cmd.OutOrStdout(), nt)
		},
	}
	cmd.Flags().StringVar(&nt.Name, "name", "", "test name, eg. 2021.1")
	cmd.Flags().StringVar(&nt.PdfURL, "pdf", "", "link to the PDF")
	cmd.Flags().IntVar(&nt.CategoryID, "category", 0, "category id")
	cmd.Flags().IntVar(&nt.DisciplineID, "discipline", 0, "discipline id")
	cmd.Flags().IntVar(&nt.TeacherID, "teacher", 0, "teacher id")
	cmd.Flags().BoolVar(&list, "list", false, "list the available choices instead of submitting")
	return cmd
}

func (cli *commandLine) newTestPage(ctx context.Context, alerts *alert.Queue, disciplineID int) (*page.NewTestPage, error) {
	p := page.NewNewTestPage(cli.pageOptions(alerts))
	p.SetSession(cli.token)
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	if disciplineID > 0 {
		if err := p.SelectDiscipline(ctx, disciplineID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (cli *commandLine) listChoices(ctx context.Context, w io.Writer, disciplineID int) error {
	alerts := cli.newAlerts()
	p, err := cli.newTestPage(ctx, alerts, disciplineID)
	if err != nil {
		fmt.Fprint(w, renderAlerts(alerts.Active()))
		return err
	}

	fmt.Fprintln(w, titleStyle.Render("Categorias"))
	for _, c := range p.Categories() {
		fmt.Fprintf(w, "  %d  %s\n", c.ID, c.Name)
	}
	fmt.Fprintln(w, titleStyle.Render("Disciplinas"))
	for _, d := range p.Disciplines() {
		fmt.Fprintf(w, "  %d  %s\n", d.ID, d.Name)
	}
	if disciplineID > 0 {
		fmt.Fprintln(w, titleStyle.Render("Professores"))
		if !p.TeachersAvailable() {
			fmt.Fprintln(w, noticeStyle.Render("  Nenhum professor para essa disciplina"))
		}
		for _, t := range p.Teachers() {
			fmt.Fprintf(w, "  %d  %s\n", t.ID, t.Name)
		}
	}
	return nil
}

func (cli *commandLine) addTest(ctx context.Context, w io.Writer, nt exam.NewTest) error {
	alerts := cli.newAlerts()
	p := page.NewNewTestPage(cli.pageOptions(alerts))
	p.SetSession(cli.token)

	t, err := p.Submit(ctx, nt)
	fmt.Fprint(w, renderAlerts(alerts.Active()))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d  %s\n", t.ID, t.Name)
	return nil
}
