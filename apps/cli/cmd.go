package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/page"
	"github.com/thalesor/repoprovas/services/backend/httpclient"
	logsvc "github.com/thalesor/repoprovas/services/logger"
)

var (
	// mockable
	loadConfigFunc = core.NewConfig
	newBackendFunc = func(conf *core.Config) (exam.Backend, error) {
		client, err := httpclient.New(conf.Backend.BaseURL, conf.Backend.Timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	errHelp = errors.New("help provided")
)

const (
	byDisciplines = "disciplines"
	byTeachers    = "teachers"
)

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	backend exam.Backend
	policy  exam.CountPolicy

	// flags
	token   string
	verbose bool

	sync func()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "repoprovas",
		Short:         "Browse and share the tests of the RepoProvas archive",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.sync != nil {
				cli.sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.PersistentFlags().StringVarP(&cli.token, "token", "t", "", "session token (defaults to session.token)")
	root.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "enable debug logs")

	root.AddCommand(
		cli.browseCmd(),
		cli.treeCmd(),
		cli.openCmd(),
		cli.addCmd(),
		cli.tokenCmd(),
	)
	return root
}

// setup loads the config and the collaborator client. Dependencies set beforehand are kept.
func (cli *commandLine) setup() error {
	if cli.conf == nil {
		conf, err := loadConfigFunc()
		if err != nil {
			return errors.Wrap(err, "loading config")
		}
		cli.conf = conf
	}
	if cli.token == "" {
		cli.token = cli.conf.Session.Token
	}

	if cli.logger == nil {
		zl, err := logsvc.NewZap(cli.verbose)
		if err != nil {
			return errors.Wrap(err, "setting up zap")
		}
		logger := logsvc.NewRollbarLogger(zl.Named("CLI"), cli.conf)
		logger.Enable(false)
		cli.logger = logger
		cli.sync = logger.Sync
	}

	policy, err := exam.PolicyByName(cli.conf.Views.TermCountPolicy)
	if err != nil {
		return err
	}
	cli.policy = policy

	if cli.backend == nil {
		backend, err := newBackendFunc(cli.conf)
		if err != nil {
			return errors.Wrap(err, "setting up backend client")
		}
		cli.backend = backend
	}
	return nil
}

func (cli *commandLine) pageOptions(alerts *alert.Queue) page.Options {
	return page.Options{
		Backend:  cli.backend,
		Notifier: alerts,
		Logger:   cli.logger,
		Policy:   cli.policy,
		Parallel: cli.conf.Views.ParallelPageLoad,
	}
}

func (cli *commandLine) newAlerts() *alert.Queue {
	return alert.NewQueue(cli.conf.Alert.AutoHide)
}

// grouping normalizes the --by flag.
func grouping(by string) (string, error) {
	by = strings.ToLower(strings.TrimSpace(by))
	switch by {
	case byDisciplines, byTeachers:
		return by, nil
	default:
		return "", errors.Errorf("--by must be %q or %q (got %q)", byDisciplines, byTeachers, by)
	}
}
