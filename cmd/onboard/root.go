package main

import (
	"github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"

	"github.com/portfolio-studio/engine/internal/github"
	"github.com/portfolio-studio/engine/internal/session"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/storage"
)

const sessionFile = "session.json"

type options struct {
	apiURL    string
	token     string
	local     bool
	stateDir  string
	githubAPI string
	logLevel  string

	// set by tests
	stateFS    billy.Filesystem
	newBackend func(cmd *cobra.Command) (backend, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{})
}

func newRootCmdWith(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "onboard",
		Short:         "Fill in and publish the portfolio content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := logger.InitWriter(cmd.ErrOrStderr(), o.logLevel, "console")
			return err
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.apiURL, "api", "http://127.0.0.1:8080", "base URL of the content API")
	f.StringVar(&o.token, "token", "", "bearer token for the content API")
	f.BoolVar(&o.local, "local", false, "edit the content directories directly instead of calling the API")
	f.StringVar(&o.stateDir, "state-dir", ".portfolio", "directory holding the onboarding session")
	f.StringVar(&o.githubAPI, "github-api", github.DefaultBaseURL, "GitHub API base URL")
	f.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newApplyCmd(o),
		newStatusCmd(o),
		newResetCmd(o),
		newGitHubTokenCmd(o),
		newUploadResumeCmd(o),
		newExportCmd(o),
	)
	return root
}

func (o *options) session(cmd *cobra.Command) (session.Storage, error) {
	if o.stateFS == nil {
		fs, err := storage.OpenDir(cmd.Context(), o.stateDir)
		if err != nil {
			return nil, err
		}
		o.stateFS = fs
	}
	return session.NewFileStorage(o.stateFS, sessionFile), nil
}

func (o *options) backend(cmd *cobra.Command) (backend, error) {
	if o.newBackend != nil {
		return o.newBackend(cmd)
	}
	if o.local {
		return openLocal(cmd.Context())
	}
	return openRemote(o.apiURL, o.token), nil
}
