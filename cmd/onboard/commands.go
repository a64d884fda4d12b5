package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/portfolio-studio/engine/internal/github"
	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/services"
	"github.com/portfolio-studio/engine/internal/session"
	"github.com/portfolio-studio/engine/pkg/storage"
)

func newApplyCmd(o *options) *cobra.Command {
	var (
		file     string
		complete bool
	)
	cmd := &cobra.Command{
		Use:   "apply -f content.yaml",
		Short: "Overlay a content file on the saved content, validate every step and save",
		Long: "Each top-level key in the content file (personalInfo, skills, workExperience, education,\n" +
			"projects, contactForm, deployment, resume) replaces that part of the saved content as a whole.\n" +
			"Keys left out keep their saved values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			patch, err := yamlToJSON(raw)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			fl, err := o.openFlow(cmd)
			if err != nil {
				return err
			}
			defer fl.close()

			ctx := cmd.Context()
			if err := fl.store.LoadInitialData(ctx); err != nil {
				return err
			}
			fl.wizard.Prefill(ctx, fl.store.State().Reader())
			var decodeErr error
			fl.wizard.Update(func(d *models.OnboardingData) {
				decodeErr = overlay(d, patch)
			})
			if decodeErr != nil {
				return fmt.Errorf("decode %s: %w", file, decodeErr)
			}

			out := cmd.OutOrStdout()
			wiz := fl.wizard
			wiz.Open()
			for wiz.Current() > 0 {
				wiz.Prev()
			}
			for !wiz.IsLastStep() {
				step := wiz.CurrentStep()
				res, err := wiz.Next(ctx)
				if err != nil {
					return err
				}
				if !res.Valid {
					printValidation(out, step, res)
					wiz.Close()
					return fmt.Errorf("step %q is incomplete", step.Title)
				}
				fmt.Fprintf(out, "✓ %s\n", step.Title)
			}

			last := wiz.CurrentStep()
			if res := wiz.Validate(); !res.Valid {
				printValidation(out, last, res)
				wiz.Close()
				return fmt.Errorf("step %q is incomplete", last.Title)
			}
			fmt.Fprintf(out, "✓ %s\n", last.Title)

			if !complete {
				if err := wiz.SaveAndClose(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Progress saved")
				return nil
			}
			first, err := wiz.Complete(ctx)
			if err != nil {
				return err
			}
			if first {
				fmt.Fprintln(out, "Onboarding completed. Your portfolio is ready!")
			} else {
				fmt.Fprintln(out, "Onboarding completed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML content file")
	cmd.Flags().BoolVar(&complete, "complete", false, "mark onboarding completed after saving")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show onboarding progress and the saved content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fl, err := o.openFlow(cmd)
			if err != nil {
				return err
			}
			defer fl.close()

			ctx := cmd.Context()
			if err := fl.store.LoadInitialData(ctx); err != nil {
				return err
			}
			st := fl.store.State()
			out := cmd.OutOrStdout()

			steps := fl.wizard.Steps()
			if fl.wizard.IsCompleted() {
				fmt.Fprintln(out, "Onboarding: completed")
			} else {
				current := 0
				if raw, ok, _ := fl.session.Get(session.KeyLastStep); ok {
					if i, err := strconv.Atoi(raw); err == nil && i >= 0 && i < len(steps) {
						current = i
					}
				}
				fmt.Fprintf(out, "Onboarding: in progress (step %d/%d: %s)\n", current+1, len(steps), steps[current].Title)
			}

			enabled, err := fl.backend.GitHubEnabled(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "GitHub integration: %s\n", onOff(enabled))

			fmt.Fprintln(out, "Content:")
			fmt.Fprintf(out, "  personal info: %s <%s>\n", st.PersonalInfo.Name, st.PersonalInfo.Email)
			fmt.Fprintf(out, "  skills: %d\n", len(st.Skills))
			fmt.Fprintf(out, "  work experience: %d, education: %d\n", len(st.WorkExperience), len(st.Education))
			fmt.Fprintf(out, "  projects: %d\n", len(st.Projects))
			fmt.Fprintf(out, "  contact form: %s\n", st.ContactConfig.Service)
			if st.Resume.Empty() {
				fmt.Fprintln(out, "  resume: none")
			} else {
				fmt.Fprintf(out, "  resume: %s (%s)\n", st.Resume.FileName, st.Resume.OriginalName)
			}

			data := models.DefaultOnboardingData()
			data.PersonalInfo = st.PersonalInfo
			data.Skills = st.Skills
			data.WorkExperience = st.WorkExperience
			data.Education = st.Education
			data.Projects = st.Projects
			data.ContactForm = st.ContactConfig
			data.Resume = st.Resume

			fmt.Fprintln(out, "Steps:")
			for i, step := range steps {
				mark := "x"
				if res := fl.validator.Validate(data, step.Fields...); len(step.Fields) > 0 && !res.Valid {
					mark = " "
				}
				fmt.Fprintf(out, "  [%s] %d. %s\n", mark, i+1, step.Title)
			}
			return nil
		},
	}
}

func newResetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget onboarding progress; saved content is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fl, err := o.openFlow(cmd)
			if err != nil {
				return err
			}
			defer fl.close()
			fl.wizard.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "Onboarding reset")
			return nil
		},
	}
}

func newGitHubTokenCmd(o *options) *cobra.Command {
	var skipCheck bool
	cmd := &cobra.Command{
		Use:   "github-token <token>",
		Short: "Check a GitHub token and store it for the stats integration (empty disables it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			token := args[0]
			if token != "" && !skipCheck {
				u, err := github.NewClient(o.githubAPI).ValidateToken(ctx, token)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Token belongs to %s\n", u.Login)
			}
			b, err := o.backend(cmd)
			if err != nil {
				return err
			}
			if err := b.SetGitHubToken(ctx, token); err != nil {
				return err
			}
			fmt.Fprintf(out, "GitHub integration %s\n", onOff(token != ""))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "store the token without asking GitHub")
	return cmd
}

func newUploadResumeCmd(o *options) *cobra.Command {
	var noMeta bool
	cmd := &cobra.Command{
		Use:   "upload-resume <file>",
		Short: "Upload a PDF, DOC or DOCX resume and record it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fl, err := o.openFlow(cmd)
			if err != nil {
				return err
			}
			defer fl.close()

			ctx := cmd.Context()
			res, err := fl.backend.UploadResume(ctx, filepath.Base(args[0]), mimetype.Detect(data).String(), data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %s (%d bytes) to %s\n", res.OriginalName, res.Size, res.FilePath)
			if noMeta {
				return nil
			}
			meta := res.Meta()
			if err := fl.backend.SaveResume(ctx, meta); err != nil {
				return err
			}
			fl.store.SetResume(meta)
			fmt.Fprintln(out, "Resume details saved")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noMeta, "no-meta", false, "store the file without saving the resume details")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the site's data modules from the saved content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := o.backend(cmd)
			if err != nil {
				return err
			}
			files, err := b.Export(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dir == "" {
				for _, f := range files {
					fmt.Fprintf(out, "// %s\n%s\n", f.Filename, f.Content)
				}
				return nil
			}
			fs, err := storage.OpenDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			w := services.NewModuleWriter(fs)
			for _, f := range files {
				if err := w.Write(f); err != nil {
					return err
				}
				fmt.Fprintln(out, filepath.Join(dir, f.Filename))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", "", "directory to write the modules to (default: print them)")
	return cmd
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
