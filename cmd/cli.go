package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/christophgockel/fake-ci/internal/dockerx"
	"github.com/christophgockel/fake-ci/internal/fakeciio"
	"github.com/christophgockel/fake-ci/internal/fsio"
	"github.com/christophgockel/fake-ci/internal/gitlabci"
	"github.com/christophgockel/fake-ci/internal/gitremote"
	"github.com/christophgockel/fake-ci/internal/orchestrator"
	"github.com/christophgockel/fake-ci/internal/progress"
	"github.com/christophgockel/fake-ci/internal/prompt"
	"github.com/christophgockel/fake-ci/internal/settingsfile"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// imageTag is the base image built from dockerx.DefaultDockerfile, which
// the checkout container runs; the job container runs the job's own image.
const imageTag = "fake-ci:latest"

// settingsFileName is fake-ci's own settings file. Its location is fixed,
// unlike the pipeline file, which --configuration-file may override.
const settingsFileName = ".fake-ci.yml"

// Version information, populated by ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	app := &cli.App{
		Name:                 "fake-ci",
		Usage:                "Run a GitLab CI pipeline's jobs locally, in containers",
		Version:              Version,
		EnableBashCompletion: true,
		Before:               beforeAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "configuration-file",
				Aliases: []string{"f"},
				Usage:   "path to the pipeline definition",
				Value:   ".gitlab-ci.yml",
				EnvVars: []string{"FAKE_CI_FILE"},
			},
			&cli.StringFlag{
				Name:    "workdir",
				Aliases: []string{"w"},
				Usage:   "directory to run in",
				Value:   ".",
				EnvVars: []string{"FAKE_CI_WORKDIR"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "print resolved git and host details before running",
				EnvVars: []string{"FAKE_CI_DEBUG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress step-by-step progress output",
				EnvVars: []string{"FAKE_CI_QUIET"},
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			printCommand(),
			imageCommand(),
			pruneCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// beforeAction applies --workdir before any command runs, so every
// subsequent os.Getwd() call in this package sees the requested directory.
func beforeAction(c *cli.Context) error {
	if dir := c.String("workdir"); dir != "" && dir != "." {
		if err := os.Chdir(dir); err != nil {
			return fmt.Errorf("changing to workdir %s: %w", dir, err)
		}
	}
	if c.Bool("debug") {
		fmt.Fprintf(os.Stderr, "fake-ci %s (%s, built %s)\n", Version, Commit, BuildTime)
	}
	return nil
}

// newProgress returns a progress.Printer honouring --quiet.
func newProgress(c *cli.Context) *progress.Printer {
	if c.Bool("quiet") {
		return progress.NewQuietPrinter()
	}
	return progress.NewPrinter()
}

// describe prefixes err's message with its kind, so the same failure looks
// the same regardless of which layer surfaced it.
func describe(err error) string {
	var fileFailure fsio.FileFailure
	var gitFailure gitremote.GitFailure
	var settingsFailure settingsfile.SyntaxFailure
	var unknownJob orchestrator.UnknownJob
	var executionFailure orchestrator.ExecutionFailure
	var userAbort UserAbort
	var includeFailure gitlabci.IncludeFailure
	var parseFailure gitlabci.ParseFailure
	var templateNotFound gitlabci.TemplateNotFound
	var unknownNeedsJob gitlabci.UnknownNeedsJob

	switch {
	case errors.As(err, &includeFailure):
		return fmt.Sprintf("include error: %v", err)
	case errors.As(err, &parseFailure):
		return fmt.Sprintf("parse error: %v", err)
	case errors.As(err, &templateNotFound):
		return fmt.Sprintf("template error: %v", err)
	case errors.As(err, &unknownNeedsJob):
		return fmt.Sprintf("needs error: %v", err)
	case errors.As(err, &fileFailure):
		return fmt.Sprintf("file error: %v", err)
	case errors.As(err, &gitFailure):
		return fmt.Sprintf("git error: %v", err)
	case errors.As(err, &settingsFailure):
		return fmt.Sprintf("settings error: %v", err)
	case errors.As(err, &unknownJob):
		return fmt.Sprintf("unknown job: %v", err)
	case errors.As(err, &executionFailure):
		return fmt.Sprintf("execution error: %v", err)
	case errors.As(err, &userAbort):
		return fmt.Sprintf("aborted: %v", err)
	default:
		return err.Error()
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a single job",
		ArgsUsage: "<job>",
		Action: func(c *cli.Context) error {
			jobName := c.Args().First()
			if jobName == "" {
				return fmt.Errorf("run requires a job name")
			}

			ctx := context.Background()
			pipeline, details, err := loadPipeline(ctx, c)
			if err != nil {
				return err
			}
			if c.Bool("debug") {
				fmt.Fprintf(os.Stderr, "branch=%s commit=%s host=%s\n", details.Branch, details.ShortCommit, details.Host)
			}

			exec, err := dockerx.NewExecutor()
			if err != nil {
				return err
			}

			p := prompt.NewStdPrompt(os.Stdin, os.Stdout)
			prog := newProgress(c)

			workdir, err := os.Getwd()
			if err != nil {
				return err
			}

			return orchestrator.Run(ctx, exec, p, prog, pipeline, orchestrator.Request{
				JobName:     jobName,
				ImageTag:    imageTag,
				ProjectDir:  workdir,
				CheckoutRef: details.CommitSHA,
			})
		},
	}
}

func printCommand() *cli.Command {
	return &cli.Command{
		Name:  "print",
		Usage: "print the fully resolved pipeline configuration",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			merged, _, err := loadMergedConfiguration(ctx, c)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(merged)
			if err != nil {
				return fmt.Errorf("rendering configuration: %w", err)
			}

			fmt.Println(string(out))
			return nil
		},
	}
}

func imageCommand() *cli.Command {
	return &cli.Command{
		Name:  "image",
		Usage: "build the job image if it's missing",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "rebuild the image even if it already exists"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			exec, err := dockerx.NewExecutor()
			if err != nil {
				return err
			}

			p := prompt.NewStdPrompt(os.Stdin, os.Stdout)

			needsBuild, err := exec.ImageNeedsToBeBuilt(ctx, imageTag)
			if err != nil {
				return err
			}

			if c.Bool("force") || needsBuild {
				p.Info("Building Fake CI image")
				return exec.BuildImage(ctx, imageTag, []byte(dockerx.DefaultDockerfile))
			}

			p.Info("Image is up-to-date")
			return nil
		},
	}
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "remove every container, volume and image this tool created",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			exec, err := dockerx.NewExecutor()
			if err != nil {
				return err
			}

			p := prompt.NewStdPrompt(os.Stdin, os.Stdout)
			if p.Confirm("Do you really want to prune all artifacts?") != prompt.Yes {
				return UserAbort{Action: "prune"}
			}

			containers, volumes, images, err := exec.PruneAll(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Pruned %d containers\n", containers)
			fmt.Printf("Pruned %d volumes\n", volumes)
			fmt.Printf("Pruned %d images\n", images)
			return nil
		},
	}
}

// loadMergedConfiguration reads, includes-resolves and merges the pipeline
// file, without yet projecting it into execution-ready jobs.
func loadMergedConfiguration(ctx context.Context, c *cli.Context) (*gitlabci.GitLabConfiguration, gitremote.Details, error) {
	workdir, err := os.Getwd()
	if err != nil {
		return nil, gitremote.Details{}, err
	}

	reader := fsio.NewRealReader()

	resolver, err := gitremote.Open(workdir)
	if err != nil {
		return nil, gitremote.Details{}, err
	}
	details, err := resolver.Read()
	if err != nil {
		return nil, details, err
	}

	settings, err := settingsfile.Load(ctx, reader, settingsFileName)
	if err != nil {
		return nil, details, err
	}

	host := settings.Settings.GitLab.Host
	if !settings.FromFile && details.Host != "" {
		host = details.Host
	}

	data, err := reader.FetchLocal(ctx, c.String("configuration-file"))
	if err != nil {
		return nil, details, err
	}

	root, err := gitlabci.Parse(data)
	if err != nil {
		return nil, details, err
	}

	included, err := gitlabci.ResolveIncludes(ctx, reader, host, root, gitlabci.RootOrigin(workdir))
	if err != nil {
		return nil, details, err
	}

	return gitlabci.MergeIncluded(root, included), details, nil
}

// loadPipeline goes one step further than loadMergedConfiguration,
// projecting the merged configuration into execution-ready jobs.
func loadPipeline(ctx context.Context, c *cli.Context) (gitlabci.CiDefinition, gitremote.Details, error) {
	merged, details, err := loadMergedConfiguration(ctx, c)
	if err != nil {
		return nil, details, err
	}

	workdir, err := os.Getwd()
	if err != nil {
		return nil, details, err
	}

	runtimeContext := fakeciio.Context{
		WorkDir:   workdir,
		Branch:    details.Branch,
		CommitSHA: details.CommitSHA,
		ImageTag:  imageTag,
	}

	definition, err := gitlabci.BuildDefinition(merged, runtimeContext)
	if err != nil {
		return nil, details, err
	}

	return definition, details, nil
}
