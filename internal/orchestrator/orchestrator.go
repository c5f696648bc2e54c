// Package orchestrator drives a single job through its container
// lifecycle: image check/build, checkout, artifact staging, script
// execution, artifact extraction. It is deliberately thin - every actual
// side effect goes through the Executor seam, so the sequence itself can
// be exercised without a real Docker daemon.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/christophgockel/fake-ci/internal/ciyaml"
	"github.com/christophgockel/fake-ci/internal/dockerx"
	"github.com/christophgockel/fake-ci/internal/gitlabci"
	"github.com/christophgockel/fake-ci/internal/prompt"
	"github.com/christophgockel/fake-ci/internal/shellfmt"
)

// Executor is everything the orchestrator needs from the Docker daemon.
// dockerx.Executor satisfies it; tests satisfy it with a fake.
type Executor interface {
	ImageNeedsToBeBuilt(ctx context.Context, tag string) (bool, error)
	BuildImage(ctx context.Context, tag string, dockerfile []byte) error
	PruneCheckoutContainer(ctx context.Context) error
	StartCheckoutContainer(ctx context.Context, containerName, imageTag, projectDir string) (string, error)
	PruneJobContainer(ctx context.Context) error
	StartJobContainer(ctx context.Context, containerName, imageTag, sourceContainerID string) (string, error)
	Exec(ctx context.Context, containerID, commands string, out io.Writer) error
}

// Progress is the subset of *progress.Printer the orchestrator drives.
type Progress interface {
	JobHeader(jobName, imageTag string)
	Info(message string)
	JobComplete(jobName string, duration time.Duration, success bool)
}

// Request carries everything Run needs about the invocation: which job,
// in which image, checked out from which project directory and ref.
type Request struct {
	JobName       string
	ImageTag      string
	ProjectDir    string
	CheckoutRef   string
	ArtifactsRoot string
}

// Run executes a single job end to end, following the same sequence as
// the source's run command: build the image if needed, start a checkout
// container, stage any required artifacts, start the job container, run
// the job's script, and extract its own artifacts if it declares any.
func Run(ctx context.Context, exec Executor, prompter prompt.Prompter, progress Progress, definition gitlabci.CiDefinition, req Request) error {
	job, ok := definition[req.JobName]
	if !ok {
		return UnknownJob{Name: req.JobName}
	}

	start := time.Now()
	progress.JobHeader(req.JobName, req.ImageTag)

	needsBuild, err := exec.ImageNeedsToBeBuilt(ctx, req.ImageTag)
	if err != nil {
		return ExecutionFailure{Stage: "checking image", Cause: err}
	}
	if needsBuild {
		prompter.Info("Building Fake CI image first")
		if err := exec.BuildImage(ctx, req.ImageTag, []byte(dockerx.DefaultDockerfile)); err != nil {
			return ExecutionFailure{Stage: "building image", Cause: err}
		}
	}

	progress.Info("Checking out code")
	if err := exec.PruneCheckoutContainer(ctx); err != nil {
		return ExecutionFailure{Stage: "pruning checkout container", Cause: err}
	}
	checkoutContainerID, err := exec.StartCheckoutContainer(ctx, "fake-ci-checkout", req.ImageTag, req.ProjectDir)
	if err != nil {
		return ExecutionFailure{Stage: "starting checkout container", Cause: err}
	}

	if err := checkoutCode(ctx, exec, checkoutContainerID, req.CheckoutRef, os.Stdout); err != nil {
		return ExecutionFailure{Stage: "checking out code", Cause: err}
	}

	if err := stageCheckout(ctx, exec, checkoutContainerID, os.Stdout); err != nil {
		return ExecutionFailure{Stage: "staging job workspace", Cause: err}
	}

	if len(job.RequiredArtifacts) > 0 {
		progress.Info("Preparing artifacts")
		if err := prepareArtifacts(ctx, exec, checkoutContainerID, job.RequiredArtifacts, os.Stdout); err != nil {
			return ExecutionFailure{Stage: "preparing artifacts", Cause: err}
		}
	} else {
		progress.Info("No artifacts to prepare")
	}

	progress.Info("Running job")
	if err := exec.PruneJobContainer(ctx); err != nil {
		return ExecutionFailure{Stage: "pruning job container", Cause: err}
	}
	jobImage, err := shellfmt.Interpolate(ctx, job.Image, job.Variables)
	if err != nil {
		return ExecutionFailure{Stage: "interpolating job image", Cause: err}
	}
	jobContainerID, err := exec.StartJobContainer(ctx, "fake-ci-job", jobImage, checkoutContainerID)
	if err != nil {
		return ExecutionFailure{Stage: "starting job container", Cause: err}
	}

	script := shellfmt.CombineLines(job.Script)
	runErr := exec.Exec(ctx, jobContainerID, withVariables(job.Variables, script), os.Stdout)

	if len(job.Artifacts) > 0 {
		progress.Info("Extracting artifacts")
		if err := extractArtifacts(ctx, exec, jobContainerID, req.JobName, job.Artifacts, os.Stdout); err != nil {
			return ExecutionFailure{Stage: "extracting artifacts", Cause: err}
		}
	} else {
		progress.Info("No artifacts to be extracted")
	}

	progress.JobComplete(req.JobName, time.Since(start), runErr == nil)

	if runErr != nil {
		return ExecutionFailure{Stage: "running job", Cause: runErr}
	}
	return nil
}

// withVariables prefixes script with the job's own variables exported into
// the shell, and moves into the job workspace before running it - the base
// image's WORKDIR can't be relied on once a job declares its own image.
func withVariables(vars ciyaml.OrderedVariables, script string) string {
	return fmt.Sprintf("%scd %s; %s", shellfmt.ExportPrefix(vars), dockerx.Directories.Job, script)
}

// checkoutCode reproduces ref inside the checkout container's own /checkout
// clone, fetching from the bind-mounted /project, then overlays whatever
// uncommitted changes are sitting in /project's working tree on top of it -
// the reason this is a local emulator rather than a thin `git clone` wrapper.
func checkoutCode(ctx context.Context, exec Executor, containerID, ref string, out io.Writer) error {
	commands := strings.Join([]string{
		fmt.Sprintf("cd %s", dockerx.Directories.Checkout),
		"git init",
		fmt.Sprintf("git remote add origin %s", dockerx.Directories.Project),
		"git fetch --quiet",
		fmt.Sprintf("git checkout --quiet %s", ref),
		fmt.Sprintf("(cd %s; git add --intent-to-add .; git diff) | git apply --allow-empty --quiet", dockerx.Directories.Project),
		fmt.Sprintf("(cd %s; git reset --mixed)", dockerx.Directories.Project),
	}, "; ")
	return exec.Exec(ctx, containerID, commands, out)
}

// stageCheckout copies the reproduced checkout into the job workspace and
// opens up both it and the shared artifacts volume so the job container,
// which may run as an arbitrary image's non-root user, can write to them.
func stageCheckout(ctx context.Context, exec Executor, containerID string, out io.Writer) error {
	commands := strings.Join([]string{
		fmt.Sprintf("cp -Rp %s/. %s", dockerx.Directories.Checkout, dockerx.Directories.Job),
		fmt.Sprintf("chmod 0777 %s", dockerx.Directories.Job),
		fmt.Sprintf("chmod 0777 %s", dockerx.Directories.Artifacts),
	}, "; ")
	return exec.Exec(ctx, containerID, commands, out)
}

// prepareArtifacts copies every required artifact's files from the shared
// artifacts volume into the job workspace, so they are visible once the job
// container starts with --volumes-from the checkout container.
func prepareArtifacts(ctx context.Context, exec Executor, containerID string, required map[string][]string, out io.Writer) error {
	var commands []string
	for jobName, paths := range required {
		for _, p := range paths {
			src := fmt.Sprintf("%s/%s/%s", dockerx.Directories.Artifacts, jobName, p)
			commands = append(commands, fmt.Sprintf("cp -Rp %s %s", src, dockerx.Directories.Job))
		}
	}
	return exec.Exec(ctx, containerID, strings.Join(commands, "; "), out)
}

// extractArtifacts copies a job's declared artifact paths out of its job
// workspace into the shared artifacts volume, keyed by job name, so later
// jobs that `needs:` this one can stage them.
func extractArtifacts(ctx context.Context, exec Executor, containerID, jobName string, paths []string, out io.Writer) error {
	destRoot := fmt.Sprintf("%s/%s", dockerx.Directories.Artifacts, jobName)
	commands := []string{fmt.Sprintf("mkdir -p %s", destRoot)}
	for _, p := range paths {
		src := fmt.Sprintf("%s/%s", dockerx.Directories.Job, p)
		commands = append(commands, fmt.Sprintf("cp -R %s %s/", src, destRoot))
	}
	return exec.Exec(ctx, containerID, strings.Join(commands, "; "), out)
}
