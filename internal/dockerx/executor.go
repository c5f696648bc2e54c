// Package dockerx is the Process Executor: the one seam through which the
// orchestrator touches the Docker daemon. Nothing outside this package
// imports the Docker SDK directly.
package dockerx

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Directories mirrors the mount layout a job container is given: a checked
// out project, a scratch job workspace, and a shared artifacts volume.
var Directories = struct {
	Checkout  string
	Project   string
	Job       string
	Artifacts string
}{
	Checkout:  "/checkout",
	Project:   "/project",
	Job:       "/job",
	Artifacts: "/artifacts",
}

const (
	artifactsVolumeName = "fake-ci-artifacts"
	checkoutNamePrefix  = "fake-ci-checkout"
	jobNamePrefix       = "fake-ci-job"
	pruneNameFilter     = "fake-ci"
	pruneVolumeFilter   = "fake"
)

// Executor wraps the Docker SDK client with the handful of operations the
// orchestrator needs, named after what they do rather than the underlying
// API calls.
type Executor struct {
	client *client.Client
}

// NewExecutor connects to the Docker daemon described by the environment,
// negotiating the API version the same way the rest of the pack's Docker
// clients do.
func NewExecutor() (*Executor, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to docker daemon: %w", err)
	}
	return &Executor{client: cli}, nil
}

// ImageNeedsToBeBuilt reports whether no image exists yet for tag.
func (e *Executor) ImageNeedsToBeBuilt(ctx context.Context, tag string) (bool, error) {
	images, err := e.client.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", tag)),
	})
	if err != nil {
		return false, fmt.Errorf("listing images for %s: %w", tag, err)
	}
	return len(images) == 0, nil
}

// BuildImage builds dockerfile and tags the result as tag.
func (e *Executor) BuildImage(ctx context.Context, tag string, dockerfile []byte) error {
	tarball, err := tarSingleFile("Dockerfile", dockerfile)
	if err != nil {
		return fmt.Errorf("packaging build context for %s: %w", tag, err)
	}

	resp, err := e.client.ImageBuild(ctx, tarball, types.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("building image %s: %w", tag, err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(io.Discard, resp.Body)
	if err != nil {
		return fmt.Errorf("reading build output for %s: %w", tag, err)
	}
	return nil
}

// PruneAll removes every container, volume and image this tool has ever
// created, returning how many of each were removed.
func (e *Executor) PruneAll(ctx context.Context) (containers, volumes, images int, err error) {
	containers, err = e.pruneContainersByName(ctx, pruneNameFilter)
	if err != nil {
		return 0, 0, 0, err
	}

	volumes, err = e.pruneVolumesByName(ctx, pruneVolumeFilter)
	if err != nil {
		return containers, 0, 0, err
	}

	images, err = e.pruneImagesByReference(ctx, "fake-ci:latest")
	if err != nil {
		return containers, volumes, 0, err
	}

	return containers, volumes, images, nil
}

func (e *Executor) pruneContainersByName(ctx context.Context, nameFilter string) (int, error) {
	list, err := e.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", nameFilter)),
	})
	if err != nil {
		return 0, fmt.Errorf("listing containers matching %q: %w", nameFilter, err)
	}

	for _, c := range list {
		if err := e.client.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
			return 0, fmt.Errorf("removing container %s: %w", c.ID[:12], err)
		}
	}
	return len(list), nil
}

func (e *Executor) pruneVolumesByName(ctx context.Context, nameFilter string) (int, error) {
	list, err := e.client.VolumeList(ctx, volume.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", nameFilter)),
	})
	if err != nil {
		return 0, fmt.Errorf("listing volumes matching %q: %w", nameFilter, err)
	}

	for _, v := range list.Volumes {
		if err := e.client.VolumeRemove(ctx, v.Name, true); err != nil {
			return 0, fmt.Errorf("removing volume %s: %w", v.Name, err)
		}
	}
	return len(list.Volumes), nil
}

func (e *Executor) pruneImagesByReference(ctx context.Context, reference string) (int, error) {
	list, err := e.client.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", reference)),
	})
	if err != nil {
		return 0, fmt.Errorf("listing images matching %q: %w", reference, err)
	}

	for _, img := range list {
		if _, err := e.client.ImageRemove(ctx, img.ID, image.RemoveOptions{Force: true}); err != nil {
			return 0, fmt.Errorf("removing image %s: %w", img.ID[:12], err)
		}
	}
	return len(list), nil
}

// PruneCheckoutContainer removes any container left over from a previous
// checkout run, by name prefix, before a new one starts.
func (e *Executor) PruneCheckoutContainer(ctx context.Context) error {
	_, err := e.pruneContainersByName(ctx, checkoutNamePrefix)
	return err
}

// PruneJobContainer removes any container left over from a previous job
// run, by name prefix, before a new one starts.
func (e *Executor) PruneJobContainer(ctx context.Context) error {
	_, err := e.pruneContainersByName(ctx, jobNamePrefix)
	return err
}

// StartCheckoutContainer brings up the container the checkout happens in:
// the project working copy bind-mounted read-write, a scratch checkout
// volume, the shared artifacts volume, and an empty job workspace.
func (e *Executor) StartCheckoutContainer(ctx context.Context, containerName, imageTag, projectDir string) (string, error) {
	cfg := &container.Config{
		Image: imageTag,
		Tty:   true,
	}
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: projectDir, Target: Directories.Project},
			{Type: mount.TypeVolume, Target: Directories.Checkout},
			{Type: mount.TypeVolume, Source: artifactsVolumeName, Target: Directories.Artifacts},
			{Type: mount.TypeVolume, Target: Directories.Job},
		},
	}

	resp, err := e.client.ContainerCreate(ctx, cfg, hostCfg, nil, nil, containerName)
	if err != nil {
		return "", fmt.Errorf("creating checkout container: %w", err)
	}

	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("starting checkout container: %w", err)
	}

	return resp.ID, nil
}

// StartJobContainer brings up the job container sharing every volume from
// the checkout container it descends from.
func (e *Executor) StartJobContainer(ctx context.Context, containerName, imageTag, sourceContainerID string) (string, error) {
	cfg := &container.Config{
		Image: imageTag,
		Tty:   true,
		Env:   []string{fmt.Sprintf("CI_PROJECT_DIR=%s", Directories.Job)},
	}
	hostCfg := &container.HostConfig{
		VolumesFrom: []string{sourceContainerID},
	}

	resp, err := e.client.ContainerCreate(ctx, cfg, hostCfg, nil, nil, containerName)
	if err != nil {
		return "", fmt.Errorf("creating job container: %w", err)
	}

	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("starting job container: %w", err)
	}

	return resp.ID, nil
}

// Exec runs commands inside containerID via a shell, streaming combined
// stdout/stderr to the given writer.
func (e *Executor) Exec(ctx context.Context, containerID, commands string, out io.Writer) error {
	execID, err := e.client.ContainerExecCreate(ctx, containerID, types.ExecConfig{
		Cmd:          []string{"sh", "-c", commands},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return fmt.Errorf("creating exec in %s: %w", containerID[:12], err)
	}

	attach, err := e.client.ContainerExecAttach(ctx, execID.ID, types.ExecStartCheck{})
	if err != nil {
		return fmt.Errorf("attaching to exec in %s: %w", containerID[:12], err)
	}
	defer attach.Close()

	if _, err := stdcopy.StdCopy(out, out, attach.Reader); err != nil && err != io.EOF {
		return fmt.Errorf("streaming exec output from %s: %w", containerID[:12], err)
	}

	inspect, err := e.client.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return fmt.Errorf("inspecting exec in %s: %w", containerID[:12], err)
	}
	if inspect.ExitCode != 0 {
		return fmt.Errorf("command exited with status %d", inspect.ExitCode)
	}

	return nil
}
