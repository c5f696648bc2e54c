package orchestrator

import (
	"context"
	"io"
)

type fakeExecutor struct {
	imageNeedsBuild bool

	buildImageCallCount         int
	pruneCheckoutContainerCalls int
	startCheckoutContainerCalls int
	pruneJobContainerCalls      int
	startJobContainerCalls      int
	execCommands                []string
}

func (f *fakeExecutor) ImageNeedsToBeBuilt(ctx context.Context, tag string) (bool, error) {
	return f.imageNeedsBuild, nil
}

func (f *fakeExecutor) BuildImage(ctx context.Context, tag string, dockerfile []byte) error {
	f.buildImageCallCount++
	return nil
}

func (f *fakeExecutor) PruneCheckoutContainer(ctx context.Context) error {
	f.pruneCheckoutContainerCalls++
	return nil
}

func (f *fakeExecutor) StartCheckoutContainer(ctx context.Context, containerName, imageTag, projectDir string) (string, error) {
	f.startCheckoutContainerCalls++
	return "checkout-id", nil
}

func (f *fakeExecutor) PruneJobContainer(ctx context.Context) error {
	f.pruneJobContainerCalls++
	return nil
}

func (f *fakeExecutor) StartJobContainer(ctx context.Context, containerName, imageTag, sourceContainerID string) (string, error) {
	f.startJobContainerCalls++
	return "job-id", nil
}

func (f *fakeExecutor) Exec(ctx context.Context, containerID, commands string, out io.Writer) error {
	f.execCommands = append(f.execCommands, commands)
	return nil
}
