package gitlabci

import (
	"github.com/christophgockel/fake-ci/internal/ciyaml"
	"github.com/christophgockel/fake-ci/internal/fakeciio"
	"github.com/christophgockel/fake-ci/internal/shellfmt"
)

// containerJobDir is where the job's workspace lives inside the job
// container - see internal/dockerx for the full mount layout.
const containerJobDir = "/job"

// BuildDefinition projects a merged configuration into an execution-ready
// CiDefinition, injecting the predefined variables at the head of every
// job's variable list.
func BuildDefinition(cfg *GitLabConfiguration, ctx fakeciio.Context) (CiDefinition, error) {
	merged, err := mergeJobs(cfg)
	if err != nil {
		return nil, err
	}

	definition := make(CiDefinition, len(merged))

	for name, spec := range merged {
		job := Job{
			Image:     spec.Image,
			Script:    concatScript(spec.BeforeScript, spec.Script, spec.AfterScript),
			Variables: prependPredefined(spec.Variables, ctx),
		}
		if spec.Artifacts != nil {
			job.Artifacts = spec.Artifacts.Paths
		}

		definition[name] = job
	}

	for name, job := range definition {
		spec := merged[name]
		required, err := requiredArtifacts(name, spec.Needs, definition)
		if err != nil {
			return nil, err
		}
		job.RequiredArtifacts = required
		definition[name] = job
	}

	return definition, nil
}

func concatScript(before, script, after ciyaml.StringOrStringSlice) []string {
	combined := make([]string, 0, len(before)+len(script)+len(after))
	combined = append(combined, before...)
	combined = append(combined, script...)
	combined = append(combined, after...)
	return combined
}

func prependPredefined(vars ciyaml.OrderedVariables, ctx fakeciio.Context) ciyaml.OrderedVariables {
	predefined := ciyaml.OrderedVariables{
		{Key: "CI_COMMIT_REF_NAME", Value: ctx.Branch},
		{Key: "CI_COMMIT_REF_SLUG", Value: shellfmt.Slug(ctx.Branch)},
		{Key: "CI_COMMIT_SHA", Value: ctx.CommitSHA},
		{Key: "CI_COMMIT_SHORT_SHA", Value: ctx.ShortCommitSHA()},
		{Key: "CI_PIPELINE_ID", Value: "1000"},
		{Key: "CI_PROJECT_DIR", Value: containerJobDir},
	}
	return append(predefined, vars...)
}

func requiredArtifacts(jobName string, needs []Need, definition CiDefinition) (map[string][]string, error) {
	required := map[string][]string{}

	for _, need := range needs {
		other, ok := definition[need.Job]
		if !ok {
			return nil, UnknownNeedsJob{Job: jobName, Needed: need.Job}
		}

		if !need.Artifacts {
			continue
		}

		if len(other.Artifacts) > 0 {
			required[need.Job] = other.Artifacts
		}
	}

	return required, nil
}
