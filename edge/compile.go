package edge

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CompilationSpec describes a model compilation job.
type CompilationSpec struct {
	// JobName uniquely identifies the job within the account.
	JobName string
	// RoleArn is the execution role the service assumes.
	RoleArn string
	// ModelS3URI is the S3 location of the trained model artifact.
	ModelS3URI string
	// DataInputConfig is the JSON input shape description,
	// e.g. `{"input0":[1,3,640,640]}`.
	DataInputConfig string
	// Framework is the training framework name, e.g. "PYTORCH".
	Framework string
	// TargetDevice is the compilation target, e.g. "jetson_xavier".
	TargetDevice string
	// OutputS3URI is where the compiled artifact is written.
	OutputS3URI string
	// MaxRuntime bounds the job duration; zero means 15 minutes.
	MaxRuntime time.Duration
}

// StartCompilation submits a compilation job.
//
// Arguments:
//   - ctx: Request context.
//   - spec: The job description.
//
// Returns:
//   - error: An error if submission fails.
func (c *Client) StartCompilation(ctx context.Context, spec CompilationSpec) error {
	maxRuntime := spec.MaxRuntime
	if maxRuntime == 0 {
		maxRuntime = 15 * time.Minute
	}

	_, err := c.api.CreateCompilationJobWithContext(ctx, &sagemaker.CreateCompilationJobInput{
		CompilationJobName: aws.String(spec.JobName),
		RoleArn:            aws.String(spec.RoleArn),
		InputConfig: &sagemaker.InputConfig{
			S3Uri:           aws.String(spec.ModelS3URI),
			DataInputConfig: aws.String(spec.DataInputConfig),
			Framework:       aws.String(spec.Framework),
		},
		OutputConfig: &sagemaker.OutputConfig{
			S3OutputLocation: aws.String(spec.OutputS3URI),
			TargetDevice:     aws.String(spec.TargetDevice),
		},
		StoppingCondition: &sagemaker.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int64(int64(maxRuntime.Seconds())),
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to submit compilation job %s", spec.JobName)
	}

	c.log.WithFields(logrus.Fields{
		"job":    spec.JobName,
		"target": spec.TargetDevice,
	}).Info("compilation job submitted")
	return nil
}

// WaitForCompilation polls the compilation job until it reaches a terminal
// status. Non-terminal statuses (STARTING, INPROGRESS, STOPPING) are logged
// and polling continues on the configured interval.
//
// Arguments:
//   - ctx: Cancels the wait between polls.
//   - jobName: The job to wait for.
//
// Returns:
//   - string: The S3 URI of the compiled model artifact.
//   - error: The ctx error on cancellation, or a job failure with the
//     service's failure reason.
func (c *Client) WaitForCompilation(ctx context.Context, jobName string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		out, err := c.api.DescribeCompilationJobWithContext(ctx, &sagemaker.DescribeCompilationJobInput{
			CompilationJobName: aws.String(jobName),
		})
		if err != nil {
			return "", errors.Wrapf(err, "failed to describe compilation job %s", jobName)
		}

		status := aws.StringValue(out.CompilationJobStatus)
		switch status {
		case sagemaker.CompilationJobStatusCompleted:
			artifact := ""
			if out.ModelArtifacts != nil {
				artifact = aws.StringValue(out.ModelArtifacts.S3ModelArtifacts)
			}
			c.log.WithFields(logrus.Fields{
				"job":      jobName,
				"artifact": artifact,
			}).Info("compilation job completed")
			return artifact, nil
		case sagemaker.CompilationJobStatusFailed:
			return "", errors.Errorf("compilation job %s failed: %s",
				jobName, aws.StringValue(out.FailureReason))
		case sagemaker.CompilationJobStatusStopped:
			return "", errors.Errorf("compilation job %s was stopped", jobName)
		}

		c.log.WithFields(logrus.Fields{
			"job":    jobName,
			"status": status,
		}).Debug("compilation job in progress")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
