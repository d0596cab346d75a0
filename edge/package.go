package edge

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PackagingSpec describes an edge packaging job, which bundles a compiled
// model for deployment to a device fleet.
type PackagingSpec struct {
	// JobName uniquely identifies the packaging job.
	JobName string
	// CompilationJobName names the finished compilation job to package.
	CompilationJobName string
	// ModelName and ModelVersion identify the packaged model.
	ModelName    string
	ModelVersion string
	// RoleArn is the execution role the service assumes.
	RoleArn string
	// OutputS3URI is where the deployment bundle is written.
	OutputS3URI string
}

// StartPackaging submits an edge packaging job.
//
// Arguments:
//   - ctx: Request context.
//   - spec: The job description.
//
// Returns:
//   - error: An error if submission fails.
func (c *Client) StartPackaging(ctx context.Context, spec PackagingSpec) error {
	_, err := c.api.CreateEdgePackagingJobWithContext(ctx, &sagemaker.CreateEdgePackagingJobInput{
		EdgePackagingJobName: aws.String(spec.JobName),
		CompilationJobName:   aws.String(spec.CompilationJobName),
		ModelName:            aws.String(spec.ModelName),
		ModelVersion:         aws.String(spec.ModelVersion),
		RoleArn:              aws.String(spec.RoleArn),
		OutputConfig: &sagemaker.EdgeOutputConfig{
			S3OutputLocation: aws.String(spec.OutputS3URI),
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to submit packaging job %s", spec.JobName)
	}

	c.log.WithFields(logrus.Fields{
		"job":   spec.JobName,
		"model": spec.ModelName,
	}).Info("packaging job submitted")
	return nil
}

// WaitForPackaging polls the packaging job until it reaches a terminal
// status, on the same fixed interval as WaitForCompilation.
//
// Arguments:
//   - ctx: Cancels the wait between polls.
//   - jobName: The job to wait for.
//
// Returns:
//   - string: The S3 URI of the packaged model artifact.
//   - error: The ctx error on cancellation, or a job failure with the
//     service's status message.
func (c *Client) WaitForPackaging(ctx context.Context, jobName string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		out, err := c.api.DescribeEdgePackagingJobWithContext(ctx, &sagemaker.DescribeEdgePackagingJobInput{
			EdgePackagingJobName: aws.String(jobName),
		})
		if err != nil {
			return "", errors.Wrapf(err, "failed to describe packaging job %s", jobName)
		}

		status := aws.StringValue(out.EdgePackagingJobStatus)
		switch status {
		case sagemaker.EdgePackagingJobStatusCompleted:
			artifact := aws.StringValue(out.ModelArtifact)
			c.log.WithFields(logrus.Fields{
				"job":      jobName,
				"artifact": artifact,
			}).Info("packaging job completed")
			return artifact, nil
		case sagemaker.EdgePackagingJobStatusFailed:
			return "", errors.Errorf("packaging job %s failed: %s",
				jobName, aws.StringValue(out.EdgePackagingJobStatusMessage))
		case sagemaker.EdgePackagingJobStatusStopped:
			return "", errors.Errorf("packaging job %s was stopped", jobName)
		}

		c.log.WithFields(logrus.Fields{
			"job":    jobName,
			"status": status,
		}).Debug("packaging job in progress")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
