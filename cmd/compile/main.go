// Command compile submits a model compilation job for an edge target,
// waits for it, then packages the compiled artifact for deployment.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/edgeml-ai/go-edgecv/edge"
)

func main() {
	var (
		jobName      string
		roleArn      string
		modelS3      string
		outputS3     string
		framework    string
		target       string
		inputConfig  string
		modelName    string
		modelVersion string
		pollInterval time.Duration
		packageAfter bool
	)
	flag.StringVar(&jobName, "job", "", "Compilation job name (required)")
	flag.StringVar(&roleArn, "role", os.Getenv("EDGE_ROLE_ARN"), "Execution role ARN")
	flag.StringVar(&modelS3, "model-s3", "", "S3 URI of the trained model artifact")
	flag.StringVar(&outputS3, "output-s3", "", "S3 URI for compiled/packaged output")
	flag.StringVar(&framework, "framework", "PYTORCH", "Training framework of the model")
	flag.StringVar(&target, "target", "jetson_xavier", "Compilation target device")
	flag.StringVar(&inputConfig, "input-config", `{"images":[1,3,640,640]}`, "Model input shape JSON")
	flag.StringVar(&modelName, "model-name", "detector", "Packaged model name")
	flag.StringVar(&modelVersion, "model-version", "1.0", "Packaged model version")
	flag.DurationVar(&pollInterval, "poll-interval", edge.DefaultPollInterval, "Job status poll interval")
	flag.BoolVar(&packageAfter, "package", true, "Package the model after compilation")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// AWS credentials and region come from the environment; .env is a
	// convenience for local runs.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	if jobName == "" || roleArn == "" || modelS3 == "" || outputS3 == "" {
		log.Fatal("-job, -role, -model-s3 and -output-s3 are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	client := edge.NewClient(sagemaker.New(sess),
		edge.WithPollInterval(pollInterval),
		edge.WithLogger(log),
	)

	err := client.StartCompilation(ctx, edge.CompilationSpec{
		JobName:         jobName,
		RoleArn:         roleArn,
		ModelS3URI:      modelS3,
		DataInputConfig: inputConfig,
		Framework:       framework,
		TargetDevice:    target,
		OutputS3URI:     outputS3,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to start compilation")
	}

	artifact, err := client.WaitForCompilation(ctx, jobName)
	if err != nil {
		log.WithError(err).Fatal("compilation did not complete")
	}
	log.WithField("artifact", artifact).Info("model compiled")

	if !packageAfter {
		return
	}

	packagingJob := jobName + "-pkg"
	err = client.StartPackaging(ctx, edge.PackagingSpec{
		JobName:            packagingJob,
		CompilationJobName: jobName,
		ModelName:          modelName,
		ModelVersion:       modelVersion,
		RoleArn:            roleArn,
		OutputS3URI:        outputS3,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to start packaging")
	}

	bundle, err := client.WaitForPackaging(ctx, packagingJob)
	if err != nil {
		log.WithError(err).Fatal("packaging did not complete")
	}
	log.WithField("bundle", bundle).Info("model packaged for deployment")
}
