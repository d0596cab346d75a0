// Command detect runs YOLOv5 object detection on an image file or a
// directory of images and logs the resulting boxes.
package main

import (
	"bytes"
	"context"
	"flag"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/edgeml-ai/go-edgecv/inference"
	"github.com/edgeml-ai/go-edgecv/models/postprocess"
	"github.com/edgeml-ai/go-edgecv/util"
)

func main() {
	var (
		modelPath  string
		imagePath  string
		dirPath    string
		ortLibPath string
		confidence float64
		iou        float64
		inputSize  int
	)
	flag.StringVar(&modelPath, "model", "yolov5s.onnx", "Path to the YOLOv5 ONNX model")
	flag.StringVar(&imagePath, "image", "", "Path to a single image file")
	flag.StringVar(&dirPath, "dir", "", "Path to a directory of images")
	flag.StringVar(&ortLibPath, "ort-lib", os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"),
		"Path to the ONNX Runtime shared library")
	flag.Float64Var(&confidence, "confidence", 0.25, "Confidence threshold")
	flag.Float64Var(&iou, "iou", 0.45, "IoU threshold for suppression")
	flag.IntVar(&inputSize, "size", 640, "Model input side length")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Optional .env for local runs; missing file is fine.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	if imagePath == "" && dirPath == "" {
		log.Fatal("either -image or -dir is required")
	}

	if err := inference.InitRuntime(ortLibPath); err != nil {
		log.WithError(err).Fatal("failed to initialize ONNX runtime")
	}

	detector, err := inference.NewDetector(inference.Config{
		ModelPath:           modelPath,
		InputSize:           inputSize,
		ConfidenceThreshold: float32(confidence),
		IoUThreshold:        float32(iou),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create detector")
	}
	defer detector.Close()

	ctx := context.Background()

	if imagePath != "" {
		detectFile(ctx, log, detector, imagePath)
		return
	}

	files, err := util.LoadDirectoryImageFiles(dirPath)
	if err != nil {
		log.WithError(err).Fatalf("failed to load images from %s", dirPath)
	}
	for _, file := range files {
		img, _, err := image.Decode(bytes.NewReader(file.Image.Data))
		if err != nil {
			log.WithError(err).Errorf("failed to decode %s", file.Path)
			continue
		}
		detectImage(ctx, log, detector, file.Path, img)
	}
}

func detectFile(ctx context.Context, log *logrus.Logger, detector *inference.Detector, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).Errorf("failed to open %s", path)
		return
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		log.WithError(err).Errorf("failed to decode %s", path)
		return
	}

	detectImage(ctx, log, detector, path, img)
}

func detectImage(ctx context.Context, log *logrus.Logger, detector *inference.Detector, path string, img image.Image) {
	detections, err := detector.Predict(ctx, img)
	if err != nil {
		log.WithError(err).Errorf("detection failed for %s", path)
		return
	}

	log.WithFields(logrus.Fields{
		"path":    path,
		"objects": len(detections),
	}).Info("image processed")

	boxes, scores, classes := postprocess.Split(detections)
	for i := range detections {
		log.WithFields(logrus.Fields{
			"class": classes[i],
			"score": scores[i],
			"box":   boxes[i],
		}).Info("detection")
	}
}
