// Command webcam runs live YOLOv5 detection on a capture device and draws
// the detected boxes in a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/edgeml-ai/go-edgecv/inference"
)

func main() {
	var (
		deviceID   int
		modelPath  string
		ortLibPath string
		confidence float64
		iou        float64
		inputSize  int
	)
	flag.IntVar(&deviceID, "device", 0, "Video capture device ID")
	flag.StringVar(&modelPath, "model", "yolov5s.onnx", "Path to the YOLOv5 ONNX model")
	flag.StringVar(&ortLibPath, "ort-lib", os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"),
		"Path to the ONNX Runtime shared library")
	flag.Float64Var(&confidence, "confidence", 0.25, "Confidence threshold")
	flag.Float64Var(&iou, "iou", 0.45, "IoU threshold for suppression")
	flag.IntVar(&inputSize, "size", 640, "Model input side length")
	flag.Parse()

	log := logrus.New()

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

	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		log.WithError(err).Fatalf("error opening capture device %d", deviceID)
	}
	defer webcam.Close()

	window := gocv.NewWindow("Object Detection")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	green := color.RGBA{0, 255, 0, 0}
	ctx := context.Background()

	// FPS tracking
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	log.Infof("start reading camera device: %d", deviceID)
	for {
		if ok := webcam.Read(&frame); !ok {
			log.Errorf("cannot read device %d", deviceID)
			return
		}
		if frame.Empty() {
			continue
		}

		decoded, err := frame.ToImage()
		if err != nil {
			log.WithError(err).Error("failed to convert frame")
			continue
		}

		detections, err := detector.PredictFrame(ctx, decoded)
		if err != nil {
			log.WithError(err).Error("detection failed")
			continue
		}

		frameCount++
		elapsed := time.Since(lastTime).Seconds()
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		for _, det := range detections {
			rect := image.Rect(int(det.Box.X1), int(det.Box.Y1), int(det.Box.X2), int(det.Box.Y2))
			gocv.Rectangle(&frame, rect, green, 2)
			label := fmt.Sprintf("class %d %.2f", det.Class, det.Score)
			gocv.PutText(&frame, label, rect.Min, gocv.FontHersheyPlain, 1.2, green, 2)
		}

		statusText := fmt.Sprintf("objects: %d | FPS: %.1f", len(detections), fps)
		gocv.PutText(&frame, statusText, image.Pt(10, 30), gocv.FontHersheyPlain, 1.2, green, 2)

		window.IMShow(frame)
		if window.WaitKey(1) == 27 { // ESC
			return
		}
	}
}
