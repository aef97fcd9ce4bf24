package labels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"os"
	"path/filepath"
	"strings"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/common/logger"
	"vincit.fi/photo-frame/common/util"
)

const DefaultMinConfidence = 70.0

// Detector is the part of the Rekognition client used for labels.
type Detector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type Label struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"`
}

type labelResponse struct {
	Labels []Label `json:"Labels"`
}

// Service detects labels for photos and caches the responses as JSON, one
// file per photo.
type Service struct {
	detector      Detector
	cacheDir      string
	minConfidence float64
}

func NewService(detector Detector, cacheDir string, minConfidence float64) (*Service, error) {
	if err := util.MakeDirectoriesIfNotExist(filepath.Dir(cacheDir), cacheDir); err != nil {
		return nil, fmt.Errorf("could not create label cache: %w", err)
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Service{
		detector:      detector,
		cacheDir:      cacheDir,
		minConfidence: minConfidence,
	}, nil
}

// NewRekognitionDetector creates a client from the default AWS credential
// chain.
func NewRekognitionDetector(ctx context.Context, region string) (Detector, error) {
	var options []func(*awsconfig.LoadOptions) error
	if region != "" {
		options = append(options, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("could not load AWS config: %w", err)
	}
	return rekognition.NewFromConfig(cfg), nil
}

// DetectLabels returns the lower-cased names of the labels detected with at
// least the minimum confidence. Images the service can't process give no
// labels and no error.
func (s *Service) DetectLabels(ctx context.Context, path string) ([]string, error) {
	response, err := s.loadLabels(ctx, path)
	if err != nil || response == nil {
		return nil, err
	}

	var names []string
	for _, label := range response.Labels {
		if label.Confidence >= s.minConfidence {
			names = append(names, strings.ToLower(label.Name))
		}
	}
	logger.Debug.Printf("Labels for %s: %v", path, names)
	return names, nil
}

// TagPhoto saves the detected labels as the tags of the photo.
func (s *Service) TagPhoto(ctx context.Context, service api.CategoryService, path string) ([]string, error) {
	names, err := s.DetectLabels(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		logger.Info.Printf("No labels for %s", path)
		return names, nil
	}
	if err := service.Save(path, names...); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Service) cacheFile(path string) string {
	return filepath.Join(s.cacheDir, util.FileStem(path)+".json")
}

func (s *Service) loadLabels(ctx context.Context, path string) (*labelResponse, error) {
	cacheFile := s.cacheFile(path)
	if data, err := os.ReadFile(cacheFile); err == nil {
		logger.Info.Printf("Retrieving labels for %s from local cache", path)
		var response labelResponse
		if err := json.Unmarshal(data, &response); err != nil {
			return nil, fmt.Errorf("could not read label cache '%s': %w", cacheFile, err)
		}
		return &response, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	response, err := s.detect(ctx, path)
	if err != nil || response == nil {
		return nil, err
	}

	data, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	if err := util.WriteFileAtomic(cacheFile, data); err != nil {
		logger.Warn.Printf("Could not cache labels for %s: %s", path, err)
	}
	return response, nil
}

func (s *Service) detect(ctx context.Context, path string) (*labelResponse, error) {
	photoBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	logger.Info.Printf("Calling Rekognition service to detect labels for %s", path)
	output, err := s.detector.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{Bytes: photoBytes},
	})

	var invalidImage *types.InvalidImageFormatException
	var tooLarge *types.ImageTooLargeException
	if errors.As(err, &invalidImage) {
		logger.Error.Printf("Could not detect labels via service: %s", invalidImage.ErrorMessage())
		return nil, nil
	} else if errors.As(err, &tooLarge) {
		logger.Error.Printf("Could not process image '%s' due to size limits", filepath.Base(path))
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	response := &labelResponse{Labels: make([]Label, 0, len(output.Labels))}
	for _, label := range output.Labels {
		response.Labels = append(response.Labels, Label{
			Name:       aws.ToString(label.Name),
			Confidence: float64(aws.ToFloat32(label.Confidence)),
		})
	}
	return response, nil
}
