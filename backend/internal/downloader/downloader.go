package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/photoloader"
	"vincit.fi/photo-frame/common/logger"
	"vincit.fi/photo-frame/common/util"
)

const DefaultWorkerCount = 4

type DownloadResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Tagger adds tags of its own to a downloaded photo.
type Tagger interface {
	TagPhoto(ctx context.Context, service api.CategoryService, path string) ([]string, error)
}

type downloadJob struct {
	hit      Hit
	fileName string
}

type downloadResult struct {
	fileName string
	err      error
}

// Downloader stores feed photos in the photos directory and tags them with
// the tags of the feed.
type Downloader struct {
	photosDir   string
	service     api.CategoryService
	sender      api.Sender
	httpClient  *http.Client
	workerCount int
	tagger      Tagger
}

func NewDownloader(photosDir string, service api.CategoryService, sender api.Sender, httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Downloader{
		photosDir:   photosDir,
		service:     service,
		sender:      sender,
		httpClient:  httpClient,
		workerCount: DefaultWorkerCount,
	}
}

// SetTagger makes every downloaded photo also go through the tagger.
func (s *Downloader) SetTagger(tagger Tagger) {
	s.tagger = tagger
}

func (s *Downloader) DownloadFeed(ctx context.Context, hits []Hit) (DownloadResult, error) {
	result := DownloadResult{}
	if err := util.MakeDirectoriesIfNotExist(filepath.Dir(s.photosDir), s.photosDir); err != nil {
		return result, fmt.Errorf("could not create photo directory: %w", err)
	}

	startTime := time.Now()
	claimed := util.NewSet[string]()
	var jobs []downloadJob
	for _, hit := range hits {
		fileName := DeriveFileName(hit.PageURL, hit.LargeImageURL)
		if !photoloader.IsSupported(fileName) {
			logger.Warn.Printf("%s is not a supported image. Skipping download", hit.LargeImageURL)
			result.Skipped++
			continue
		}
		if !claimed.Add(fileName) || util.DoesFileExist(filepath.Join(s.photosDir, fileName)) {
			logger.Info.Printf("File %s was found in the cache. Skipping download", fileName)
			result.Skipped++
			continue
		}
		jobs = append(jobs, downloadJob{hit: hit, fileName: fileName})
	}

	if len(jobs) > 0 {
		inputChannel := make(chan downloadJob, len(jobs))
		outputChannel := make(chan downloadResult)
		for _, job := range jobs {
			inputChannel <- job
		}
		close(inputChannel)

		workerCount := s.workerCount
		if workerCount > len(jobs) {
			workerCount = len(jobs)
		}
		logger.Debug.Printf(" * Using %d workers", workerCount)
		for i := 0; i < workerCount; i++ {
			go s.downloadWorker(ctx, inputChannel, outputChannel)
		}

		for i := 0; i < len(jobs); i++ {
			if downloaded := <-outputChannel; downloaded.err != nil {
				logger.Error.Printf("Could not download %s: %s", downloaded.fileName, downloaded.err)
				result.Failed++
			} else {
				result.Downloaded++
			}
		}
	}

	logger.Info.Printf("Feed downloaded in %s: %d downloaded, %d skipped, %d failed",
		time.Since(startTime), result.Downloaded, result.Skipped, result.Failed)
	if s.sender != nil {
		s.sender.SendCommandToTopic(api.PhotosDownloaded, &api.PhotosDownloadedCommand{
			Downloaded: result.Downloaded,
			Skipped:    result.Skipped,
			Failed:     result.Failed,
		})
	}
	return result, nil
}

func (s *Downloader) downloadWorker(ctx context.Context, input chan downloadJob, output chan downloadResult) {
	for job := range input {
		output <- downloadResult{
			fileName: job.fileName,
			err:      s.downloadPhoto(ctx, job),
		}
	}
}

func (s *Downloader) downloadPhoto(ctx context.Context, job downloadJob) error {
	logger.Info.Printf("Caching: %s as %s", job.hit.LargeImageURL, job.fileName)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, job.hit.LargeImageURL, nil)
	if err != nil {
		return err
	}
	response, err := s.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", response.StatusCode)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	path := filepath.Join(s.photosDir, job.fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger.Info.Printf("Saved %s", job.fileName)

	tags := job.hit.Tags
	if strings.TrimSpace(tags) == "" {
		tags = apitype.AllCategory
	}
	logger.Debug.Printf("Saving tags: %s", tags)
	if err := s.service.Save(path, tags); err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			logger.Warn.Printf("Could not remove %s: %s", path, removeErr)
		}
		return err
	}

	if s.tagger != nil {
		if _, err := s.tagger.TagPhoto(ctx, s.service, path); err != nil {
			logger.Warn.Printf("Could not detect labels for %s: %s", job.fileName, err)
		}
	}
	return nil
}

// FeedDownloader retrieves the feed and downloads the new photos in it.
type FeedDownloader struct {
	client     *FeedClient
	downloader *Downloader

	api.Updater
}

func NewFeedDownloader(client *FeedClient, downloader *Downloader) *FeedDownloader {
	return &FeedDownloader{
		client:     client,
		downloader: downloader,
	}
}

func (s *FeedDownloader) Update(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

func (s *FeedDownloader) Run(ctx context.Context) (DownloadResult, error) {
	hits, err := s.client.RetrieveFeed(ctx)
	if err != nil {
		return DownloadResult{}, err
	}
	if len(hits) == 0 {
		logger.Info.Printf("Nothing to download")
		return DownloadResult{}, nil
	}
	return s.downloader.DownloadFeed(ctx, hits)
}
