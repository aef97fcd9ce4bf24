package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
	"vincit.fi/photo-frame/common/util"
)

const (
	fileExtension = ".json"
	// Photos saved only under the wildcard are listed here.
	untaggedIndex = ".untagged"
)

// JsonService keeps one JSON array of photo paths per tag.
type JsonService struct {
	dataDir string
	mux     sync.Mutex

	api.CategoryService
}

func NewJsonService(dataDir string) (*JsonService, error) {
	if err := util.MakeDirectoriesIfNotExist(filepath.Dir(dataDir), dataDir); err != nil {
		return nil, fmt.Errorf("could not create category directory: %w", err)
	}
	return &JsonService{
		dataDir: dataDir,
	}, nil
}

func (s *JsonService) Save(path string, tags ...string) error {
	parsed := apitype.ParseTags(tags...)
	if len(parsed) == 0 {
		logger.Debug.Printf("No tags given for '%s', nothing to save", path)
		return nil
	}

	categories := validTags(path, apitype.WithoutAll(parsed))

	s.mux.Lock()
	defer s.mux.Unlock()

	logger.Info.Printf("Saving %s with categories: %v", path, parsed)
	if len(categories) == 0 {
		return s.addToFile(s.fileFor(untaggedIndex), path)
	}
	for _, tag := range categories {
		if err := s.addToFile(s.fileFor(tag), path); err != nil {
			return err
		}
	}
	return nil
}

func (s *JsonService) Load(categories ...string) ([]*apitype.Photo, error) {
	parsed := apitype.ParseTags(categories...)

	s.mux.Lock()
	defer s.mux.Unlock()

	var files []string
	if apitype.IsAll(parsed) {
		var err error
		if files, err = s.allFiles(); err != nil {
			return nil, err
		}
	} else {
		for _, tag := range parsed {
			if apitype.ValidateTag(tag) != nil {
				logger.Warn.Printf("Category not found: %s", tag)
				continue
			}
			files = append(files, s.fileFor(tag))
		}
	}

	paths := util.NewSet[string]()
	for _, file := range files {
		entries, err := readEntries(file)
		if errors.Is(err, os.ErrNotExist) {
			logger.Info.Printf("Category not found: %s", util.FileStem(file))
			continue
		} else if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			paths.Add(entry)
		}
	}

	photos := make([]*apitype.Photo, 0, paths.Len())
	for _, path := range paths.Values() {
		photos = append(photos, apitype.NewPhoto(path))
	}
	return photos, nil
}

// Categories returns the stored tags in alphabetical order.
func (s *JsonService) Categories() ([]string, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	files, err := s.allFiles()
	if err != nil {
		return nil, err
	}
	tags := []string{}
	for _, file := range files {
		stem := util.FileStem(file)
		if !strings.HasPrefix(stem, ".") {
			tags = append(tags, strings.ToLower(stem))
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *JsonService) Shutdown() error {
	return nil
}

func (s *JsonService) fileFor(tag string) string {
	return filepath.Join(s.dataDir, tag+fileExtension)
}

func (s *JsonService) allFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dataDir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, err
	}

	files := []string{}
	for _, entry := range dirEntries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), fileExtension) {
			files = append(files, filepath.Join(s.dataDir, entry.Name()))
		}
	}
	return files, nil
}

func (s *JsonService) addToFile(file string, path string) error {
	entries, err := readEntries(file)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info.Printf("Creating category file '%s'", file)
		return writeEntries(file, []string{path})
	} else if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry == path {
			logger.Debug.Printf("'%s' already in '%s'", path, file)
			return nil
		}
	}
	return writeEntries(file, append(entries, path))
}

// validTags drops the tags that can not be stored as a file. A photo left
// without tags goes to the untagged index.
func validTags(path string, tags []string) []string {
	valid := make([]string, 0, len(tags))
	for _, tag := range tags {
		if err := apitype.ValidateTag(tag); err != nil {
			logger.Warn.Printf("Skipping category of '%s': %s", path, err)
			continue
		}
		valid = append(valid, tag)
	}
	return valid
}

func readEntries(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("could not parse '%s': %w", file, err)
	}
	return entries, nil
}

func writeEntries(file string, entries []string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(file, data)
}
