package downloader

import (
	"strconv"
	"strings"
	"time"
)

var now = time.Now

// DeriveFileName names a downloaded photo after the last segment of its page
// URL and the extension of its image URL.
func DeriveFileName(pageURL string, imageURL string) string {
	return fileNameFromURL(pageURL) + fileExtension(imageURL)
}

func fileNameFromURL(pageURL string) string {
	if !strings.Contains(pageURL, "/") {
		return strconv.FormatInt(now().UnixMilli(), 10)
	}
	parts := strings.Split(strings.TrimSuffix(pageURL, "/"), "/")
	return parts[len(parts)-1]
}

func fileExtension(imageURL string) string {
	index := strings.LastIndex(imageURL, ".")
	if index < 0 {
		return ""
	}
	return "." + imageURL[index+1:]
}
