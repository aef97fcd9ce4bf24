package api

type Topic string

const (
	PhotoDisplayed   Topic = "photo-displayed"
	PhotosDownloaded Topic = "photos-downloaded"
	FeedRefreshed    Topic = "feed-refreshed"
	SlideChanged     Topic = "slide-changed"
	ShowError        Topic = "show-error"
)
