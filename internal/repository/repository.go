package repository

// Keys used in the key-value store.
const (
	KeyDownloadedVideos = "downloadedVideos"
	KeyVideos           = "videos"
	KeyLastSync         = "lastSync"
	// KeyTasks belongs to the task list and is never touched by the video library.
	KeyTasks = "tasks"
)

// Store is durable key-value storage. Get returns "" for absent keys and
// never fails; Set failures are reported to the caller, which logs them.
type Store interface {
	Get(key string) string
	Set(key, value string) error
}
