package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

// Upload folders inside the configured storage backend.
const (
	FolderModuleVideos = "module-videos"
	FolderCertificates = "certifications"
)

var (
	AllowedVideoExtensions      = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
	AllowedCertificateMimeTypes = []string{MimePDF, MimeImage}
)
