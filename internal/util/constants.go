package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeCSV = "text/csv"
)

const (
	MinPasswordLength = 8
	ClassCodeMaxLen   = 10
	GeneratedCodeLen  = 6
)
