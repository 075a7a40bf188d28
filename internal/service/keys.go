package service

import (
	"path"

	"github.com/google/uuid"
)

// UploadKey builds the storage key of a fresh upload. The random suffix
// keeps two uploads with the same name apart
func UploadKey(prefix, filename string) string {
	return path.Join(prefix, filename+"_"+uuid.NewString())
}

// TrimmedName is the display name, and the last key segment, of a trim
// saved as a new video
func TrimmedName(filename string) string {
	return "trimmed_" + uuid.NewString() + "_" + filename
}
