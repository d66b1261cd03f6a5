package core

import (
	"os"
	"path/filepath"
)

func GetUploadFilepath() string {
	uploadFilepath := Config.Server.UploadFilepath
	if uploadFilepath == "" {
		uploadFilepath = "uploads"
	}
	os.MkdirAll(uploadFilepath, 0750)
	return uploadFilepath
}

// GetTmpPath returns the root of per-request temporary directories.
func GetTmpPath() string {
	tmpPath := Config.Server.TmpPath
	if tmpPath == "" {
		tmpPath = filepath.Join(os.TempDir(), "coachkit")
	}
	os.MkdirAll(tmpPath, 0700)
	return tmpPath
}
