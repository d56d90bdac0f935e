package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Subpath of the default hashtable directory, relative to the documents or
// application data folder.
const (
	vendorDir    = "LeagueToolkit"
	hashtableDir = "bin_hashtables"
)

// DefaultHashtableDir returns Documents/LeagueToolkit/bin_hashtables when a
// documents folder exists, else the same subpath under the per-user
// application data folder. It returns "" when neither can be determined.
func DefaultHashtableDir() string {
	return defaultHashtableDir(xdg.UserDirs.Documents, xdg.DataHome)
}

func defaultHashtableDir(documents, dataHome string) string {
	if documents != "" {
		if info, err := os.Stat(documents); err == nil && info.IsDir() {
			return filepath.Join(documents, vendorDir, hashtableDir)
		}
	}
	if dataHome != "" {
		return filepath.Join(dataHome, vendorDir, hashtableDir)
	}
	return ""
}
