package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	catalogURL = "https://gist.githubusercontent.com/poudyalanil/ca84582cbeb4fc123a13290a586da925/raw/14a27bd0bcd0cd323b35ad79cf3b493dddf6216b/videos.json"
	probeURL   = "https://www.google.com/generate_204"

	// 0.1 GiB
	minFreeBytes      int64 = 107374182
	progressInterval        = 250 * time.Millisecond
	requestsPerSecond       = 5.0
)

var (
	downloadDir = filepath.Join(xdg.UserDirs.Videos, appName)
	dataDir     = filepath.Join(xdg.DataHome, appName)
	logFile     = filepath.Join(xdg.StateHome, appName, "vidvault.log")
)
