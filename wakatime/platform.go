package wakatime

import (
	"github.com/grovetools/codex-wakatime/errors"
)

// supportedPlatforms lists every OS/architecture pair that has an official
// wakatime-cli release build. Pairs absent from this table are rejected
// outright instead of guessed at.
var supportedPlatforms = map[string]bool{
	"darwin/amd64":  true,
	"darwin/arm64":  true,
	"linux/amd64":   true,
	"linux/arm64":   true,
	"linux/arm":     true,
	"windows/amd64": true,
	"windows/386":   true,
}

// binaryName returns the release binary file name for the given platform,
// e.g. "wakatime-cli-linux-amd64" or "wakatime-cli-windows-amd64.exe".
func binaryName(goos, goarch string) (string, error) {
	if !supportedPlatforms[goos+"/"+goarch] {
		return "", errors.UnsupportedPlatform(goos, goarch)
	}

	name := "wakatime-cli-" + goos + "-" + goarch
	if goos == "windows" {
		name += ".exe"
	}
	return name, nil
}
