package webdriver

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/michael-kerscher/run-evaluator/internal/logger"
)

// milestonesURL lists the chromedriver builds per Chrome milestone.
// Overridable in tests.
var milestonesURL = "https://googlechromelabs.github.io/chrome-for-testing/latest-versions-per-milestone-with-downloads.json"

// chromeBinaries are probed in order to detect the installed browser.
var chromeBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

var versionPattern = regexp.MustCompile(`(\d+)\.\d+\.\d+`)

// Provision returns the path to a chromedriver binary matching the
// installed Chrome, downloading and caching one if necessary. When
// driverPath is non-empty that binary is used as-is and no download
// happens. cacheDir defaults to the user cache directory.
func Provision(driverPath, cacheDir string) (string, error) {
	if driverPath != "" {
		if _, err := os.Stat(driverPath); err != nil {
			return "", fmt.Errorf("chromedriver binary: %w", err)
		}
		return driverPath, nil
	}

	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve cache directory: %w", err)
		}
		cacheDir = filepath.Join(base, "run-evaluator")
	}

	milestone, err := chromeMajorVersion()
	if err != nil {
		return "", err
	}

	binary := "chromedriver"
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}
	cached := filepath.Join(cacheDir, "chromedriver", milestone, binary)
	if _, err := os.Stat(cached); err == nil {
		logger.Debug("using cached chromedriver %s", cached)
		return cached, nil
	}

	platform, err := platformKey(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}
	url, err := lookupDownloadURL(milestone, platform)
	if err != nil {
		return "", err
	}

	logger.Debug("downloading chromedriver %s for %s", milestone, platform)
	if err := downloadChromedriver(url, cached); err != nil {
		return "", err
	}
	return cached, nil
}

// chromeMajorVersion returns the major version of the installed Chrome or
// Chromium, e.g. "120".
func chromeMajorVersion() (string, error) {
	for _, name := range chromeBinaries {
		out, err := exec.Command(name, "--version").Output()
		if err != nil {
			continue
		}
		major, err := parseChromeMajor(string(out))
		if err != nil {
			continue
		}
		logger.Debug("detected %s major version %s", name, major)
		return major, nil
	}
	return "", errors.New("no chrome or chromium installation found")
}

func parseChromeMajor(output string) (string, error) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", fmt.Errorf("no version in %q", strings.TrimSpace(output))
	}
	return match[1], nil
}

// platformKey maps GOOS/GOARCH to the platform names used by the Chrome
// for Testing downloads.
func platformKey(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "linux64", nil
	case goos == "darwin" && goarch == "amd64":
		return "mac-x64", nil
	case goos == "darwin" && goarch == "arm64":
		return "mac-arm64", nil
	case goos == "windows" && goarch == "amd64":
		return "win64", nil
	case goos == "windows" && goarch == "386":
		return "win32", nil
	}
	return "", fmt.Errorf("no chromedriver build for %s/%s", goos, goarch)
}

type milestoneIndex struct {
	Milestones map[string]struct {
		Version   string `json:"version"`
		Downloads struct {
			Chromedriver []struct {
				Platform string `json:"platform"`
				URL      string `json:"url"`
			} `json:"chromedriver"`
		} `json:"downloads"`
	} `json:"milestones"`
}

func lookupDownloadURL(milestone, platform string) (string, error) {
	resp, err := http.Get(milestonesURL)
	if err != nil {
		return "", fmt.Errorf("fetch chromedriver index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch chromedriver index: %s", resp.Status)
	}

	var index milestoneIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return "", fmt.Errorf("parse chromedriver index: %w", err)
	}

	entry, ok := index.Milestones[milestone]
	if !ok {
		return "", fmt.Errorf("no chromedriver build for milestone %s", milestone)
	}
	for _, download := range entry.Downloads.Chromedriver {
		if download.Platform == platform {
			return download.URL, nil
		}
	}
	return "", fmt.Errorf("no chromedriver build for milestone %s on %s", milestone, platform)
}

// downloadChromedriver fetches the zip at url and extracts the chromedriver
// binary to dest, creating parent directories as needed.
func downloadChromedriver(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("download chromedriver: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download chromedriver: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("download chromedriver: %w", err)
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open chromedriver archive: %w", err)
	}

	for _, file := range archive.File {
		name := filepath.Base(file.Name)
		if name != "chromedriver" && name != "chromedriver.exe" {
			continue
		}
		return extractBinary(file, dest)
	}
	return errors.New("no chromedriver binary in archive")
}

func extractBinary(file *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
