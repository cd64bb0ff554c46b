package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"clipfinder/internal/apperr"
	"clipfinder/pkg/executor"
)

// youtubeURLPattern accepts the usual watch/short/embed URL shapes.
var youtubeURLPattern = regexp.MustCompile(
	`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|.+\?v=)?([^&=%\?]{11})`)

// ValidateSourceURL rejects URLs that are not a supported video source.
func ValidateSourceURL(rawURL string) error {
	if !youtubeURLPattern.MatchString(strings.TrimSpace(rawURL)) {
		return apperr.New(apperr.InvalidSource, "unsupported video URL: %q", rawURL)
	}
	return nil
}

// Downloader fetches a remote video to a local path and returns its title.
type Downloader interface {
	Download(ctx context.Context, rawURL, destPath string) (title string, err error)
}

// YtDlpDownloader shells out to yt-dlp.
type YtDlpDownloader struct {
	binary string
	exec   executor.Executor
	logger *logrus.Logger
}

func NewYtDlpDownloader(binary string, exec executor.Executor, logger *logrus.Logger) *YtDlpDownloader {
	return &YtDlpDownloader{binary: binary, exec: exec, logger: logger}
}

// Download fetches rawURL to destPath as mp4. The printed title is
// returned for use as the record's display name.
func (d *YtDlpDownloader) Download(ctx context.Context, rawURL, destPath string) (string, error) {
	d.logger.WithField("url", rawURL).Info("Starting remote video download")

	out, err := d.exec.Execute(ctx, d.binary,
		"--no-playlist",
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--no-simulate",
		"--print", "title",
		"-o", destPath,
		rawURL,
	)
	if err != nil {
		return "", apperr.Wrap(apperr.DownloadFailed, err, "download failed for %s", rawURL)
	}

	title := strings.TrimSpace(out)
	if title == "" {
		title = rawURL
	}
	return title, nil
}
