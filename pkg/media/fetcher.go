package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MediaFetcher materializes a stream URL into a local file, typically by
// driving an external tool. The zero-exit contract is "file exists at dest".
type MediaFetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string, dest string) error
}

// Strategy is one delivery mechanism for a video id. Strategies are tried in
// order; the first success wins.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, videoID, dest string) error
}

// Bunny CDN parameters observed for the platform's player.
const (
	cdnDomain  = "vz-dc851587-83d.b-cdn.net"
	cdnReferer = "https://iframe.mediadelivery.net/"
	cdnOrigin  = "https://iframe.mediadelivery.net"
)

// CDNStrategy builds the streaming-playlist URL for a video id and hands it
// to the media fetcher with the headers the CDN requires.
type CDNStrategy struct {
	fetcher MediaFetcher
	domain  string
	referer string
	origin  string
}

func NewCDNStrategy(fetcher MediaFetcher) *CDNStrategy {
	return &CDNStrategy{
		fetcher: fetcher,
		domain:  cdnDomain,
		referer: cdnReferer,
		origin:  cdnOrigin,
	}
}

func (c *CDNStrategy) Name() string { return "CDN" }

func (c *CDNStrategy) Fetch(ctx context.Context, videoID, dest string) error {
	playlist := fmt.Sprintf("https://%s/%s/playlist.m3u8", c.domain, videoID)
	headers := map[string]string{
		"Referer": c.referer,
		"Origin":  c.origin,
	}
	return c.fetcher.Fetch(ctx, playlist, headers, dest)
}

// VideoFetcher tries each configured strategy until one produces the file.
// Re-running a partial download is safe: an existing destination file short
// circuits before any network or process work.
type VideoFetcher struct {
	strategies []Strategy
	out        io.Writer
}

func NewVideoFetcher(strategies ...Strategy) *VideoFetcher {
	return &VideoFetcher{strategies: strategies, out: os.Stdout}
}

// SetOutput redirects the fetcher's console messages.
func (v *VideoFetcher) SetOutput(w io.Writer) {
	v.out = w
}

func (v *VideoFetcher) Fetch(ctx context.Context, videoID, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		fmt.Fprintf(v.out, "\tArquivo já existe: %s. Pulando.\n", filepath.Base(dest))
		return nil
	}

	if len(v.strategies) == 0 {
		return errors.New("nenhuma fonte de vídeo configurada")
	}

	var lastErr error
	for _, strategy := range v.strategies {
		err := strategy.Fetch(ctx, videoID, dest)
		if err == nil {
			return nil
		}
		fmt.Fprintf(v.out, "\t✗ Fonte %s falhou: %v\n", strategy.Name(), err)
		lastErr = err
	}
	return fmt.Errorf("nenhuma fonte conseguiu baixar o vídeo: %w", lastErr)
}
