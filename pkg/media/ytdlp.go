package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"
)

// ExitError reports a non-zero exit from the external tool. The exit code is
// the tool's only failure signal, so it is carried on the error value.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("yt-dlp saiu com código %d", e.Code)
}

// YtDlp invokes the yt-dlp binary to download and merge a streaming playlist
// into a single mp4.
type YtDlp struct {
	binary    string
	fragments int
	out       io.Writer
}

func NewYtDlp() *YtDlp {
	return &YtDlp{binary: "yt-dlp", fragments: 10, out: os.Stdout}
}

// SetOutput redirects both the adapter's messages and the tool's own output.
func (y *YtDlp) SetOutput(w io.Writer) {
	y.out = w
}

func (y *YtDlp) args(url string, headers map[string]string, dest string) []string {
	args := []string{
		url,
		"--merge-output-format", "mp4",
		"--concurrent-fragments", strconv.Itoa(y.fragments),
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--add-header", fmt.Sprintf("%s: %s", k, headers[k]))
	}

	return append(args, "-o", dest)
}

func (y *YtDlp) Fetch(ctx context.Context, url string, headers map[string]string, dest string) error {
	fmt.Fprintf(y.out, "Baixando com yt-dlp: %s\n", dest)

	cmd := exec.CommandContext(ctx, y.binary, y.args(url, headers, dest)...)
	cmd.Stdout = y.out
	cmd.Stderr = y.out

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}

// CheckDependencies verifies the external tools the pipeline shells out to
// are on PATH before any traversal starts.
func CheckDependencies() error {
	for _, tool := range []string{"yt-dlp", "ffmpeg"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("dependência não encontrada: %s (instale e adicione ao PATH)", tool)
		}
	}
	return nil
}
