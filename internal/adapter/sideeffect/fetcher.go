package sideeffect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"aitools/internal/domain"
)

// maxDownloadBytes caps a single download.
const maxDownloadBytes = 64 << 20

// Fetcher saves remote or local resources into a directory.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher using client for remote resources.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch copies src into dir. src may be an http(s) URL or a local path.
// Existing files are never overwritten; a numeric suffix is added instead.
func (f *Fetcher) Fetch(ctx context.Context, src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", domain.WrapOp("Fetcher.Fetch", err)
	}
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.download(ctx, u, dir)
	}
	return f.copyLocal(src, dir)
}

func (f *Fetcher) download(ctx context.Context, u *url.URL, dir string) (string, error) {
	const op = "Fetcher.download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", domain.WrapOp(op, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", domain.WrapOp(op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", domain.NewDomainError(op, domain.ErrSideEffect, fmt.Sprintf("GET %s: HTTP %d", u.Redacted(), resp.StatusCode))
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		name = "download"
	}
	if filepath.Ext(name) == "" {
		if exts, _ := mime.ExtensionsByType(resp.Header.Get("Content-Type")); len(exts) > 0 {
			name += exts[0]
		}
	}
	return f.write(op, io.LimitReader(resp.Body, maxDownloadBytes), dir, name)
}

func (f *Fetcher) copyLocal(src, dir string) (string, error) {
	const op = "Fetcher.copyLocal"
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.NewDomainError(op, domain.ErrNotFound, src)
		}
		return "", domain.WrapOp(op, err)
	}
	defer in.Close()
	return f.write(op, in, dir, filepath.Base(src))
}

func (f *Fetcher) write(op string, r io.Reader, dir, name string) (string, error) {
	out, dst, err := createUnique(dir, name)
	if err != nil {
		return "", domain.WrapOp(op, err)
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", domain.WrapOp(op, err)
	}
	f.logger.Info("saved file", "path", dst, "size", humanize.Bytes(uint64(n)))
	return dst, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		dst := filepath.Join(dir, candidate)
		f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return f, dst, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
