package importer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/swissgeo/internal/config"
	"github.com/sells-group/swissgeo/internal/fetcher"
)

const etagSuffix = ".etag"

// FetchResult describes one source download.
type FetchResult struct {
	Dataset string `json:"dataset" yaml:"dataset"`
	URL     string `json:"url" yaml:"url"`
	Path    string `json:"path" yaml:"path"`
	Bytes   int64  `json:"bytes" yaml:"bytes"`
	Changed bool   `json:"changed" yaml:"changed"`
}

// Fetch downloads every source that has a URL into its configured path.
// A source whose server reports an unchanged ETag is left alone.
func Fetch(ctx context.Context, f fetcher.Fetcher, cfg config.DataConfig) ([]FetchResult, error) {
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "fetch: create %s", cfg.Dir)
		}
	}

	var results []FetchResult
	for _, s := range []struct {
		name string
		src  config.SourceConfig
	}{
		{"political", cfg.Political},
		{"postal", cfg.Postal},
	} {
		if s.src.URL == "" {
			continue
		}
		res, err := fetchSource(ctx, f, s.name, cfg.Dir, s.src)
		if err != nil {
			return results, eris.Wrapf(err, "fetch: %s", s.name)
		}
		results = append(results, res)
	}
	return results, nil
}

func fetchSource(ctx context.Context, f fetcher.Fetcher, name, dir string, src config.SourceConfig) (FetchResult, error) {
	path := src.ResolvePath(dir)
	res := FetchResult{Dataset: name, URL: src.URL, Path: path}
	log := zap.L().With(zap.String("dataset", name), zap.String("url", src.URL))

	etag, err := readETag(path)
	if err != nil {
		return res, err
	}

	body, newETag, changed, err := f.DownloadIfChanged(ctx, src.URL, etag)
	if err != nil {
		return res, err
	}
	if !changed {
		log.Info("source unchanged", zap.String("etag", etag))
		return res, nil
	}
	defer body.Close() //nolint:errcheck

	n, err := fetcher.WriteFileAtomic(path, body)
	if err != nil {
		return res, err
	}
	res.Bytes = n
	res.Changed = true

	if newETag != "" {
		if err := os.WriteFile(path+etagSuffix, []byte(newETag+"\n"), 0o644); err != nil {
			return res, eris.Wrap(err, "write etag")
		}
	} else {
		_ = os.Remove(path + etagSuffix)
	}

	log.Info("source downloaded", zap.String("path", path), zap.Int64("bytes", n))
	return res, nil
}

// readETag returns the stored ETag for path, or "" when either the file or
// its sidecar is missing.
func readETag(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	b, err := os.ReadFile(path + etagSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "read etag")
	}
	return strings.TrimSpace(string(b)), nil
}
