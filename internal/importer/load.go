// Package importer turns the configured political and postal community
// sources into raw records for the geography index.
package importer

import (
	"context"
	"os"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/swissgeo/internal/config"
	"github.com/sells-group/swissgeo/internal/fetcher"
	"github.com/sells-group/swissgeo/internal/model"
)

// Dataset holds the raw records read from both sources.
type Dataset struct {
	Political []model.PoliticalCommunityRecord
	Postal    []model.PostalCommunityRecord
}

// Load reads the political and postal community sources concurrently.
func Load(ctx context.Context, cfg config.DataConfig) (*Dataset, error) {
	var ds Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := LoadPolitical(gctx, cfg.Dir, cfg.Political)
		if err != nil {
			return eris.Wrap(err, "importer: political communities")
		}
		ds.Political = recs
		return nil
	})
	g.Go(func() error {
		recs, err := LoadPostal(gctx, cfg.Dir, cfg.Postal)
		if err != nil {
			return eris.Wrap(err, "importer: postal communities")
		}
		ds.Postal = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("datasets loaded",
		zap.Int("political_records", len(ds.Political)),
		zap.Int("postal_records", len(ds.Postal)),
	)
	return &ds, nil
}

// LoadPolitical reads political community records from src.
func LoadPolitical(ctx context.Context, dir string, src config.SourceConfig) ([]model.PoliticalCommunityRecord, error) {
	return loadRecords(ctx, dir, src, politicalColumns, parsePolitical)
}

// LoadPostal reads postal community records from src.
func LoadPostal(ctx context.Context, dir string, src config.SourceConfig) ([]model.PostalCommunityRecord, error) {
	return loadRecords(ctx, dir, src, postalColumns, parsePostal)
}

func loadRecords[T any](
	ctx context.Context,
	dir string,
	src config.SourceConfig,
	required []string,
	parse func(header, fetcher.Row) (T, error),
) ([]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	rowCh, errCh, cleanup, err := openRows(ctx, dir, src)
	if err != nil {
		cancel()
		return nil, err
	}
	defer func() {
		cancel()
		for range rowCh { //nolint:revive
		}
		cleanup()
	}()

	var (
		h   header
		out []T
	)
	for row := range rowCh {
		if h == nil {
			h, err = newHeader(row.Fields, required)
			if err != nil {
				return nil, err
			}
			continue
		}
		if isBlankRow(row.Fields) {
			continue
		}
		rec, err := parse(h, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if h == nil {
		return nil, eris.Errorf("importer: %s has no header row", src.ResolvePath(dir))
	}

	zap.L().Debug("source read",
		zap.String("path", src.ResolvePath(dir)),
		zap.String("format", src.Format),
		zap.Int("records", len(out)),
	)
	return out, nil
}

// openRows starts a row stream for src. The returned cleanup releases files,
// database handles and temporary extraction directories.
func openRows(ctx context.Context, dir string, src config.SourceConfig) (<-chan fetcher.Row, <-chan error, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	path := src.ResolvePath(dir)
	if src.Entry != "" {
		tmp, err := os.MkdirTemp("", "swissgeo-*")
		if err != nil {
			return nil, nil, nil, eris.Wrap(err, "importer: create temp dir")
		}
		closers = append(closers, func() { _ = os.RemoveAll(tmp) })

		path, err = fetcher.ExtractZIPFile(path, src.Entry, tmp)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
	}

	switch src.Format {
	case config.FormatCSV, "":
		f, err := os.Open(path)
		if err != nil {
			cleanup()
			return nil, nil, nil, eris.Wrapf(err, "importer: open %s", path)
		}
		closers = append(closers, func() { _ = f.Close() })

		opts := fetcher.CSVOptions{Encoding: src.Encoding, LazyQuotes: src.LazyQuotes, TrimSpace: true}
		if src.Delimiter != "" {
			opts.Delimiter, _ = utf8.DecodeRuneInString(src.Delimiter)
		}
		if src.Comment != "" {
			opts.Comment, _ = utf8.DecodeRuneInString(src.Comment)
		}
		rowCh, errCh := fetcher.StreamCSV(ctx, f, opts)
		return rowCh, errCh, cleanup, nil

	case config.FormatXLSX:
		rowCh, errCh := fetcher.StreamXLSX(ctx, path, fetcher.XLSXOptions{SheetName: src.Sheet})
		return rowCh, errCh, cleanup, nil

	case config.FormatSQLite:
		db, err := fetcher.OpenSQLite(path)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		rowCh, errCh := fetcher.StreamTable(ctx, db, src.Table)
		return rowCh, errCh, cleanup, nil

	default:
		cleanup()
		return nil, nil, nil, eris.Errorf("importer: unsupported format %q", src.Format)
	}
}
