package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/swissgeo/internal/config"
	"github.com/sells-group/swissgeo/internal/geoindex"
	"github.com/sells-group/swissgeo/internal/importer"
)

// loadIndex validates c for mode, imports both sources and builds the index.
func loadIndex(ctx context.Context, c *config.Config, mode string) (*geoindex.Index, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	start := time.Now()
	ds, err := importer.Load(ctx, c.Data)
	if err != nil {
		return nil, eris.Wrap(err, "load index")
	}
	idx := geoindex.Build(ds.Political, ds.Postal)

	st := idx.Stats()
	zap.L().Info("index ready",
		zap.Int("cantons", st.Cantons),
		zap.Int("districts", st.Districts),
		zap.Int("political_communities", st.PoliticalCommunities),
		zap.Int("postal_communities", st.PostalCommunities),
		zap.Duration("elapsed", time.Since(start)),
	)
	return idx, nil
}
