// Package api serves the geography index as a read-only JSON API.
package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/swissgeo/internal/geoindex"
	"github.com/sells-group/swissgeo/internal/model"
)

// Querier is the part of the geography index the API reads from.
type Querier interface {
	CountPoliticalCommunitiesInCanton(code string) (int, error)
	CountDistrictsInCanton(code string) (int, error)
	CountPoliticalCommunitiesInDistrict(number string) (int, error)
	DistrictNameForZip(zip string) (string, error)
	AllDistrictNamesForZip(zip string) ([]string, error)
	LastUpdateForPostalCommunityName(name string) (time.Time, error)
	PoliticalCommunitiesWithoutPostalCommunity() []model.PoliticalCommunity
	Canton(code string) (model.Canton, error)
	Cantons() []model.Canton
	District(number string) (model.District, error)
	Stats() geoindex.Stats
}

var _ Querier = (*geoindex.Index)(nil)

// Options configures the router.
type Options struct {
	CORSOrigins []string
}

type handler struct {
	idx Querier
}

// NewRouter returns the HTTP handler for idx.
func NewRouter(idx Querier, opts Options) http.Handler {
	h := &handler{idx: idx}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/cantons", h.listCantons)
		r.Get("/cantons/{code}", h.getCanton)
		r.Get("/cantons/{code}/communities/count", h.countCantonCommunities)
		r.Get("/cantons/{code}/districts/count", h.countCantonDistricts)
		r.Get("/districts/{number}", h.getDistrict)
		r.Get("/districts/{number}/communities/count", h.countDistrictCommunities)
		r.Get("/zip/{zip}/district", h.zipDistrict)
		r.Get("/zip/{zip}/districts", h.zipDistricts)
		r.Get("/postal-communities/{name}/last-update", h.lastUpdate)
		r.Get("/communities/without-postal", h.withoutPostal)
		r.Get("/stats", h.stats)
	})

	return r
}

// instrument records request count and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		RequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (h *handler) listCantons(w http.ResponseWriter, _ *http.Request) {
	cantons := h.idx.Cantons()
	writeJSON(w, http.StatusOK, map[string]any{"items": cantons, "count": len(cantons)})
}

func (h *handler) getCanton(w http.ResponseWriter, r *http.Request) {
	canton, err := h.idx.Canton(param(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, canton)
}

func (h *handler) countCantonCommunities(w http.ResponseWriter, r *http.Request) {
	code := param(r, "code")
	n, err := h.idx.CountPoliticalCommunitiesInCanton(code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"canton": code, "count": n})
}

func (h *handler) countCantonDistricts(w http.ResponseWriter, r *http.Request) {
	code := param(r, "code")
	n, err := h.idx.CountDistrictsInCanton(code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"canton": code, "count": n})
}

func (h *handler) getDistrict(w http.ResponseWriter, r *http.Request) {
	district, err := h.idx.District(param(r, "number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, district)
}

func (h *handler) countDistrictCommunities(w http.ResponseWriter, r *http.Request) {
	number := param(r, "number")
	n, err := h.idx.CountPoliticalCommunitiesInDistrict(number)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"district": number, "count": n})
}

func (h *handler) zipDistrict(w http.ResponseWriter, r *http.Request) {
	zip := param(r, "zip")
	name, err := h.idx.DistrictNameForZip(zip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"zip_code": zip, "district_name": name})
}

func (h *handler) zipDistricts(w http.ResponseWriter, r *http.Request) {
	zip := param(r, "zip")
	names, err := h.idx.AllDistrictNamesForZip(zip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zip_code": zip, "district_names": names})
}

func (h *handler) lastUpdate(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	d, err := h.idx.LastUpdateForPostalCommunityName(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "last_update": d.Format(model.DateLayout)})
}

func (h *handler) withoutPostal(w http.ResponseWriter, _ *http.Request) {
	items := h.idx.PoliticalCommunitiesWithoutPostalCommunity()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *handler) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.idx.Stats())
}

// param returns the decoded URL parameter. chi matches on RawPath when the
// request has one, so only then is the value still escaped.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Key   string `json:"key,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if nf, ok := geoindex.AsNotFound(err); ok {
		NotFoundTotal.WithLabelValues(string(nf.Kind)).Inc()
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error(), Kind: string(nf.Kind), Key: nf.Key})
		return
	}
	zap.L().Error("api: request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}
