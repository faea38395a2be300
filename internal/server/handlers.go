package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/gorilla/mux"
)

const flushEvery = 1000

type errorResponse struct {
	Error string `json:"error"`
}

type countResponse struct {
	Language     string            `json:"language"`
	IsParseable  bool              `json:"is_parseable"`
	LocationType wiki.LocationType `json:"location_type"`
	Count        int               `json:"count"`
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(rw http.ResponseWriter, status int, err error) {
	writeJSON(rw, status, errorResponse{Error: err.Error()})
}

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, wiki.ErrLinkNotFound), errors.Is(err, lang.ErrUnknownLanguage):
		return http.StatusNotFound
	case errors.Is(err, wiki.ErrLoadInProgress):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) language(req *http.Request) (*lang.Language, error) {
	return a.Languages.ByCode(mux.Vars(req)["lang"])
}

func pathID(req *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(req)[name], 10, 64)
}

// pageLinkOptions reads the optional parseable and type query parameters.
func pageLinkOptions(req *http.Request) ([]wiki.PageLinkOption, error) {
	var opts []wiki.PageLinkOption
	q := req.URL.Query()
	if v := q.Get("parseable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wiki.WithParseable(b))
	}
	if v := q.Get("type"); v != "" {
		t, err := wiki.ParseLocationType(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wiki.WithLocationType(t))
	}
	return opts, nil
}

// PageLinksHandler streams the links of one page as newline-delimited JSON.
func (a *App) PageLinksHandler(dir wiki.Direction) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		l, err := a.language(req)
		if err != nil {
			writeError(rw, http.StatusNotFound, err)
			return
		}
		id, err := pathID(req, "id")
		if err != nil {
			writeError(rw, http.StatusBadRequest, err)
			return
		}
		opts, err := pageLinkOptions(req)
		if err != nil {
			writeError(rw, http.StatusBadRequest, err)
			return
		}

		cursor, err := a.Store.GetLinksForPage(req.Context(), l.ID, id, dir, opts...)
		if err != nil {
			writeError(rw, statusFor(err), err)
			return
		}
		defer cursor.Close()

		rw.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(rw)
		flusher, _ := rw.(http.Flusher)
		n := 0
		if info := infoFrom(req); info != nil {
			defer func() { info.rows = n }()
		}
		for link, err := range cursor.All() {
			if err != nil {
				// the status line is gone; all we can do is stop and log
				slog.Error("link stream failed", "lang", l.Code, "page", id, "direction", dir, "error", err)
				return
			}
			if err := enc.Encode(link); err != nil {
				slog.Debug("client went away", "error", err)
				return
			}
			n++
			if flusher != nil && n%flushEvery == 0 {
				flusher.Flush()
			}
		}
	}
}

// LinkHandler returns the link between two pages.
func (a *App) LinkHandler(rw http.ResponseWriter, req *http.Request) {
	l, err := a.language(req)
	if err != nil {
		writeError(rw, http.StatusNotFound, err)
		return
	}
	src, err := pathID(req, "source")
	if err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}
	dst, err := pathID(req, "dest")
	if err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	link, err := a.Store.GetLink(req.Context(), l.ID, src, dst)
	if err != nil {
		writeError(rw, statusFor(err), err)
		return
	}
	if info := infoFrom(req); info != nil {
		info.rows = 1
	}
	writeJSON(rw, http.StatusOK, link)
}

// CountHandler counts the links of a language by parseable flag and
// location type. parseable defaults to true; type is required.
func (a *App) CountHandler(rw http.ResponseWriter, req *http.Request) {
	l, err := a.language(req)
	if err != nil {
		writeError(rw, http.StatusNotFound, err)
		return
	}
	q := req.URL.Query()

	parseable := true
	if v := q.Get("parseable"); v != "" {
		if parseable, err = strconv.ParseBool(v); err != nil {
			writeError(rw, http.StatusBadRequest, err)
			return
		}
	}
	if q.Get("type") == "" {
		writeError(rw, http.StatusBadRequest, errors.New("missing type parameter"))
		return
	}
	locType, err := wiki.ParseLocationType(q.Get("type"))
	if err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	n, err := a.Store.GetCount(req.Context(), l.ID, parseable, locType)
	if err != nil {
		writeError(rw, statusFor(err), err)
		return
	}
	writeJSON(rw, http.StatusOK, countResponse{
		Language:     l.Code,
		IsParseable:  parseable,
		LocationType: locType,
		Count:        n,
	})
}

func (a *App) HealthHandler(rw http.ResponseWriter, req *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
}
