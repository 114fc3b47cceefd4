package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/boardroom/internal/export"
	"github.com/mesh-intelligence/boardroom/internal/form"
	"github.com/mesh-intelligence/boardroom/internal/modules"
	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/internal/view"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// filterPrefix marks filter query parameters: ?filter.type=Online.
const filterPrefix = "filter."

// maxBody bounds request bodies.
const maxBody = 1 << 20

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.opts.Version})
}

// moduleInfo describes a module to clients with labels already translated.
type moduleInfo struct {
	*shell.Module
	Label    string            `json:"label"`
	Columns  map[string]string `json:"columns"`
	CanWrite bool              `json:"canWrite"`
}

func (s *Server) describe(m *shell.Module, tr types.Translator, id *types.Identity) moduleInfo {
	cols := make(map[string]string, len(m.Schema))
	for _, c := range m.Schema {
		cols[c.Key] = tr.T(c.Label)
	}
	return moduleInfo{
		Module:   m,
		Label:    tr.T(m.Title),
		Columns:  cols,
		CanWrite: !m.Merged && id.CanWrite(m.AdminOnly),
	}
}

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	tr := s.translator(s.locale(r))
	id := identityFrom(r.Context())
	all := modules.All()
	out := make([]moduleInfo, len(all))
	for i, m := range all {
		out[i] = s.describe(m, tr, id)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getModule(w http.ResponseWriter, r *http.Request) {
	m, err := modules.Lookup(chi.URLParam(r, "module"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeUnknownModule, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.describe(m, s.translator(s.locale(r)), identityFrom(r.Context())))
}

type recordsResponse struct {
	Module  string         `json:"module"`
	Filters types.Filters  `json:"filters"`
	Sort    types.Sort     `json:"sort"`
	Count   int            `json:"count"`
	Records []types.Record `json:"records"`
	Joined  []view.Joined  `json:"joined,omitempty"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	records := sess.View()
	writeJSON(w, http.StatusOK, recordsResponse{
		Module:  sess.Module().Name,
		Filters: sess.Filters(),
		Sort:    sess.Sort(),
		Count:   len(records),
		Records: records,
		Joined:  sess.Joined(),
	})
}

func (s *Server) aggregate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	res, err := sess.Aggregate(chi.URLParam(r, "chart"))
	if errors.Is(err, shell.ErrUnknownChart) {
		writeError(w, http.StatusNotFound, codeUnknownChart, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	m := sess.Module()
	name := export.Filename(m.Name, export.FormatCSV, s.opts.Clock())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteCSV(w, sess.View(), m.Schema, s.translator(s.locale(r))); err != nil {
		s.log.Warn("export failed", "module", m.Name, "error", err)
	}
}

// saveResponse reports a create, update or delete.
type saveResponse struct {
	State   form.State   `json:"state"`
	Message string       `json:"message"`
	Record  types.Record `json:"record,omitempty"`
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, "")
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, chi.URLParam(r, "id"))
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, id string) {
	var fields types.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "body must be a JSON object")
		return
	}
	normalizeNumbers(fields)

	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	res, err := sess.Save(r.Context(), id, fields)
	switch {
	case errors.Is(err, shell.ErrReadOnly):
		writeError(w, http.StatusMethodNotAllowed, codeReadOnly, err.Error())
		return
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return
	}
	s.reply(w, r, res, id == "")
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	id := chi.URLParam(r, "id")
	if _, found := sess.Record(id); !found && !sess.Module().Merged {
		writeError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("record %s not found", id))
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	res := sess.Delete(r.Context(), id, func() bool { return confirmed })
	s.reply(w, r, res, false)
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, res form.Result, created bool) {
	if res.Err != nil {
		s.log.Warn("write rejected", "state", res.State, "error", res.Err)
	}
	tr := s.translator(s.locale(r))
	writeJSON(w, stateStatus(res.State, created), saveResponse{
		State:   res.State,
		Message: tr.T(res.State.MessageKey()),
		Record:  res.Record,
	})
}

// openSession opens the module named in the URL, waits for its data and
// applies the filter and sort query parameters. On failure it writes the
// error reply and returns false.
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) (*shell.Session, bool) {
	m, err := modules.Lookup(chi.URLParam(r, "module"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeUnknownModule, err.Error())
		return nil, false
	}
	tag := s.locale(r)
	sess, err := shell.Open(r.Context(), s.store, m, identityFrom(r.Context()), shell.Options{
		Logger:     s.opts.Logger,
		Locale:     tag,
		Translator: s.translator(tag),
		Clock:      s.opts.Clock,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.LoadTimeout)
	defer cancel()
	if err := sess.WaitLoaded(ctx); err != nil {
		sess.Close()
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "module data did not load")
		return nil, false
	}
	if err := sess.Err(); err != nil {
		sess.Close()
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, err.Error())
		return nil, false
	}
	if err := applyQuery(sess, r.URL.Query()); err != nil {
		sess.Close()
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return nil, false
	}
	return sess, true
}

// applyQuery reads filter.<key>, sort and dir parameters. Only columns
// marked filterable or sortable are accepted. A sort key without a
// direction starts at the module's new-key direction.
func applyQuery(sess *shell.Session, q url.Values) error {
	schema := sess.Module().Schema
	for k, vs := range q {
		key, ok := strings.CutPrefix(k, filterPrefix)
		if !ok || len(vs) == 0 {
			continue
		}
		if c, ok := schema.Column(key); !ok || !c.Filterable {
			return fmt.Errorf("column %q is not filterable", key)
		}
		sess.SetFilter(key, vs[0])
	}
	key := q.Get("sort")
	if key == "" {
		return nil
	}
	if c, ok := schema.Column(key); !ok || !c.Sortable {
		return fmt.Errorf("column %q is not sortable", key)
	}
	dir := types.Direction(q.Get("dir"))
	if dir != types.Asc && dir != types.Desc {
		dir = sess.Module().NewKeyDirection
	}
	sess.SetSort(types.Sort{Key: key, Direction: dir})
	return nil
}

// normalizeNumbers converts decoded json.Number values to float64, the
// numeric type records hold.
func normalizeNumbers(fields types.Record) {
	for k, v := range fields {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				fields[k] = f
			}
		}
	}
}

func (s *Server) locale(r *http.Request) language.Tag {
	if q := r.URL.Query().Get("locale"); q != "" {
		if tag, err := language.Parse(q); err == nil {
			return tag
		}
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		if tags, _, err := language.ParseAcceptLanguage(h); err == nil && len(tags) > 0 {
			return tags[0]
		}
	}
	return s.opts.Locale
}

func (s *Server) translator(tag language.Tag) types.Translator {
	if s.opts.Catalog == nil {
		return types.IdentityTranslator
	}
	return s.opts.Catalog.Translator(tag)
}
