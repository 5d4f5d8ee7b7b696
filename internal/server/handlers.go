package server

import (
	"fmt"
	stdio "io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/kinship"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/view"
)

// maxUpload bounds import bodies.
const maxUpload = 32 << 20

type healthResponse struct {
	Status string         `json:"status"`
	People int            `json:"people"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{Status: "ok", People: s.store.Len(), Build: buildinfo.Current()})
}

type treesResponse struct {
	Selected string   `json:"selected"`
	Trees    []string `json:"trees"`
}

func (s *Server) listTrees(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	resp := treesResponse{Selected: sess.Tree(), Trees: sess.Trees()}
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, resp)
}

type selectTreeRequest struct {
	Tree string `json:"tree" validate:"required,max=64"`
}

func (s *Server) selectTree(w http.ResponseWriter, r *http.Request) {
	var req selectTreeRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	err := sess.SelectTree(req.Tree)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, treesResponse{Selected: req.Tree, Trees: sess.Trees()})
}

type forestResponse struct {
	Tree        string      `json:"tree"`
	People      int         `json:"people"`
	Roots       []person.ID `json:"roots"`
	Generations int         `json:"generations"`
	Nodes       []view.Node `json:"nodes"`
}

func (s *Server) getForest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	s.mu.Lock()
	f := sess.Forest(ctx)
	resp := forestResponse{
		Tree:        f.Tree(),
		People:      f.Len(),
		Roots:       f.Roots(),
		Generations: sess.Generations(ctx).Depth(),
		Nodes:       sess.Nodes(ctx),
	}
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, resp)
}

type foldResponse struct {
	ID     person.ID   `json:"id,omitempty"`
	Folded bool        `json:"folded"`
	All    []person.ID `json:"collapsed"`
}

func (s *Server) toggleFold(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)

	s.mu.Lock()
	folded, err := sess.ToggleFold(ctx, id)
	all := sess.View().Folded()
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, foldResponse{ID: id, Folded: folded, All: all})
}

func (s *Server) collapseAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	s.mu.Lock()
	sess.CollapseAll(ctx)
	all := sess.View().Folded()
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, foldResponse{Folded: true, All: all})
}

func (s *Server) expandAll(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	sess.ExpandAll()
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, foldResponse{All: []person.ID{}})
}

type relationshipResponse struct {
	kinship.Relationship
	Sentence string `json:"sentence"`
}

func (s *Server) getRelationship(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, err := parseID(q.Get("a"), "a")
	if err != nil {
		s.respondError(w, err)
		return
	}
	b, err := parseID(q.Get("b"), "b")
	if err != nil {
		s.respondError(w, err)
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)

	s.mu.Lock()
	rel, err := sess.Relate(ctx, a, b)
	var sentence string
	if err == nil {
		sentence = rel.Sentence(sess.Forest(ctx))
	}
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, relationshipResponse{Relationship: rel, Sentence: sentence})
}

type diagnosticDTO struct {
	Kind    string    `json:"kind"`
	ID      person.ID `json:"id"`
	Ref     person.ID `json:"ref,omitempty"`
	Message string    `json:"message"`
}

type diagnosticsResponse struct {
	Tree        string          `json:"tree"`
	People      int             `json:"people"`
	Clean       bool            `json:"clean"`
	Diagnostics []diagnosticDTO `json:"diagnostics"`
}

func reportDTO(rep session.Report) diagnosticsResponse {
	out := diagnosticsResponse{Tree: rep.Tree, People: rep.People, Clean: rep.Clean(), Diagnostics: []diagnosticDTO{}}
	for _, d := range rep.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, diagnosticDTO{Kind: string(d.Kind), ID: d.ID, Ref: d.Ref, Message: d.String()})
	}
	for _, u := range rep.Unresolved {
		out.Diagnostics = append(out.Diagnostics, diagnosticDTO{Kind: "unresolved", ID: u.Person.ID, Message: errors.UserMessage(u.Err)})
	}
	for _, c := range rep.Conflicts {
		out.Diagnostics = append(out.Diagnostics, diagnosticDTO{Kind: string(c.Kind), ID: c.ID, Ref: c.Via, Message: c.String()})
	}
	return out
}

func (s *Server) getDiagnostics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	s.mu.Lock()
	rep := sess.Check(ctx)
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, reportDTO(rep))
}

func (s *Server) listPeople(w http.ResponseWriter, r *http.Request) {
	tree := r.URL.Query().Get("tree")
	if tree == "" {
		tree = sessionFrom(r.Context()).Tree()
	}
	s.respondJSON(w, http.StatusOK, s.store.Scope(tree))
}

func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	p, err := s.store.Get(id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	var p person.Person
	if err := s.decodeBody(r, &p); err != nil {
		s.respondError(w, err)
		return
	}
	s.mu.Lock()
	err := s.store.Add(p)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/people/%d", p.ID))
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	var patch person.Patch
	if err := s.decodeBody(r, &patch); err != nil {
		s.respondError(w, err)
		return
	}
	s.mu.Lock()
	p, err := s.store.Update(id, patch)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) deletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.mu.Lock()
	err = s.store.Remove(id)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importResponse struct {
	Format   string `json:"format"`
	Imported int    `json:"imported"`
	People   int    `json:"people"`
}

// importData loads the request body. The format comes from ?format=, the
// mode from ?mode=append|replace (default replace).
func (s *Server) importData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := kio.ForFormat(q.Get("format"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	mode := session.ImportReplace
	switch q.Get("mode") {
	case "", "replace":
	case "append":
		mode = session.ImportAppend
	default:
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "mode must be replace or append, got %q", q.Get("mode")))
		return
	}
	data, err := stdio.ReadAll(stdio.LimitReader(r.Body, maxUpload))
	if err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	ctx := r.Context()
	sess := sessionFrom(ctx)
	s.mu.Lock()
	n, err := sess.Import(ctx, c, data, mode)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, importResponse{Format: c.Format(), Imported: n, People: s.store.Len()})
}

// exportData writes the selected tree as an attachment.
func (s *Server) exportData(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	c, err := kio.ForFormat(format)
	if err != nil {
		s.respondError(w, err)
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)
	s.mu.Lock()
	data, err := sess.Export(ctx, c)
	tree := sess.Tree()
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(c.Format()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "kintree-"+tree+c.Ext()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "csv", "sheets":
		return "text/csv; charset=utf-8"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

type datasetsResponse struct {
	Datasets []string `json:"datasets"`
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	names, err := s.opts.Repository.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.respondJSON(w, http.StatusOK, datasetsResponse{Datasets: names})
}

type datasetResponse struct {
	Name   string `json:"name"`
	People int    `json:"people"`
}

func (s *Server) saveDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := r.Context()
	s.mu.Lock()
	err := sessionFrom(ctx).Save(ctx, s.opts.Repository, name)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, datasetResponse{Name: name, People: s.store.Len()})
}

func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := r.Context()
	s.mu.Lock()
	err := sessionFrom(ctx).Load(ctx, s.opts.Repository, name)
	s.mu.Unlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, datasetResponse{Name: name, People: s.store.Len()})
}

func (s *Server) deleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Repository.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
