package v1

import (
	"net/http"

	"github.com/vmunix/heroimport/internal/humans"
)

type listHumansResponse struct {
	Items  []*humans.Human `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func (s *Server) getHuman(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	h, err := s.deps.Humans.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) listHumans(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.deps.Humans.List(r.Context(), humans.Filter{
		Owner:  queryString(r, "owner"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []*humans.Human{}
	}
	writeJSON(w, http.StatusOK, listHumansResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}
