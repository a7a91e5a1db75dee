package http

import (
	"errors"
	"net/http"

	"yundao/internal/domain"

	"github.com/gin-gonic/gin"
)

type departRequest struct {
	SubjectID string `json:"subjectId"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Remark    string `json:"remark"`
}

func departJSON(d domain.Depart) gin.H {
	return gin.H{
		"id":        d.ID,
		"subjectId": d.SubjectID,
		"name":      d.Name,
		"code":      d.Code,
		"remark":    d.Remark,
	}
}

func (s *Server) handleListDeparts(c *gin.Context) {
	page, size := parsePage(c)
	result, err := s.store.Departs.ListBySubject(c.Request.Context(), c.Query("subjectId"), page, size)
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "list departs failed")
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, depart := range result.Items {
		items = append(items, departJSON(depart))
	}
	writeOK(c, "ok", pageJSON(result, items))
}

func (s *Server) handleCreateDepart(c *gin.Context) {
	var req departRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.SubjectID == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "subjectId and name are required")
		return
	}
	id, err := s.store.Departs.Create(c.Request.Context(), domain.Depart{
		SubjectID: req.SubjectID,
		Name:      req.Name,
		Code:      req.Code,
		Remark:    req.Remark,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "create depart failed")
		return
	}
	writeOK(c, "depart created", gin.H{"id": id})
}

func (s *Server) handleGetDepart(c *gin.Context) {
	depart, err := s.store.Departs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "depart not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "get depart failed")
		return
	}
	writeOK(c, "ok", departJSON(*depart))
}

func (s *Server) handleUpdateDepart(c *gin.Context) {
	var req departRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "name is required")
		return
	}
	err := s.store.Departs.Update(c.Request.Context(), domain.Depart{
		ID:     c.Param("id"),
		Name:   req.Name,
		Code:   req.Code,
		Remark: req.Remark,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "depart not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "update depart failed")
		return
	}
	writeOK(c, "depart updated", nil)
}

func (s *Server) handleDeleteDepart(c *gin.Context) {
	if err := s.store.Departs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "depart not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "delete depart failed")
		return
	}
	writeOK(c, "depart deleted", nil)
}
