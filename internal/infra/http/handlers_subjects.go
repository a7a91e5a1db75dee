package http

import (
	"errors"
	"net/http"

	"yundao/internal/domain"

	"github.com/gin-gonic/gin"
)

type subjectRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Remark  string `json:"remark"`
}

func subjectJSON(s domain.Subject) gin.H {
	return gin.H{
		"id":      s.ID,
		"name":    s.Name,
		"address": s.Address,
		"remark":  s.Remark,
	}
}

func (s *Server) handleListSubjects(c *gin.Context) {
	page, size := parsePage(c)
	result, err := s.store.Subjects.List(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "list subjects failed")
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, subject := range result.Items {
		items = append(items, subjectJSON(subject))
	}
	writeOK(c, "ok", pageJSON(result, items))
}

func (s *Server) handleCreateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "name is required")
		return
	}
	id, err := s.store.Subjects.Create(c.Request.Context(), domain.Subject{
		Name:    req.Name,
		Address: req.Address,
		Remark:  req.Remark,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "create subject failed")
		return
	}
	writeOK(c, "subject created", gin.H{"id": id})
}

func (s *Server) handleGetSubject(c *gin.Context) {
	subject, err := s.store.Subjects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "subject not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "get subject failed")
		return
	}
	writeOK(c, "ok", subjectJSON(*subject))
}

func (s *Server) handleUpdateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "name is required")
		return
	}
	err := s.store.Subjects.Update(c.Request.Context(), domain.Subject{
		ID:      c.Param("id"),
		Name:    req.Name,
		Address: req.Address,
		Remark:  req.Remark,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "subject not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "update subject failed")
		return
	}
	writeOK(c, "subject updated", nil)
}

func (s *Server) handleDeleteSubject(c *gin.Context) {
	if err := s.store.Subjects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "subject not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "delete subject failed")
		return
	}
	writeOK(c, "subject deleted", nil)
}
