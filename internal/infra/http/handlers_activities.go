package http

import (
	"errors"
	"net/http"
	"time"

	"yundao/internal/domain"
	"yundao/internal/infra/db"

	"github.com/gin-gonic/gin"
)

type activityRequest struct {
	SubjectID string `json:"subjectId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func activityJSON(a domain.Activity) gin.H {
	return gin.H{
		"id":        a.ID,
		"subjectId": a.SubjectID,
		"title":     a.Title,
		"content":   a.Content,
		"status":    a.Status,
		"startTime": a.StartTime.Format(time.RFC3339),
		"endTime":   a.EndTime.Format(time.RFC3339),
	}
}

func parseActivityTimes(req activityRequest) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("endTime before startTime")
	}
	return start, end, nil
}

func (s *Server) handleListActivities(c *gin.Context) {
	page, size := parsePage(c)
	result, err := s.store.Activities.ListBySubject(c.Request.Context(), c.Query("subjectId"), page, size)
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "list activities failed")
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, activity := range result.Items {
		items = append(items, activityJSON(activity))
	}
	writeOK(c, "ok", pageJSON(result, items))
}

func (s *Server) handleCreateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.SubjectID == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "subjectId and title are required")
		return
	}
	start, end, err := parseActivityTimes(req)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeGeneric, "startTime and endTime must be RFC3339 with endTime after startTime")
		return
	}
	id, err := s.store.Activities.Create(c.Request.Context(), domain.Activity{
		SubjectID: req.SubjectID,
		Title:     req.Title,
		Content:   req.Content,
		Status:    db.ActivityStatusDraft,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "create activity failed")
		return
	}
	writeOK(c, "activity created", gin.H{"id": id})
}

func (s *Server) handleGetActivity(c *gin.Context) {
	activity, err := s.store.Activities.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "activity not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "get activity failed")
		return
	}
	writeOK(c, "ok", activityJSON(*activity))
}

func (s *Server) handleUpdateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "title is required")
		return
	}
	start, end, err := parseActivityTimes(req)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeGeneric, "startTime and endTime must be RFC3339 with endTime after startTime")
		return
	}
	err = s.store.Activities.Update(c.Request.Context(), domain.Activity{
		ID:        c.Param("id"),
		Title:     req.Title,
		Content:   req.Content,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "activity not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "update activity failed")
		return
	}
	writeOK(c, "activity updated", nil)
}

func (s *Server) handleReleaseActivity(c *gin.Context) {
	err := s.store.Activities.SetStatus(c.Request.Context(), c.Param("id"), db.ActivityStatusReleased)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "activity not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "release activity failed")
		return
	}
	writeOK(c, "activity released", nil)
}

func (s *Server) handleDeleteActivity(c *gin.Context) {
	if err := s.store.Activities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "activity not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "delete activity failed")
		return
	}
	writeOK(c, "activity deleted", nil)
}
