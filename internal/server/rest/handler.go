package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type entryRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type indicatorsRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

func (s *RESTServer) register(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	u, err := s.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", u.ID)
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "email": u.Email})
}

func (s *RESTServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (s *RESTServer) listEntries(c *gin.Context) {
	ctx := c.Request.Context()

	if withIndicators, _ := strconv.ParseBool(c.Query("indicators")); withIndicators {
		list, err := s.diary.ListEntriesWithIndicators(ctx)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
		return
	}

	list, err := s.diary.ListEntries(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *RESTServer) createEntry(c *gin.Context) {
	var req entryRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	e, err := s.diary.CreateEntry(c.Request.Context(), req.Title, req.Body)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *RESTServer) getEntry(c *gin.Context) {
	d, err := s.diary.GetEntryDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if d == nil {
		s.respondError(c, fmt.Errorf("%w: entry %s", common.ErrorNotFound, c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *RESTServer) deleteEntry(c *gin.Context) {
	if err := s.diary.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *RESTServer) attachMedia(c *gin.Context) {
	kind, err := models.ParseMediaKind(c.PostForm("kind"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: %w", common.ErrValidation, err))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: %w", common.ErrValidation, err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer f.Close()

	file := models.LocalFile{Content: f, Name: fh.Filename, MimeType: fh.Header.Get("Content-Type")}
	path, err := s.diary.AttachMedia(c.Request.Context(), c.Param("id"), file, kind)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"storage_path": path})
}

func (s *RESTServer) listMedia(c *gin.Context) {
	list, err := s.diary.ListMedia(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *RESTServer) indicators(c *gin.Context) {
	var req indicatorsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.diary.IndicatorsForEntries(c.Request.Context(), req.EntryIDs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// signedURL takes ?path= and an optional ?ttl= in seconds.
func (s *RESTServer) signedURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		s.respondError(c, fmt.Errorf("%w: path is required", common.ErrValidation))
		return
	}

	var ttl time.Duration
	if raw := c.Query("ttl"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			s.respondError(c, fmt.Errorf("%w: ttl must be a non-negative number of seconds", common.ErrValidation))
			return
		}
		ttl = time.Duration(secs) * time.Second
	}

	u, err := s.diary.GetSignedURL(c.Request.Context(), path, ttl)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}
