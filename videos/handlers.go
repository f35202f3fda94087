package videos

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/drewmudry/slideshorts/models"
	"github.com/drewmudry/slideshorts/worker"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	Processor *worker.Processor
	StoreDir  string
}

func NewHandler(proc *worker.Processor, storeDir string) *Handler {
	return &Handler{Processor: proc, StoreDir: storeDir}
}

// RegisterRoutes mounts the video endpoints on r.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	videoRoutes := r.Group("/v1/videos")
	{
		videoRoutes.POST("", h.CreateVideo)
		videoRoutes.GET("/:id", h.GetVideo)
	}

	r.GET("/files/:name", h.GetFile)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
}

// CreateVideo renders the request and only then responds with the job id.
// The outcome, success or failure, is read back through GetVideo.
func (h *Handler) CreateVideo(c *gin.Context) {
	var req models.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A client hanging up does not abort the render.
	jobID := h.Processor.Submit(context.WithoutCancel(c.Request.Context()), req)
	c.JSON(http.StatusOK, gin.H{"job_id": jobID})
}

func (h *Handler) GetVideo(c *gin.Context) {
	job, ok := h.Processor.Jobs.Get(c.Param("id"))
	if !ok {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) GetFile(c *gin.Context) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		notFound(c)
		return
	}

	path := filepath.Join(h.StoreDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		notFound(c)
		return
	}
	c.File(path)
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "hint": "POST /v1/videos"})
}

func (h *Handler) Health(c *gin.Context) {
	if _, err := os.Stat(h.StoreDir); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"jobs":   h.Processor.Jobs.Len(),
	})
}
