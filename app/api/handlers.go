package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gesteves/kona/app/sink"
	"github.com/gesteves/kona/app/tasks"
)

func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		content:   opts.Content,
		runner:    opts.Runner,
		scheduler: opts.Scheduler,
		feed:      opts.Feed,
		artifacts: opts.Artifacts,
		metrics:   opts.Metrics,
		version:   opts.Version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}
	if h.scheduler != nil {
		for k, v := range h.scheduler.Health() {
			health[k] = v
		}
	}
	if last := h.content.Last(); last != nil {
		health["generated_at"] = last.GeneratedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetContentIndex(c *gin.Context) {
	artifacts := make(map[string]string)
	for _, name := range sink.ArtifactNames {
		if h.artifacts[name] != "" {
			artifacts[name] = "/content/" + name
		}
	}

	index := map[string]any{
		"artifacts": artifacts,
		"ready":     false,
	}
	if last := h.content.Last(); last != nil {
		index["ready"] = true
		index["generated_at"] = last.GeneratedAt.Format(time.RFC3339)
		index["entries"] = len(last.Entries)
		index["pages"] = len(last.Pages)
		index["tags"] = len(last.Tags)
	}

	c.JSON(http.StatusOK, index)
}

func (h *Handler) GetArtifact(c *gin.Context) {
	name := c.Param("artifact")
	if h.artifacts[name] == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown artifact"})
		return
	}

	last := h.content.Last()
	if last == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content has not been built yet"})
		return
	}

	c.Header("X-Generated-At", last.GeneratedAt.Format(time.RFC3339))

	if name == "feed" {
		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", h.feed.Run(last))
		return
	}

	v, ok := sink.Collection(last, name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown artifact"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// PostRebuild enqueues a build. Unless force=false is given the cached
// snapshot is dropped first so the build sees fresh source data.
func (h *Handler) PostRebuild(c *gin.Context) {
	force := true
	if v := c.Query("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid force parameter"})
			return
		}
		force = parsed
	}

	task := tasks.NewBuildTask(h.runner, tasks.TriggerAPI, force)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue rebuild", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue rebuild", "message": err.Error()})
		return
	}

	slog.Info("Rebuild enqueued", "id", task.ID, "force", force)
	c.JSON(http.StatusAccepted, gin.H{
		"task_id": task.ID,
		"force":   force,
		"status":  "queued",
	})
}
