package api

import (
	"net/http"

	"github.com/gesteves/kona/app/content"
	"github.com/gesteves/kona/app/sink"
	"github.com/gesteves/kona/app/tasks"
)

// ContentSource exposes the content of the most recent successful build.
type ContentSource interface {
	Last() *content.Content
}

var _ ContentSource = (*tasks.Pipeline)(nil)

type FeedRenderer interface {
	Run(c *content.Content) []byte
}

var _ FeedRenderer = (*sink.FeedGenerator)(nil)

type Handler struct {
	content   ContentSource
	runner    tasks.Runner
	scheduler tasks.TaskSchedulerInterface
	feed      FeedRenderer
	artifacts map[string]string
	metrics   http.Handler
	version   string
}

type HandlerOptions struct {
	Content   ContentSource
	Runner    tasks.Runner
	Scheduler tasks.TaskSchedulerInterface
	Feed      FeedRenderer
	// Artifacts lists the enabled artifacts, as in the profile.
	Artifacts map[string]string
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Version string
}
