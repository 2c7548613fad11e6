package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"daily-digest/internal/pipeline"

	"github.com/gin-gonic/gin"
)

const (
	// ReadyText is served on "/".
	ReadyText = "✅ Daily digest is running. Use /run-script?token=YOUR_RUN_TOKEN to trigger the script."
	// SuccessText is returned after every run that reached delivery, whether
	// or not the email was accepted.
	SuccessText = "✅ Script executed successfully. Email sent."
)

// Runner runs the digest pipeline once.
type Runner interface {
	Run(ctx context.Context, trigger string) (pipeline.Result, error)
}

// Handler serves the trigger endpoint.
type Handler struct {
	runner Runner
	token  string
}

func NewHandler(runner Runner, token string) *Handler {
	return &Handler{runner: runner, token: token}
}

// NewRouter registers "/", "/run-script" and, when metrics is non-nil,
// "/metrics".
func NewRouter(h *Handler, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}
	r.GET("/", h.Home)
	r.GET("/run-script", h.RunScript)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	return r
}

func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, ReadyText)
}

// RunScript checks the token and runs the pipeline synchronously. The caller
// only ever sees 403, the success text or a bare 500. The run is detached
// from the request's cancellation and finishes even if the caller hangs up.
func (h *Handler) RunScript(c *gin.Context) {
	if !h.authorized(c.Query("token")) {
		slog.Warn("server: rejected run-script request", "remote", c.ClientIP())
		c.String(http.StatusForbidden, http.StatusText(http.StatusForbidden))
		return
	}
	res, err := h.runner.Run(context.WithoutCancel(c.Request.Context()), "http")
	if err != nil {
		slog.Error("server: run failed", "run_id", res.RunID, "err", err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.String(http.StatusOK, SuccessText)
}

// authorized compares exactly: case-sensitive, untrimmed. An unset secret
// matches nothing.
func (h *Handler) authorized(token string) bool {
	if h.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}
