package webserver

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"github.com/stake-plus/claimcheck/src/render"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const pageName = "index.html"

type Checks struct {
	checker Checker
	latest  *pipeline.Latest
	logger  *zap.Logger
}

func NewChecks(checker Checker, latest *pipeline.Latest, logger *zap.Logger) Checks {
	return Checks{checker: checker, latest: latest, logger: logger}
}

type pageData struct {
	Claim     string
	MinLength int
	MaxLength int
	View      *render.View
	Error     *pageError
}

type pageError struct {
	Title   string
	Message string
}

type checkResponse struct {
	RunID      string          `json:"run_id,omitempty"`
	Seq        uint64          `json:"seq,omitempty"`
	State      pipeline.State  `json:"state"`
	Claim      string          `json:"claim"`
	Verdict    *claims.Verdict `json:"verdict,omitempty"`
	Stage      pipeline.Stage  `json:"stage,omitempty"`
	Error      string          `json:"error,omitempty"`
	ElapsedMS  int64           `json:"elapsed_ms"`
	Superseded bool            `json:"superseded,omitempty"`
}

func newCheckResponse(out pipeline.Outcome, superseded bool) checkResponse {
	resp := checkResponse{
		RunID:      runIDString(out.RunID),
		Seq:        out.Seq,
		State:      out.State,
		Claim:      out.Claim,
		Verdict:    out.Verdict,
		ElapsedMS:  out.Elapsed.Milliseconds(),
		Superseded: superseded,
	}
	if out.Err != nil {
		resp.Stage = out.Err.Stage
		resp.Error = out.Err.UserMessage()
	}
	return resp
}

func statusFor(err *pipeline.StageError) int {
	switch {
	case err == nil:
		return http.StatusOK
	case err.Stage == pipeline.StageInput:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// run executes one submission and records it as the client's latest.
func (h Checks) run(ctx context.Context, client, claim string, observe pipeline.Observer) (pipeline.Outcome, bool) {
	out := h.checker.Run(ctx, claim, observe)
	if !out.State.Terminal() {
		return out, false
	}
	superseded := !h.latest.Offer(client, out)
	if superseded {
		h.logger.Debug("discarding superseded run",
			zap.String("run_id", out.RunID.String()),
			zap.Uint64("seq", out.Seq))
	}
	return out, superseded
}

func (h Checks) Page(c *gin.Context) {
	h.renderPage(c, http.StatusOK, pageData{})
}

// Submit handles the HTML form.
func (h Checks) Submit(c *gin.Context) {
	claim := c.PostForm("claim")
	out, _ := h.run(c.Request.Context(), c.ClientIP(), claim, nil)

	data := pageData{Claim: claim}
	if out.Err != nil {
		ev := render.NewErrorView(out.Err)
		data.Error = &pageError{Title: errorTitle(out.Err.Stage), Message: ev.Message}
	} else if out.Verdict != nil {
		view := render.NewView(*out.Verdict)
		data.View = &view
	}
	h.renderPage(c, statusFor(out.Err), data)
}

func (h Checks) renderPage(c *gin.Context, status int, data pageData) {
	data.MinLength = pipeline.MinClaimLength
	data.MaxLength = pipeline.MaxClaimLength
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(c.Writer, pageName, data); err != nil {
		h.logger.Error("render page", zap.Error(err))
	}
}

func errorTitle(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageSearch:
		return "Search failed"
	case pipeline.StageAnalysis:
		return "Analysis failed"
	default:
		return "Please check your claim"
	}
}

// Check is the JSON API.
func (h Checks) Check(c *gin.Context) {
	var req struct {
		Claim string `json:"claim"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object with a claim field"})
		return
	}

	out, superseded := h.run(c.Request.Context(), c.ClientIP(), req.Claim, nil)
	c.JSON(statusFor(out.Err), newCheckResponse(out, superseded))
}

// Stream reports each state as a server-sent event, then the verdict or the
// error. The run is detached from the request, so a client that goes away
// does not abort it.
func (h Checks) Stream(c *gin.Context) {
	claim := c.Query("claim")
	if _, err := pipeline.ValidateClaim(claim); err != nil {
		se := &pipeline.StageError{Stage: pipeline.StageInput, Err: err}
		c.JSON(http.StatusBadRequest, gin.H{"state": pipeline.StateIdle, "stage": se.Stage, "error": se.UserMessage()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := context.WithoutCancel(c.Request.Context())
	out, superseded := h.run(ctx, c.ClientIP(), claim, func(_ uuid.UUID, s pipeline.State) {
		c.SSEvent("state", gin.H{"state": s, "message": render.ProgressText(s)})
		c.Writer.Flush()
	})

	event := "verdict"
	if out.Err != nil {
		event = "error"
	}
	c.SSEvent(event, newCheckResponse(out, superseded))
	c.Writer.Flush()
}

// Latest returns the newest completed check for the calling client.
func (h Checks) Latest(c *gin.Context) {
	out, ok := h.latest.Get(c.ClientIP())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed check for this client"})
		return
	}
	c.JSON(http.StatusOK, newCheckResponse(out, false))
}
