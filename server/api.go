package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/minutes/analysis"
	"github.com/kbukum/minutes/attribution"
	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/record"
	"github.com/kbukum/minutes/segment"
	"github.com/kbukum/minutes/transcription"
	"github.com/kbukum/minutes/validation"
)

// API serves the /v1 routes. Analyzer, Records and Transcriber are
// optional: routes that need a missing collaborator answer 503.
type API struct {
	Attribution *attribution.Pipeline
	Analyzer    *analysis.Analyzer
	Records     *record.Writer
	Transcriber *transcription.Service
	Log         *logger.Logger
}

// RegisterAPI mounts the /v1 routes on the server's engine.
func (s *Server) RegisterAPI(api *API) {
	if api.Log == nil {
		api.Log = s.log
	}
	api.Register(s.engine.Group("/v1"))
}

// Register mounts the handlers on g.
func (a *API) Register(g *gin.RouterGroup) {
	g.POST("/transcribe", a.transcribe)
	g.POST("/turns", a.buildTurns)
	g.POST("/action-items", a.actionItems)
	g.POST("/commitments", a.commitments)
	g.POST("/speakers/relabel", a.relabel)
	g.POST("/analyze", a.analyze)
	g.POST("/query", a.query)
	g.GET("/transcripts", a.listTranscripts)
	g.GET("/transcripts/:key", a.getTranscript)
}

type turnsRequest struct {
	Tokens []segment.Token `json:"tokens" validate:"required"`
	Save   bool            `json:"save"`
	Name   string          `json:"name" validate:"required_if=Save true"`
}

type turnsResponse struct {
	segment.Transcript
	RecordKey string `json:"record_key,omitempty"`
}

func (a *API) buildTurns(c *gin.Context) {
	var req turnsRequest
	if !bind(c, &req) {
		return
	}
	if err := segment.CheckOrder(req.Tokens); err != nil {
		RespondWithError(c, err)
		return
	}

	resp := turnsResponse{Transcript: segment.NewTranscript(req.Tokens)}
	if req.Save {
		if a.Records == nil {
			RespondWithError(c, apperrors.ServiceUnavailable("record store"))
			return
		}
		rec, err := a.Records.WriteTranscript(c.Request.Context(), req.Name, resp.Transcript)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		resp.RecordKey = rec.Key
		c.JSON(http.StatusCreated, DataResponse{Data: resp})
		return
	}
	RespondOK(c, resp)
}

type actionItemsRequest struct {
	Raw        string   `json:"raw"`
	Transcript string   `json:"transcript"`
	Roster     []string `json:"roster"`
	Threshold  *float64 `json:"threshold"`
}

func (a *API) actionItems(c *gin.Context) {
	var req actionItemsRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	threshold := a.Attribution.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	items, err := a.Attribution.ProcessWithThreshold(ctx, req.Raw, req.Transcript, req.Roster, threshold)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"action_items": items})
}

type commitmentsRequest struct {
	Raw string `json:"raw"`
}

func (a *API) commitments(c *gin.Context) {
	var req commitmentsRequest
	if !bind(c, &req) {
		return
	}
	out, err := a.Attribution.ProcessCommitments(c.Request.Context(), req.Raw)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"implicit_commitments": out})
}

type relabelRequest struct {
	Mapping    map[string]string   `json:"mapping" validate:"required,min=1"`
	RecordKey  string              `json:"record_key" validate:"required_without=Transcript"`
	Transcript *segment.Transcript `json:"transcript"`
}

func (a *API) relabel(c *gin.Context) {
	var req relabelRequest
	if !bind(c, &req) {
		return
	}

	if req.RecordKey == "" {
		RespondOK(c, req.Transcript.Relabel(req.Mapping))
		return
	}
	if a.Records == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("record store"))
		return
	}
	rec, err := a.Records.RelabelFile(c.Request.Context(), req.RecordKey, req.Mapping)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, rec)
}

type analyzeRequest struct {
	Transcript string             `json:"transcript" validate:"required"`
	Metadata   *analysis.Metadata `json:"metadata"`
	Save       bool               `json:"save"`
	Name       string             `json:"name" validate:"required_if=Save true"`
}

type analyzeResponse struct {
	*analysis.Report
	RecordKey string `json:"record_key,omitempty"`
}

func (a *API) analyze(c *gin.Context) {
	var req analyzeRequest
	if !bind(c, &req) || !a.requireAnalyzer(c) {
		return
	}
	if req.Save && a.Records == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("record store"))
		return
	}

	ctx := c.Request.Context()
	report, err := a.Analyzer.Analyze(ctx, req.Transcript, req.Metadata)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	resp := analyzeResponse{Report: report}
	if req.Save {
		rec, err := a.Records.WriteAnalysis(ctx, req.Name, report, req.Metadata)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		resp.RecordKey = rec.Key
	}
	RespondOK(c, resp)
}

type queryRequest struct {
	Transcript string `json:"transcript" validate:"required"`
	Question   string `json:"question" validate:"required"`
}

func (a *API) query(c *gin.Context) {
	var req queryRequest
	if !bind(c, &req) || !a.requireAnalyzer(c) {
		return
	}
	answer, err := a.Analyzer.Query(c.Request.Context(), req.Transcript, req.Question)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"answer": answer})
}

func (a *API) listTranscripts(c *gin.Context) {
	if !a.requireRecords(c) {
		return
	}
	base := strings.TrimSpace(c.Query("base"))
	if base == "" {
		RespondWithError(c, apperrors.MissingField("base"))
		return
	}
	files, err := a.Records.Transcripts(c.Request.Context(), base)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, files)
}

func (a *API) getTranscript(c *gin.Context) {
	if !a.requireRecords(c) {
		return
	}
	rec, err := a.Records.ReadTranscript(c.Request.Context(), c.Param("key"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"key": rec.Key, "record": rec})
}

func (a *API) requireAnalyzer(c *gin.Context) bool {
	if a.Analyzer == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("language model"))
		return false
	}
	return true
}

func (a *API) requireRecords(c *gin.Context) bool {
	if a.Records == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("record store"))
		return false
	}
	return true
}

// bind decodes the JSON body into req and validates it, writing the error
// response itself on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(c, apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge))
			return false
		}
		RespondWithError(c, apperrors.InvalidFormat("body", "JSON").WithCause(err))
		return false
	}
	if err := validation.Validate(req); err != nil {
		RespondWithError(c, err)
		return false
	}
	return true
}
