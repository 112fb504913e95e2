package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/transcription"
)

type transcribeResponse struct {
	*transcription.Output
	RecordKey string `json:"record_key,omitempty"`
}

// transcribe accepts a multipart upload: the "audio" file plus optional
// language, num_speakers, save and name fields.
func (a *API) transcribe(c *gin.Context) {
	if a.Transcriber == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("speech recognizer"))
		return
	}
	file, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(c, apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge))
			return
		}
		RespondWithError(c, apperrors.MissingField("audio"))
		return
	}

	req := transcription.Request{Language: strings.TrimSpace(c.PostForm("language"))}
	if v := strings.TrimSpace(c.PostForm("num_speakers")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondWithError(c, apperrors.InvalidFormat("num_speakers", "non-negative integer"))
			return
		}
		req.NumSpeakers = n
	}
	save := c.PostForm("save") == "true"
	name := strings.TrimSpace(c.PostForm("name"))
	if save && name == "" {
		RespondWithError(c, apperrors.MissingField("name"))
		return
	}
	if save && !a.requireRecords(c) {
		return
	}

	tmp, err := os.CreateTemp("", "minutes-audio-*"+filepath.Ext(file.Filename))
	if err != nil {
		RespondWithError(c, apperrors.Internal(err))
		return
	}
	_ = tmp.Close()
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			a.Log.Warn("remove uploaded audio", logger.ErrorFields("transcribe", err))
		}
	}()
	if err := c.SaveUploadedFile(file, tmp.Name()); err != nil {
		RespondWithError(c, apperrors.Internal(err))
		return
	}
	req.AudioPath = tmp.Name()

	ctx := c.Request.Context()
	out, err := a.Transcriber.Recognize(ctx, req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	resp := transcribeResponse{Output: out}
	if save {
		rec, err := a.Records.WriteTranscript(ctx, name, out.Transcript)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		resp.RecordKey = rec.Key
		RespondCreated(c, resp)
		return
	}
	RespondOK(c, resp)
}
