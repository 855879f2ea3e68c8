package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/lookup"
	"github.com/iabetor/toneo/internal/tts"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debugf("[server] 写响应失败: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// decodeBody 解析 JSON 请求体，失败时已写好 422 响应。
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         AppName,
		"version":     Version,
		"description": "Chinese tone learning API",
	})
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Latency  string `json:"latency,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", Version: Version, Database: "unavailable"}
	if s.deps.DB == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.deps.DB.Ping(ctx); err != nil {
		logger.Warnf("[server] 数据库健康检查失败: %v", err)
		resp.Status = "degraded"
		resp.Database = "error"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Database = "ok"
	resp.Latency = time.Since(start).Round(time.Microsecond).String()
	writeJSON(w, http.StatusOK, resp)
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n := utf8.RuneCountInString(req.Text)
	if n == 0 || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Text must not be empty")
		return
	}
	if limit := s.cfg.Analyze.MaxChars; limit > 0 && n > limit {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Text must be at most %d characters", limit))
		return
	}

	result, err := s.deps.Analyzer.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		logger.Errorf("[server] 分析失败: %v", err)
		writeError(w, http.StatusInternalServerError, "Analysis failed. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.PathValue("word"))
	view, err := s.deps.Dictionary.Lookup(r.Context(), word)
	switch {
	case errors.Is(err, lookup.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Dictionary not available")
	case errors.Is(err, lookup.ErrNoReading):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Word '%s' not found", word))
	case err != nil:
		logger.Errorf("[server] 查询 %q 失败: %v", word, err)
		writeError(w, http.StatusInternalServerError, "Dictionary lookup failed")
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

type voiceInfo struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Locale string `json:"locale"`
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices := make(map[string]voiceInfo)
	for _, v := range tts.Voices() {
		voices[v.ID] = voiceInfo{Name: v.Name, Gender: v.Gender, Locale: v.Locale}
	}
	writeJSON(w, http.StatusOK, map[string]any{"voices": voices})
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req tts.Request
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.deps.Speech.Synthesize(r.Context(), req)
	switch {
	case errors.Is(err, tts.ErrTextTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, tts.ErrInvalidRequest):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, tts.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "TTS service is not available")
		return
	case err != nil:
		logger.Errorf("[server] 语音合成失败: %v", err)
		writeError(w, http.StatusInternalServerError, "Speech synthesis failed. Please try again.")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "audio/mpeg")
	h.Set("Content-Disposition", `inline; filename="speech.mp3"`)
	h.Set("Cache-Control", "public, max-age=86400")
	h.Set("Content-Length", strconv.Itoa(len(res.Audio)))
	if res.Cached {
		h.Set("X-TTS-Cache", "hit")
	} else {
		h.Set("X-TTS-Cache", "miss")
	}
	if res.Duration > 0 {
		h.Set("X-Audio-Duration-Ms", strconv.FormatInt(res.Duration.Milliseconds(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Audio); err != nil {
		logger.Debugf("[server] 写音频失败: %v", err)
	}
}

type ttsHealthResponse struct {
	Status  string  `json:"status"`
	Engine  *string `json:"engine"`
	Message string  `json:"message"`
}

func (s *Server) handleTTSHealth(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Speech.Available() {
		writeJSON(w, http.StatusOK, ttsHealthResponse{
			Status:  "unavailable",
			Message: "No TTS engine configured",
		})
		return
	}
	name := s.deps.Speech.EngineName()
	writeJSON(w, http.StatusOK, ttsHealthResponse{
		Status:  "available",
		Engine:  &name,
		Message: fmt.Sprintf("TTS ready using %s", name),
	})
}
