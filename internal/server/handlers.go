package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/report"
)

// workbookFilename is the XLSX workbook written next to the vault notes.
const workbookFilename = "concept_stats.xlsx"

type analyzeRequest struct {
	WriteVault    bool `json:"write_vault"`
	WriteWorkbook bool `json:"write_workbook"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("analyze request",
		zap.Bool("write_vault", req.WriteVault), zap.Bool("write_workbook", req.WriteWorkbook))

	result, err := s.engine.Analyze(r.Context())
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.WriteVault {
		writer := report.NewWriter(s.config.Storage.VaultDir, s.logger)
		if err := writer.WriteAll(result); err != nil {
			s.logger.Error("vault write failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if req.WriteWorkbook {
		path := filepath.Join(s.config.Storage.VaultDir, workbookFilename)
		if err := report.WriteWorkbook(path, result); err != nil {
			s.logger.Error("workbook write failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.respondJSON(w, http.StatusOK, result.Report())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("limit", req.Limit))

	results, err := s.index.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"total":   len(results),
		"results": results,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	convCount, err := s.storage.CountConversations(ctx)
	if err != nil {
		s.logger.Error("status: count conversations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	msgCount, err := s.storage.CountMessages(ctx)
	if err != nil {
		s.logger.Error("status: count messages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"conversations": convCount,
		"messages":      msgCount,
		"config": map[string]interface{}{
			"data_dir":      s.config.Storage.DataDir,
			"database_path": s.config.Storage.DatabasePath,
			"vault_dir":     s.config.Storage.VaultDir,
			"concepts":      len(s.config.Concepts),
		},
	}
	if s.index != nil {
		if indexed, err := s.index.DocCount(); err == nil {
			resp["indexed_transcripts"] = indexed
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
