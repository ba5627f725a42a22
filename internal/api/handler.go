package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// Server provides the management HTTP API: rules, AI configs, connected
// pages, history and dashboard stats
type Server struct {
	pages     repo.PageRepo
	rules     repo.RuleRepo
	configs   repo.AIConfigRepo
	history   repo.HistoryRepo
	messenger repo.MessengerRepo
	generator repo.GeneratorRepo
}

// NewServer creates a new API server
func NewServer(
	pages repo.PageRepo,
	rules repo.RuleRepo,
	configs repo.AIConfigRepo,
	history repo.HistoryRepo,
	messenger repo.MessengerRepo,
	generator repo.GeneratorRepo,
) *Server {
	return &Server{
		pages:     pages,
		rules:     rules,
		configs:   configs,
		history:   history,
		messenger: messenger,
		generator: generator,
	}
}

// Register mounts all API routes on the mux
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/rules", s.handleRules)
	mux.HandleFunc("/api/rules/", s.handleRuleItem)
	mux.HandleFunc("/api/ai-config", s.handleAIConfig)
	mux.HandleFunc("/api/ai-config/validate", s.handleAIConfigValidate)
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/pages", s.handlePages)
	mux.HandleFunc("/api/stats", s.handleStats)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// ============ Rule Handlers ============

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		ownerID, ok := ownerParam(w, r)
		if !ok {
			return
		}
		pageID := r.URL.Query().Get("page")
		if pageID == "" {
			http.Error(w, "page is required", http.StatusBadRequest)
			return
		}
		rules, err := s.rules.List(ctx, ownerID, pageID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		result := make([]ruleJSON, len(rules))
		for i, rule := range rules {
			result[i] = toRuleJSON(rule)
		}
		s.writeJSON(w, map[string]interface{}{"rules": result})

	case http.MethodPost:
		var req ruleJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.OwnerID == 0 || req.PageID == "" || req.Keyword == "" || req.Response == "" {
			http.Error(w, "owner_id, page_id, keyword and response are required", http.StatusBadRequest)
			return
		}
		rule := &domain.Rule{
			OwnerID:       req.OwnerID,
			PageID:        req.PageID,
			Keyword:       req.Keyword,
			Response:      req.Response,
			Priority:      req.Priority,
			MatchType:     domain.MatchType(req.MatchType),
			CaseSensitive: req.CaseSensitive,
			Active:        true,
		}
		if req.Priority == 0 {
			rule.Priority = 1
		}
		id, err := s.rules.Create(ctx, rule)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"id": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRuleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid rule id", http.StatusBadRequest)
		return
	}
	ownerID, ok := ownerParam(w, r)
	if !ok {
		return
	}
	if err := s.rules.Delete(r.Context(), id, ownerID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true})
}

// ============ AI Config Handlers ============

func (s *Server) handleAIConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		ownerID, ok := ownerParam(w, r)
		if !ok {
			return
		}
		pageID := r.URL.Query().Get("page")
		if pageID == "" {
			http.Error(w, "page is required", http.StatusBadRequest)
			return
		}
		cfg, err := s.configs.Get(ctx, ownerID, pageID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if cfg == nil {
			s.writeJSON(w, map[string]interface{}{"config": nil})
			return
		}
		s.writeJSON(w, map[string]interface{}{"config": toConfigJSON(cfg)})

	case http.MethodPost:
		var req configJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.OwnerID == 0 || req.PageID == "" || req.Provider == "" {
			http.Error(w, "owner_id, page_id and provider are required", http.StatusBadRequest)
			return
		}
		cfg := req.toDomain()
		cfg.Active = true
		if err := s.configs.Upsert(ctx, cfg); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAIConfigValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req configJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.generator.ValidateCredentials(r.Context(), req.toDomain()); err != nil {
		s.writeJSON(w, map[string]interface{}{"valid": false, "error": err.Error()})
		return
	}
	s.writeJSON(w, map[string]interface{}{"valid": true})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		http.Error(w, "provider is required", http.StatusBadRequest)
		return
	}
	models := s.generator.Models(provider)
	if models == nil {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]interface{}{"provider": provider, "models": models})
}

// ============ History Handler ============

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerID, ok := ownerParam(w, r)
	if !ok {
		return
	}
	pageID := r.URL.Query().Get("page")

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	records, err := s.history.List(r.Context(), ownerID, pageID, limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result := make([]historyJSON, len(records))
	for i, rec := range records {
		result[i] = toHistoryJSON(rec)
	}
	s.writeJSON(w, map[string]interface{}{"history": result})
}

// ============ Page Handlers ============

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		ownerID, ok := ownerParam(w, r)
		if !ok {
			return
		}
		pages, err := s.pages.ListByOwner(ctx, ownerID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		result := make([]pageJSON, len(pages))
		for i, page := range pages {
			result[i] = pageJSON{
				ID:       page.ID,
				OwnerID:  page.OwnerID,
				PageID:   page.PageID,
				PageName: page.PageName,
				Active:   page.Active,
			}
		}
		s.writeJSON(w, map[string]interface{}{"pages": result})

	case http.MethodPost:
		var req struct {
			OwnerID     int64  `json:"owner_id"`
			PageID      string `json:"page_id"`
			PageName    string `json:"page_name"`
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.OwnerID == 0 || req.PageID == "" || req.AccessToken == "" {
			http.Error(w, "owner_id, page_id and access_token are required", http.StatusBadRequest)
			return
		}

		info, err := s.messenger.ValidatePageToken(ctx, req.PageID, req.AccessToken)
		if err != nil {
			s.writeJSON(w, map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		name := req.PageName
		if name == "" {
			name = info.Name
		}
		page := &domain.Page{
			OwnerID:     req.OwnerID,
			PageID:      req.PageID,
			PageName:    name,
			AccessToken: req.AccessToken,
			Active:      true,
		}
		if err := s.pages.Upsert(ctx, page); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true, "page_name": name})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ============ Stats Handler ============

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	ownerID, ok := ownerParam(w, r)
	if !ok {
		return
	}

	pageCount, err := s.pages.CountActive(ctx, ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ruleCount, err := s.rules.CountActive(ctx, ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	configCount, err := s.configs.CountActive(ctx, ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayCount, err := s.history.CountSince(ctx, ownerID, midnight)
	if err != nil {
		s.writeError(w, err)
		return
	}
	distribution, err := s.history.SourceCountsSince(ctx, ownerID, now.AddDate(0, 0, -7))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"active_pages":      pageCount,
		"active_rules":      ruleCount,
		"active_ai_configs": configCount,
		"today_messages":    todayCount,
		"response_types":    distribution,
	})
}

// ============ Helpers ============

// ownerParam extracts the owner query parameter, writing a 400 when missing
func ownerParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ownerStr := r.URL.Query().Get("owner")
	ownerID, err := strconv.ParseInt(ownerStr, 10, 64)
	if err != nil || ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return 0, false
	}
	return ownerID, true
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
