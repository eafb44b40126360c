package server

import (
	"encoding/json"
	"net/http"

	"OtoDist/config"
	"OtoDist/core/apperr"
	"OtoDist/core/form"
	"OtoDist/core/reservation"
	"OtoDist/logger"
	"OtoDist/repository"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	svc       *reservation.Service
	statsRepo *repository.StatsRepository
	validator *form.Validator
	cfg       *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	svc *reservation.Service,
	statsRepo *repository.StatsRepository,
	validator *form.Validator,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		svc:       svc,
		statsRepo: statsRepo,
		validator: validator,
		cfg:       cfg,
	}
}

func (h *APIHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("写入响应失败", logger.ErrorField(err))
		}
	}
}

// respondError maps any error to the JSON envelope { message, code, error? }.
// The raw cause is only included in dev mode.
func (h *APIHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("请求处理失败",
			logger.String("path", r.URL.Path),
			logger.String("code", appErr.Code),
			logger.ErrorField(err))
	} else {
		logger.Warn("请求被拒绝",
			logger.String("path", r.URL.Path),
			logger.String("code", appErr.Code),
			logger.String("message", appErr.Message))
	}

	envelope := map[string]interface{}{
		"message": appErr.Message,
		"code":    appErr.Code,
	}
	if h.cfg.DevMode && appErr.Err != nil {
		envelope["error"] = appErr.Err.Error()
	}

	h.respondJSON(w, appErr.Status, envelope)
}
