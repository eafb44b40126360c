package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"OtoDist/core/apperr"
	"OtoDist/logger"
	"OtoDist/model"

	"github.com/gorilla/mux"
)

// uploadSlots 用于控制并发上传请求数
var uploadSlots = make(chan struct{}, 5)

// formMemoryLimit is how much of a multipart body is held in memory while
// parsing; the rest spills to temp files.
const formMemoryLimit = 64 << 20

// UploadHandler 处理专辑投稿：校验表单 → 上传文件 → 写入记录
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.Info("收到投稿请求",
		logger.String("remoteAddr", r.RemoteAddr),
		logger.Int64("contentLength", r.ContentLength))

	// Request ceiling: 10 audio masters at the configured limit plus the
	// cover and form overhead.
	maxRequest := int64(h.cfg.MaxAudioMB)*10<<20 + 20<<20
	if r.ContentLength > maxRequest {
		h.respondError(w, r, apperr.FileTooLarge("request", r.ContentLength, maxRequest))
		return
	}

	select {
	case uploadSlots <- struct{}{}:
		defer func() { <-uploadSlots }()
	default:
		logger.Warn("上传并发已满，拒绝新的投稿请求")
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"message": "Server is busy, please try again later",
			"code":    "BUSY",
		})
		return
	}

	// 分块传输时 ContentLength 为 -1，读取端的硬上限必须始终生效
	r.Body = http.MaxBytesReader(w, r.Body, maxRequest)
	if err := r.ParseMultipartForm(formMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, apperr.FileTooLarge("request", maxBytesErr.Limit, maxRequest))
			return
		}
		h.respondError(w, r, apperr.Validation("Failed to parse upload form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in, err := h.validator.Validate(r.MultipartForm)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	logger.Info("投稿请求完成",
		logger.Int64("albumId", result.AlbumID),
		logger.Duration("elapsed", time.Since(start)))

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"message":         "アルバムが正常に登録されました",
		"albumId":         result.AlbumID,
		"reservationCode": result.ReservationCode,
		"imageUrl":        result.ImageURL,
		"audioUrls":       result.AudioURLs,
	})
}

// GetReservationsHandler 按预约码查询；管理密钥返回全部投稿及统计
func (h *APIHandler) GetReservationsHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		h.respondError(w, r, apperr.Validation("Query parameter 'key' is required"))
		return
	}
	email := r.URL.Query().Get("email")

	matches, isAdmin, err := h.svc.Lookup(r.Context(), key, email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if isAdmin {
		h.respondAdminList(w, r, matches)
		return
	}

	h.respondJSON(w, http.StatusOK, matches)
}

// CheckReservationHandler 按邮箱+密码查询本人的投稿
func (h *APIHandler) CheckReservationHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, r, apperr.Validation("Invalid request body"))
		return
	}
	if body.Email == "" || body.Password == "" {
		h.respondError(w, r, apperr.Validation("メールアドレスとパスワードを入力してください"))
		return
	}

	matches, err := h.svc.CheckCredentials(r.Context(), body.Email, body.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, matches)
}

// AdminListHandler 管理端全量查询
func (h *APIHandler) AdminListHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, r, apperr.Validation("Invalid request body"))
		return
	}

	all, err := h.svc.ListAll(r.Context(), body.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondAdminList(w, r, all)
}

func (h *APIHandler) respondAdminList(w http.ResponseWriter, r *http.Request, reservations []*model.Submission) {
	stats, err := h.statsRepo.SubmissionStats(r.Context())
	if err != nil {
		h.respondError(w, r, apperr.Persistence(err))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": reservations,
		"stats":        stats,
	})
}

// DownloadHandler 流式返回指定投稿中一首歌的音频文件
func (h *APIHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, r, apperr.Validation("Invalid reservation id"))
		return
	}

	track := 1
	if raw := r.URL.Query().Get("track"); raw != "" {
		track, err = strconv.Atoi(raw)
		if err != nil || track < 1 {
			h.respondError(w, r, apperr.Validation("Invalid track number"))
			return
		}
	}

	dl, err := h.svc.DownloadAudio(r.Context(), id, track)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, dl.Filename))
	w.Header().Set("Content-Type", dl.ContentType)
	if dl.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}

	if _, err := io.Copy(w, dl.Body); err != nil {
		// 响应头已发出，只能记录
		logger.Error("音频下载中断", logger.Int64("albumId", id), logger.ErrorField(err))
	}
}

// DeleteReservationHandler 删除投稿。mode=hard 时连同对象存储中的文件一并删除，
// 默认仅将状态置为取消
func (h *APIHandler) DeleteReservationHandler(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.respondError(w, r, apperr.Validation("Invalid reservation id"))
		return
	}
	key := r.URL.Query().Get("key")

	switch r.URL.Query().Get("mode") {
	case "hard":
		err = h.svc.HardDelete(r.Context(), key, id)
	case "", "soft":
		err = h.svc.SoftDelete(r.Context(), key, id)
	default:
		h.respondError(w, r, apperr.Validation("Unknown delete mode"))
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "予約が削除されました",
	})
}
