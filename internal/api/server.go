package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"talent-radar/internal/logger"
	"talent-radar/internal/matching"
	"talent-radar/internal/model"
	"talent-radar/internal/posting"
	"talent-radar/internal/preference"
	"talent-radar/internal/screening"
	"talent-radar/internal/storage"
	"talent-radar/internal/validate"

	"go.uber.org/zap"
)

// PostingService 职位发布。
type PostingService interface {
	Publish(ctx context.Context, req posting.Request) (posting.Result, error)
	Rematch(ctx context.Context, postingID uint) (posting.Result, error)
}

// ScreeningService 申请筛选。
type ScreeningService interface {
	Submit(ctx context.Context, req screening.Request) (*model.JobApplication, error)
}

// PreferenceService 偏好登记。
type PreferenceService interface {
	Create(ctx context.Context, req preference.Request) (model.JobPreference, error)
}

// NotificationStore 查询站内通知并维护已读状态。
type NotificationStore interface {
	ListNotificationsForUser(ctx context.Context, userID uint, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id uint) error
	MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error)
}

// Scheduler 手动触发周期任务。
type Scheduler interface {
	RunOnce(ctx context.Context, name string) (bool, error)
}

// Deps 汇总处理器依赖，为空的服务对应接口返回 503。
type Deps struct {
	Postings      PostingService
	Screening     ScreeningService
	Preferences   PreferenceService
	Notifications NotificationStore
	Scheduler     Scheduler
	Logger        *zap.Logger
}

// NewHandler 构造 HTTP 多路复用器。
func NewHandler(d Deps) http.Handler {
	log := logger.Named(d.Logger, "api")
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/postings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Postings == nil {
			unavailable(w, "postings")
			return
		}
		var req posting.Request
		if !decode(w, r, &req) {
			return
		}
		res, err := d.Postings.Publish(r.Context(), req)
		writePostingResult(w, log, res, err, http.StatusCreated)
	})

	mux.HandleFunc("/api/postings/rematch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Postings == nil {
			unavailable(w, "postings")
			return
		}
		id, ok := queryID(w, r, "id")
		if !ok {
			return
		}
		res, err := d.Postings.Rematch(r.Context(), id)
		writePostingResult(w, log, res, err, http.StatusOK)
	})

	mux.HandleFunc("/api/applications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Screening == nil {
			unavailable(w, "screening")
			return
		}
		var req screening.Request
		if !decode(w, r, &req) {
			return
		}
		app, err := d.Screening.Submit(r.Context(), req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, app)
	})

	mux.HandleFunc("/api/preferences", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Preferences == nil {
			unavailable(w, "preferences")
			return
		}
		var req preference.Request
		if !decode(w, r, &req) {
			return
		}
		pref, err := d.Preferences.Create(r.Context(), req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, pref)
	})

	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Notifications == nil {
			unavailable(w, "notifications")
			return
		}
		userID, ok := queryID(w, r, "user_id")
		if !ok {
			return
		}
		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				if v > 100 {
					v = 100
				}
				limit = v
			}
		}
		items, err := d.Notifications.ListNotificationsForUser(r.Context(), userID, limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.Header().Set("X-Limit", strconv.Itoa(limit))
		writeJSON(w, http.StatusOK, items)
	})

	// id 为空时标记该用户全部通知为已读。
	mux.HandleFunc("/api/notifications/read", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Notifications == nil {
			unavailable(w, "notifications")
			return
		}
		userID, ok := queryID(w, r, "user_id")
		if !ok {
			return
		}
		if r.URL.Query().Get("id") == "" {
			n, err := d.Notifications.MarkAllNotificationsRead(r.Context(), userID)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
			return
		}
		id, ok := queryID(w, r, "id")
		if !ok {
			return
		}
		if err := d.Notifications.MarkNotificationRead(r.Context(), userID, id); err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"updated": 1})
	})

	mux.HandleFunc("/api/tasks/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if d.Scheduler == nil {
			unavailable(w, "scheduler")
			return
		}
		name := r.URL.Query().Get("name")
		ran, err := d.Scheduler.RunOnce(r.Context(), name)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"task": name, "ran": ran})
	})

	return mux
}

// writePostingResult 匹配暂不可用时职位已创建，返回 202 并提示稍后重试。
func writePostingResult(w http.ResponseWriter, log *zap.Logger, res posting.Result, err error, okStatus int) {
	if err != nil {
		if errors.Is(err, matching.ErrUnavailable) && res.Posting != nil {
			w.Header().Set("X-Match-Pending", "true")
			writeJSON(w, http.StatusAccepted, res)
			return
		}
		writeError(w, log, err)
		return
	}
	writeJSON(w, okStatus, res)
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *validate.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": ve.Errors})
	case errors.Is(err, posting.ErrForbidden), errors.Is(err, preference.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, screening.ErrPostingClosed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, matching.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return false
	}
	return true
}

func queryID(w http.ResponseWriter, r *http.Request, key string) (uint, bool) {
	v, err := strconv.ParseUint(r.URL.Query().Get(key), 10, 64)
	if err != nil || v == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + key})
		return 0, false
	}
	return uint(v), true
}

func unavailable(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": what + " disabled"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
