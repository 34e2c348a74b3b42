package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"talent-radar/internal/logger"
	"talent-radar/internal/model"
	"talent-radar/internal/storage"

	"go.uber.org/zap"
)

// ErrUnavailable 偏好查询失败，调用方可稍后重试。
var ErrUnavailable = errors.New("preference matching unavailable")

// Store 偏好查询接口。
type Store interface {
	FindPreferences(ctx context.Context, f storage.PreferenceFilter) ([]model.JobPreference, error)
}

// Match 一位命中的求职者。同一求职者多条偏好命中时只保留 ID 最小的那条。
type Match struct {
	ApplicantID  uint   `json:"applicant_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PreferenceID uint   `json:"preference_id"`
}

// Matches 判断偏好是否命中职位：分类包含、最低薪资不高于职位薪资上限、职位类型一致。
func Matches(pref model.JobPreference, posting model.JobPosting) bool {
	if pref.PositionType != posting.PositionType {
		return false
	}
	if pref.MinSalary > posting.SalaryMax {
		return false
	}
	for _, c := range pref.Categories {
		if c.ID == posting.CategoryID {
			return true
		}
	}
	return false
}

// Matcher 根据职位查找偏好匹配的求职者，只读且可重复调用。
type Matcher struct {
	store Store
	log   *zap.Logger
}

func NewMatcher(store Store, l *zap.Logger) *Matcher {
	return &Matcher{store: store, log: logger.Named(l, "matcher")}
}

// Match 返回匹配职位的求职者，按求职者 ID 升序。
func (m *Matcher) Match(ctx context.Context, posting model.JobPosting) ([]Match, error) {
	if !posting.IsActive {
		return nil, nil
	}
	prefs, err := m.store.FindPreferences(ctx, storage.PreferenceFilter{
		CategoryID:    posting.CategoryID,
		SalaryCeiling: posting.SalaryMax,
		PositionType:  posting.PositionType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	seen := make(map[uint]int, len(prefs))
	var out []Match
	for _, p := range prefs {
		if !Matches(p, posting) {
			continue
		}
		if i, ok := seen[p.ApplicantID]; ok {
			if p.ID < out[i].PreferenceID {
				out[i].PreferenceID = p.ID
			}
			continue
		}
		seen[p.ApplicantID] = len(out)
		out = append(out, Match{
			ApplicantID:  p.ApplicantID,
			Email:        p.Applicant.Email,
			Name:         p.Applicant.Name,
			PreferenceID: p.ID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicantID < out[j].ApplicantID })

	m.log.Debug("posting matched",
		zap.Uint("posting_id", posting.ID),
		zap.Int("preferences", len(prefs)),
		zap.Int("applicants", len(out)),
	)
	return out, nil
}
