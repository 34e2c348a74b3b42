// Package profile 从存储中读取候选人的学历与工作年限。
package profile

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"talent-radar/internal/model"
	"talent-radar/internal/scoring"
)

const daysPerYear = 365.25

// Store 定义履历读取接口。
type Store interface {
	LatestEducation(ctx context.Context, userID uint, asOf time.Time) (*model.UserEducation, error)
	ListExperience(ctx context.Context, userID uint) ([]model.UserExperience, error)
}

// Reader 组装打分所需的候选人画像。
type Reader struct {
	store Store
	now   func() time.Time
}

// NewReader 创建 Reader，now 为空时使用 time.Now。
func NewReader(store Store, now func() time.Time) *Reader {
	if now == nil {
		now = time.Now
	}
	return &Reader{store: store, now: now}
}

// Read 返回最近完成的学历、累计工作年限与自报技能。没有记录不是错误。
func (r *Reader) Read(ctx context.Context, applicantID uint) (scoring.Profile, error) {
	var p scoring.Profile
	now := r.now()

	edu, err := r.store.LatestEducation(ctx, applicantID, now)
	if err != nil {
		return p, fmt.Errorf("read education: %w", err)
	}
	if edu != nil {
		lvl := edu.Level
		p.Education = &lvl
	}

	exps, err := r.store.ListExperience(ctx, applicantID)
	if err != nil {
		return p, fmt.Errorf("read experience: %w", err)
	}
	p.ExperienceYears = TotalYears(exps, now)
	p.Skills = collectSkills(exps)
	return p, nil
}

// TotalYears 累加每段经历的时长，在职记录计算到 asOf，结果保留一位小数。
func TotalYears(exps []model.UserExperience, asOf time.Time) float64 {
	var total time.Duration
	for _, exp := range exps {
		end := asOf
		if exp.EndDate != nil {
			end = *exp.EndDate
		}
		if d := end.Sub(exp.StartDate); d > 0 {
			total += d
		}
	}
	years := total.Hours() / 24 / daysPerYear
	return math.Round(years*10) / 10
}

func collectSkills(exps []model.UserExperience) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, exp := range exps {
		for _, s := range exp.Skills {
			trimmed := strings.TrimSpace(s)
			key := strings.ToLower(trimmed)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, trimmed)
		}
	}
	return out
}
