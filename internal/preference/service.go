package preference

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"talent-radar/internal/model"
	"talent-radar/internal/validate"
)

// ErrForbidden 只有求职者账号可以登记偏好。
var ErrForbidden = errors.New("account is not allowed to register preferences")

// Store 定义持久化接口。
type Store interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListCategoriesByID(ctx context.Context, ids []uint) ([]model.JobCategory, error)
	CreatePreference(ctx context.Context, p *model.JobPreference) error
}

// Config 控制可登记的职位类型，留空表示全部允许。
type Config struct {
	AllowedPositionTypes []string `yaml:"allowed_position_types" json:"allowed_position_types"`
}

// Request 表示求职者提交的偏好。
type Request struct {
	ApplicantID  uint    `json:"applicant_id" validate:"required"`
	CategoryIDs  []uint  `json:"category_ids" validate:"required,min=1,dive,required"`
	MinSalary    float64 `json:"min_salary" validate:"gte=0"`
	PositionType string  `json:"position_type" validate:"required"`
}

// Service 负责验证与写入求职偏好。
type Service struct {
	store     Store
	positions map[model.PositionType]struct{}
	validate  *validate.Validator
}

// NewService 创建偏好服务，配置中的未知职位类型返回错误。
func NewService(store Store, cfg Config) (*Service, error) {
	positions := make(map[model.PositionType]struct{})
	for _, raw := range cfg.AllowedPositionTypes {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		pt, err := model.ParsePositionType(raw)
		if err != nil {
			return nil, fmt.Errorf("preference config: %w", err)
		}
		positions[pt] = struct{}{}
	}
	return &Service{store: store, positions: positions, validate: validate.New()}, nil
}

// Create 校验请求并写入数据库。
func (s *Service) Create(ctx context.Context, req Request) (model.JobPreference, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.JobPreference{}, err
	}
	pt, err := model.ParsePositionType(req.PositionType)
	if err != nil {
		return model.JobPreference{}, validate.Field("position_type", err.Error())
	}
	if len(s.positions) > 0 {
		if _, ok := s.positions[pt]; !ok {
			return model.JobPreference{}, validate.Field("position_type", fmt.Sprintf("unsupported position type %s", pt))
		}
	}

	applicant, err := s.store.GetUser(ctx, req.ApplicantID)
	if err != nil {
		return model.JobPreference{}, err
	}
	if applicant.AccountType != model.AccountApplicant {
		return model.JobPreference{}, fmt.Errorf("user %d (%s): %w", applicant.ID, applicant.AccountType, ErrForbidden)
	}

	ids := uniqueIDs(req.CategoryIDs)
	cats, err := s.store.ListCategoriesByID(ctx, ids)
	if err != nil {
		return model.JobPreference{}, err
	}
	if len(cats) != len(ids) {
		return model.JobPreference{}, validate.Field("category_ids", "unknown category")
	}

	pref := model.JobPreference{
		ApplicantID:  applicant.ID,
		Applicant:    *applicant,
		Categories:   cats,
		MinSalary:    req.MinSalary,
		PositionType: pt,
	}
	if err := s.store.CreatePreference(ctx, &pref); err != nil {
		return model.JobPreference{}, err
	}
	return pref, nil
}

func uniqueIDs(in []uint) []uint {
	seen := make(map[uint]struct{}, len(in))
	out := make([]uint, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
