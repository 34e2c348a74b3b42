// Package posting 负责职位发布：校验、落库，然后按求职偏好推送匹配通知。
package posting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"talent-radar/internal/logger"
	"talent-radar/internal/matching"
	"talent-radar/internal/model"
	"talent-radar/internal/notifier"
	"talent-radar/internal/scoring"
	"talent-radar/internal/validate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrForbidden 发布者不是 HR 或管理员。
var ErrForbidden = errors.New("account is not allowed to publish postings")

// MatchSubject 职位匹配通知的标题。
const MatchSubject = "New Job Matching Your Preferences"

// Store 定义职位发布所需的持久化接口。
type Store interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListCategoriesByID(ctx context.Context, ids []uint) ([]model.JobCategory, error)
	CreatePosting(ctx context.Context, p *model.JobPosting) error
	GetPosting(ctx context.Context, id uint) (*model.JobPosting, error)
	DeactivatePosting(ctx context.Context, id uint) error
}

// Matcher 查找偏好命中的求职者。
type Matcher interface {
	Match(ctx context.Context, posting model.JobPosting) ([]matching.Match, error)
}

// Dispatcher 通知出口。
type Dispatcher interface {
	Dispatch(ctx context.Context, msgs ...notifier.Message) notifier.Report
}

// Request 发布职位的输入。
type Request struct {
	CreatorID          uint      `json:"creator_id" validate:"required"`
	Title              string    `json:"title" validate:"required,max=200"`
	CategoryID         uint      `json:"category_id" validate:"required"`
	PositionType       string    `json:"position_type" validate:"required"`
	Location           string    `json:"location" validate:"max=100"`
	ContactEmail       string    `json:"contact_email" validate:"omitempty,email"`
	MinEducationLevel  string    `json:"min_education_level" validate:"required"`
	MinExperienceYears int       `json:"min_experience_years" validate:"gte=0"`
	Description        string    `json:"description"`
	RequiredSkills     []string  `json:"required_skills"`
	SalaryMin          float64   `json:"salary_min" validate:"gte=0"`
	SalaryMax          float64   `json:"salary_max" validate:"gtefield=SalaryMin"`
	DueDate            time.Time `json:"due_date" validate:"required"`
}

// Result 发布结果。
type Result struct {
	Posting *model.JobPosting `json:"posting"`
	Matched int               `json:"matched"`
	Report  notifier.Report   `json:"notifications"`
}

// Service 职位发布服务。
type Service struct {
	store    Store
	matcher  Matcher
	dispatch Dispatcher
	ladder   scoring.Ladder
	validate *validate.Validator
	log      *zap.Logger
}

// NewService 创建服务，ladder 用于校验最低学历取值。
func NewService(store Store, matcher Matcher, dispatch Dispatcher, ladder scoring.Ladder, l *zap.Logger) *Service {
	return &Service{
		store:    store,
		matcher:  matcher,
		dispatch: dispatch,
		ladder:   ladder,
		validate: validate.New(),
		log:      logger.Named(l, "posting"),
	}
}

// Publish 创建职位并推送匹配通知。
// 匹配查询失败时职位仍然保留，返回的错误包裹 matching.ErrUnavailable，可通过 Rematch 重试。
func (s *Service) Publish(ctx context.Context, req Request) (Result, error) {
	p, err := s.build(req)
	if err != nil {
		return Result{}, err
	}

	creator, err := s.store.GetUser(ctx, req.CreatorID)
	if err != nil {
		return Result{}, err
	}
	if !creator.AccountType.CanPublish() {
		return Result{}, fmt.Errorf("user %d (%s): %w", creator.ID, creator.AccountType, ErrForbidden)
	}
	cats, err := s.store.ListCategoriesByID(ctx, []uint{req.CategoryID})
	if err != nil {
		return Result{}, err
	}
	if len(cats) == 0 {
		return Result{}, validate.Field("category_id", "unknown category")
	}

	if err := s.store.CreatePosting(ctx, p); err != nil {
		return Result{}, err
	}
	p.Creator = *creator
	p.Category = cats[0]
	s.log.Info("posting published", zap.Uint("posting_id", p.ID), zap.String("title", p.Title))

	res, err := s.fanOut(ctx, p)
	res.Posting = p
	return res, err
}

// Rematch 重新为职位执行匹配与推送，已发送过的通知由去重键跳过。
func (s *Service) Rematch(ctx context.Context, postingID uint) (Result, error) {
	p, err := s.store.GetPosting(ctx, postingID)
	if err != nil {
		return Result{}, err
	}
	res, err := s.fanOut(ctx, p)
	res.Posting = p
	return res, err
}

// Deactivate 软下线职位。
func (s *Service) Deactivate(ctx context.Context, postingID uint) error {
	if err := s.store.DeactivatePosting(ctx, postingID); err != nil {
		return err
	}
	s.log.Info("posting deactivated", zap.Uint("posting_id", postingID))
	return nil
}

func (s *Service) fanOut(ctx context.Context, p *model.JobPosting) (Result, error) {
	matches, err := s.matcher.Match(ctx, *p)
	if err != nil {
		s.log.Warn("match posting failed", zap.Uint("posting_id", p.ID), zap.Error(err))
		return Result{}, fmt.Errorf("match posting %d: %w", p.ID, err)
	}
	if len(matches) == 0 {
		return Result{}, nil
	}

	eventID := uuid.NewString()
	msgs := make([]notifier.Message, 0, len(matches))
	for _, m := range matches {
		id := m.ApplicantID
		msgs = append(msgs, notifier.Message{
			RecipientID: &id,
			To:          m.Email,
			Kind:        model.NotificationJobMatch,
			Subject:     MatchSubject,
			Body:        matchBody(p, m),
			RelatedID:   p.ID,
			EventID:     eventID,
			DedupKey:    fmt.Sprintf("job_match:%d:%d", p.ID, m.ApplicantID),
		})
	}
	rep := s.dispatch.Dispatch(ctx, msgs...)
	s.log.Info("posting fan-out",
		zap.Uint("posting_id", p.ID),
		zap.String("event_id", eventID),
		zap.Int("matched", len(matches)),
		zap.Int("sent", rep.Sent),
		zap.Int("failed", rep.Failed),
		zap.Int("skipped", rep.Skipped),
	)
	return Result{Matched: len(matches), Report: rep}, nil
}

func (s *Service) build(req Request) (*model.JobPosting, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	pt, err := model.ParsePositionType(req.PositionType)
	if err != nil {
		return nil, validate.Field("position_type", err.Error())
	}
	edu, err := model.ParseEducationLevel(req.MinEducationLevel)
	if err != nil {
		return nil, validate.Field("min_education_level", err.Error())
	}
	if !s.ladder.Known(edu) {
		return nil, validate.Field("min_education_level", fmt.Sprintf("level %s is not configured", edu))
	}

	skills := make([]string, 0, len(req.RequiredSkills))
	for _, sk := range req.RequiredSkills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	return &model.JobPosting{
		CreatorID:          req.CreatorID,
		Title:              strings.TrimSpace(req.Title),
		CategoryID:         req.CategoryID,
		PositionType:       pt,
		Location:           strings.TrimSpace(req.Location),
		ContactEmail:       strings.TrimSpace(req.ContactEmail),
		MinEducationLevel:  edu,
		MinExperienceYears: req.MinExperienceYears,
		Description:        req.Description,
		RequiredSkills:     skills,
		SalaryMin:          req.SalaryMin,
		SalaryMax:          req.SalaryMax,
		DueDate:            req.DueDate,
		IsActive:           true,
	}, nil
}

func matchBody(p *model.JobPosting, m matching.Match) string {
	name := m.Name
	if name == "" {
		name = m.Email
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "A new job matching your preferences has been posted: %s\n", p.Title)
	if p.Category.Name != "" {
		fmt.Fprintf(&b, "Category: %s\n", p.Category.Name)
	}
	fmt.Fprintf(&b, "Position type: %s\n", p.PositionType)
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}
	fmt.Fprintf(&b, "Salary: %.0f - %.0f\n", p.SalaryMin, p.SalaryMax)
	if !p.DueDate.IsZero() {
		fmt.Fprintf(&b, "Apply before: %s\n", p.DueDate.Format("2006-01-02"))
	}
	return b.String()
}
