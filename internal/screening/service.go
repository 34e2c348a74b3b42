// Package screening 处理求职申请：读取画像、打分、落库，再通知 HR 或求职者。
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"talent-radar/internal/logger"
	"talent-radar/internal/model"
	"talent-radar/internal/notifier"
	"talent-radar/internal/scoring"
	"talent-radar/internal/validate"

	"go.uber.org/zap"
)

// ErrPostingClosed 职位已下线或已过截止日期，不再接受申请。
var ErrPostingClosed = errors.New("job posting is not accepting applications")

// Store 定义筛选所需的持久化接口。
type Store interface {
	GetPosting(ctx context.Context, id uint) (*model.JobPosting, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	CreateApplication(ctx context.Context, app *model.JobApplication) error
}

// ProfileReader 读取候选人画像。
type ProfileReader interface {
	Read(ctx context.Context, applicantID uint) (scoring.Profile, error)
}

// Dispatcher 通知出口，发送失败不会返回错误。
type Dispatcher interface {
	Dispatch(ctx context.Context, msgs ...notifier.Message) notifier.Report
}

// Request 一次申请提交。
type Request struct {
	ApplicantID  uint `json:"applicant_id" validate:"required"`
	JobPostingID uint `json:"job_posting_id" validate:"required"`
}

// Service 筛选编排。
type Service struct {
	store    Store
	reader   ProfileReader
	engine   *scoring.Engine
	dispatch Dispatcher
	validate *validate.Validator
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store Store, reader ProfileReader, engine *scoring.Engine, dispatch Dispatcher, l *zap.Logger) *Service {
	return &Service{
		store:    store,
		reader:   reader,
		engine:   engine,
		dispatch: dispatch,
		validate: validate.New(),
		log:      logger.Named(l, "screening"),
		now:      time.Now,
	}
}

// Submit 对申请打分并持久化，随后发出一条通知。通知结果不影响返回值。
func (s *Service) Submit(ctx context.Context, req Request) (*model.JobApplication, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	posting, err := s.store.GetPosting(ctx, req.JobPostingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !posting.IsActive {
		return nil, fmt.Errorf("posting %d: %w", posting.ID, ErrPostingClosed)
	}
	// 过期下线由定时任务完成，这里不等它。
	if !posting.DueDate.IsZero() && posting.DueDate.Before(now) {
		return nil, fmt.Errorf("posting %d past due %s: %w", posting.ID, posting.DueDate.Format("2006-01-02"), ErrPostingClosed)
	}
	applicant, err := s.store.GetUser(ctx, req.ApplicantID)
	if err != nil {
		return nil, err
	}

	requirements := scoring.RequirementsFor(*posting)
	if err := s.engine.Validate(requirements); err != nil {
		return nil, invalidPosting(err)
	}
	profile, err := s.reader.Read(ctx, req.ApplicantID)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Score(requirements, profile)
	if err != nil {
		return nil, invalidPosting(err)
	}

	app := &model.JobApplication{
		ApplicantID:     req.ApplicantID,
		JobPostingID:    posting.ID,
		ApplicationDate: now,
		ScreeningScore:  res.Total,
		EducationScore:  res.EducationScore,
		ExperienceScore: res.ExperienceScore,
		SkillsScore:     res.SkillsScore,
		PassedScreening: res.Passed,
		Status:          model.ApplicationScreenedOut,
		ScreenedAt:      now,
	}
	if res.Passed {
		app.Status = model.ApplicationPassed
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info("application screened",
		zap.Uint("application_id", app.ID),
		zap.Uint("posting_id", posting.ID),
		zap.Uint("applicant_id", req.ApplicantID),
		zap.Int("score", res.Total),
		zap.Bool("passed", res.Passed),
	)

	s.dispatch.Dispatch(ctx, verdictMessage(app, posting, applicant))
	return app, nil
}

// verdictMessage 通过时通知职位联系人（缺省为发布者），未通过时通知求职者。
// 通过通知总是记在发布者名下，发到联系邮箱时 HR 的站内通知里也能看到。
func verdictMessage(app *model.JobApplication, posting *model.JobPosting, applicant *model.User) notifier.Message {
	msg := notifier.Message{
		RelatedID: app.ID,
		DedupKey:  fmt.Sprintf("screening:%d", app.ID),
	}
	if app.PassedScreening {
		msg.Kind = model.NotificationScreeningPassed
		id := posting.CreatorID
		msg.RecipientID = &id
		msg.To = strings.TrimSpace(posting.ContactEmail)
		if msg.To == "" {
			msg.To = posting.Creator.Email
		}
		msg.Subject = "Qualified Applicant: " + posting.Title
		msg.Body = fmt.Sprintf("%s (%s) passed the initial screening for %s with a score of %d/100.\n\nEducation: %d\nExperience: %d\nSkills: %d\n",
			displayName(applicant), applicant.Email, posting.Title, app.ScreeningScore,
			app.EducationScore, app.ExperienceScore, app.SkillsScore)
		return msg
	}

	id := applicant.ID
	msg.RecipientID = &id
	msg.Kind = model.NotificationScreeningFailed
	msg.To = applicant.Email
	msg.Subject = "Update on your application for " + posting.Title
	msg.Body = fmt.Sprintf("Hello %s,\n\nThank you for applying to the %s position. Your application did not meet the minimum requirements for this position.\n\nYour screening score: %d/100\n",
		displayName(applicant), posting.Title, app.ScreeningScore)
	return msg
}

// invalidPosting 同时保留字段错误与 scoring.ErrInvalidRequirements。
func invalidPosting(err error) error {
	return fmt.Errorf("%w: %w", validate.Field("job_posting", "requirements are incomplete"), err)
}

func displayName(u *model.User) string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}
