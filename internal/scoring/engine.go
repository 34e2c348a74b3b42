// Package scoring 计算申请的筛选分数。
//
// 总分由三项组成：学历（0-40）、工作年限（0-40）、技能匹配（0-20），
// 加总后截断到 [0,100]，不低于及格线即通过。相同输入永远得到相同结果。
package scoring

import (
	"errors"
	"fmt"
	"math"

	"talent-radar/internal/model"
)

// ErrInvalidRequirements 职位要求缺失或非法，属于数据校验错误。
var ErrInvalidRequirements = errors.New("invalid job requirements")

// Config 打分参数。零值字段使用默认值。
type Config struct {
	PassThreshold        int      `yaml:"pass_threshold" json:"pass_threshold"`
	EducationCap         int      `yaml:"education_cap" json:"education_cap"`
	ExperienceCap        int      `yaml:"experience_cap" json:"experience_cap"`
	SkillsCap            int      `yaml:"skills_cap" json:"skills_cap"`
	EducationStepPenalty int      `yaml:"education_step_penalty" json:"education_step_penalty"`
	EducationLadder      []string `yaml:"education_ladder" json:"education_ladder"`
	SkillVocabulary      []string `yaml:"skill_vocabulary" json:"skill_vocabulary"`
}

const (
	defaultPassThreshold = 75
	defaultEducationCap  = 40
	defaultExperienceCap = 40
	defaultSkillsCap     = 20
	defaultStepPenalty   = 15
	maxTotal             = 100
)

// Requirements 职位对候选人的要求。
type Requirements struct {
	MinEducation       model.EducationLevel
	MinExperienceYears int
	RequiredSkills     []string
	Description        string
}

// RequirementsFor 从职位提取打分要求。
func RequirementsFor(p model.JobPosting) Requirements {
	return Requirements{
		MinEducation:       p.MinEducationLevel,
		MinExperienceYears: p.MinExperienceYears,
		RequiredSkills:     p.RequiredSkills,
		Description:        p.Description,
	}
}

// Profile 候选人画像。Education 为 nil 表示没有已完成的学历。
type Profile struct {
	Education       *model.EducationLevel
	ExperienceYears float64
	Skills          []string
}

// Result 打分结果。
type Result struct {
	EducationScore  int  `json:"education_score"`
	ExperienceScore int  `json:"experience_score"`
	SkillsScore     int  `json:"skills_score"`
	Total           int  `json:"total"`
	Passed          bool `json:"passed"`
}

// Engine 无状态打分器，可并发使用。
type Engine struct {
	cfg        Config
	ladder     Ladder
	vocabulary []string
}

// NewEngine 校验配置并创建 Engine。
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = defaultPassThreshold
	}
	if cfg.EducationCap <= 0 {
		cfg.EducationCap = defaultEducationCap
	}
	if cfg.ExperienceCap <= 0 {
		cfg.ExperienceCap = defaultExperienceCap
	}
	if cfg.SkillsCap <= 0 {
		cfg.SkillsCap = defaultSkillsCap
	}
	if cfg.EducationStepPenalty <= 0 {
		cfg.EducationStepPenalty = defaultStepPenalty
	}
	if cfg.EducationCap+cfg.ExperienceCap+cfg.SkillsCap > maxTotal {
		return nil, fmt.Errorf("sub-score caps exceed %d", maxTotal)
	}
	if cfg.PassThreshold > maxTotal {
		return nil, fmt.Errorf("pass threshold %d exceeds %d", cfg.PassThreshold, maxTotal)
	}

	ladder, err := NewLadder(cfg.EducationLadder)
	if err != nil {
		return nil, err
	}
	vocab := cfg.SkillVocabulary
	if len(vocab) == 0 {
		vocab = DefaultVocabulary
	}
	return &Engine{cfg: cfg, ladder: ladder, vocabulary: normalizeAll(vocab)}, nil
}

// Ladder 返回引擎使用的学历序。
func (e *Engine) Ladder() Ladder {
	return e.ladder
}

// Validate 检查职位要求是否可用于打分。
func (e *Engine) Validate(req Requirements) error {
	if req.MinEducation == "" {
		return fmt.Errorf("%w: min education level missing", ErrInvalidRequirements)
	}
	if !e.ladder.Known(req.MinEducation) {
		return fmt.Errorf("%w: unknown education level %q", ErrInvalidRequirements, req.MinEducation)
	}
	if req.MinExperienceYears < 0 {
		return fmt.Errorf("%w: negative experience years %d", ErrInvalidRequirements, req.MinExperienceYears)
	}
	return nil
}

// Score 计算三项分数、总分与结论。
func (e *Engine) Score(req Requirements, p Profile) (Result, error) {
	if err := e.Validate(req); err != nil {
		return Result{}, err
	}

	res := Result{
		EducationScore:  e.educationScore(req.MinEducation, p.Education),
		ExperienceScore: e.experienceScore(req.MinExperienceYears, p.ExperienceYears),
		SkillsScore:     e.skillsScore(req, p.Skills),
	}
	res.Total = clamp(res.EducationScore+res.ExperienceScore+res.SkillsScore, 0, maxTotal)
	res.Passed = res.Total >= e.cfg.PassThreshold
	return res, nil
}

func (e *Engine) educationScore(required model.EducationLevel, have *model.EducationLevel) int {
	if have == nil {
		return 0
	}
	got := e.ladder.Rank(*have)
	if got == 0 {
		return 0
	}
	gap := e.ladder.Rank(required) - got
	if gap <= 0 {
		return e.cfg.EducationCap
	}
	return clamp(e.cfg.EducationCap-gap*e.cfg.EducationStepPenalty, 0, e.cfg.EducationCap)
}

func (e *Engine) experienceScore(requiredYears int, years float64) int {
	if requiredYears <= 0 || years >= float64(requiredYears) {
		return e.cfg.ExperienceCap
	}
	if years <= 0 {
		return 0
	}
	pts := int(math.Floor(float64(e.cfg.ExperienceCap) * years / float64(requiredYears)))
	return clamp(pts, 0, e.cfg.ExperienceCap)
}

func (e *Engine) skillsScore(req Requirements, skills []string) int {
	required := normalizeAll(req.RequiredSkills)
	if len(required) == 0 {
		required = extractKeywords(req.Description, e.vocabulary)
	}
	if len(required) == 0 {
		return e.cfg.SkillsCap
	}

	have := normalizeAll(skills)
	matched := 0
	for _, kw := range required {
		if hasSkill(have, kw) {
			matched++
		}
	}
	pts := int(math.Floor(float64(e.cfg.SkillsCap) * float64(matched) / float64(len(required))))
	return clamp(pts, 0, e.cfg.SkillsCap)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
