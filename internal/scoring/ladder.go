package scoring

import (
	"fmt"

	"talent-radar/internal/model"
)

// DefaultLadder 学历从低到高。证书类排在高中之后、副学士之前。
var DefaultLadder = []model.EducationLevel{
	model.EducationHighSchool,
	model.EducationCertificate,
	model.EducationAssociate,
	model.EducationBachelors,
	model.EducationMasters,
}

// Ladder 是学历的全序表，rank 从 1 开始。
type Ladder struct {
	ranks map[model.EducationLevel]int
}

// NewLadder 按给定顺序构建，空列表使用 DefaultLadder，重复或未知等级返回错误。
func NewLadder(levels []string) (Ladder, error) {
	if len(levels) == 0 {
		ranks := make(map[model.EducationLevel]int, len(DefaultLadder))
		for i, lvl := range DefaultLadder {
			ranks[lvl] = i + 1
		}
		return Ladder{ranks: ranks}, nil
	}

	ranks := make(map[model.EducationLevel]int, len(levels))
	for i, raw := range levels {
		lvl, err := model.ParseEducationLevel(raw)
		if err != nil {
			return Ladder{}, fmt.Errorf("education ladder: %w", err)
		}
		if _, dup := ranks[lvl]; dup {
			return Ladder{}, fmt.Errorf("education ladder: duplicate level %s", lvl)
		}
		ranks[lvl] = i + 1
	}
	return Ladder{ranks: ranks}, nil
}

// Rank 返回等级序号，未收录返回 0。
func (l Ladder) Rank(lvl model.EducationLevel) int {
	return l.ranks[lvl]
}

// Known 判断等级是否在表中。
func (l Ladder) Known(lvl model.EducationLevel) bool {
	return l.ranks[lvl] > 0
}
