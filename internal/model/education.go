package model

import (
	"fmt"
	"strings"
)

// EducationLevel 学历等级。先后顺序由 scoring.Ladder 决定，这里不比较字符串。
type EducationLevel string

const (
	EducationHighSchool  EducationLevel = "HIGH_SCHOOL"
	EducationCertificate EducationLevel = "CERTIFICATE"
	EducationAssociate   EducationLevel = "ASSOCIATE"
	EducationBachelors   EducationLevel = "BACHELORS"
	EducationMasters     EducationLevel = "MASTERS"
)

var educationAliases = map[string]EducationLevel{
	"HIGH SCHOOL": EducationHighSchool,
	"BACHELOR":    EducationBachelors,
	"MASTER":      EducationMasters,
}

// ParseEducationLevel 接受枚举值或常见写法（如 "Bachelor"、"High School"）。
func ParseEducationLevel(s string) (EducationLevel, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if lvl, ok := educationAliases[key]; ok {
		return lvl, nil
	}
	lvl := EducationLevel(strings.ReplaceAll(key, " ", "_"))
	switch lvl {
	case EducationHighSchool, EducationCertificate, EducationAssociate, EducationBachelors, EducationMasters:
		return lvl, nil
	}
	return "", fmt.Errorf("unknown education level %q", s)
}
