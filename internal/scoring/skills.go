package scoring

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultVocabulary 职位未显式列出技能时，从描述中识别的关键词。
var DefaultVocabulary = []string{
	"go", "golang", "python", "java", "javascript", "typescript", "c++", "c#", ".net",
	"rust", "ruby", "php", "kotlin", "swift", "scala",
	"sql", "postgresql", "mysql", "mongodb", "redis", "kafka", "rabbitmq",
	"react", "vue", "angular", "node.js", "django", "spring",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure", "linux", "git",
	"grpc", "graphql", "rest",
	"machine learning", "data analysis", "excel", "figma", "project management",
}

// tokens 小写并按非单词字符切分，保留 + # . 以识别 c++、c#、node.js。
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.Join(tokens(s), " ")
}

// normalizeAll 归一化并按首次出现去重。
func normalizeAll(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		n := normalize(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// containsPhrase 按整词判断 a 是否包含 b。
func containsPhrase(a, b string) bool {
	return strings.Contains(" "+a+" ", " "+b+" ")
}

// hasSkill 要求某项自报技能完整覆盖关键词，只命中其中一个词不算。
func hasSkill(have []string, keyword string) bool {
	for _, s := range have {
		if containsPhrase(s, keyword) {
			return true
		}
	}
	return false
}

// extractKeywords 返回描述中出现的词表关键词，顺序与词表一致。
func extractKeywords(description string, vocabulary []string) []string {
	text := normalize(stripHTML(description))
	if text == "" {
		return nil
	}
	var out []string
	for _, term := range vocabulary {
		if containsPhrase(text, term) {
			out = append(out, term)
		}
	}
	return out
}

// stripHTML 提取 HTML 中的可见文本，跳过 script/style。
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			return s
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
