package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/hitoshi/injexpro/internal/model"
)

// FilterComplications は名前または症状のいずれかに検索語を含む合併症を返す。
// 比較はUnicodeのケースフォールディングで行う。空の検索語は全件を返す。
// 入力スライスは変更しない。
func FilterComplications(complications []model.Complication, term string) []model.Complication {
	term = strings.TrimSpace(term)
	if term == "" {
		return complications
	}

	// cases.Caserはgoroutine間で共有できないため、呼び出しごとに生成する
	fold := cases.Fold()
	needle := fold.String(term)

	matched := []model.Complication{}
	for _, c := range complications {
		if strings.Contains(fold.String(c.Name), needle) {
			matched = append(matched, c)
			continue
		}
		for _, s := range c.SignsSymptoms {
			if strings.Contains(fold.String(s), needle) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}
