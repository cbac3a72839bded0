// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ReferenceSanitizer はデータストアから読み出した参照データの自由記述テキストから
// マークアップを取り除き、プレーンテキストとしてAPIに渡す。
// bluemondayのStrictPolicyを使用し、全てのタグと属性を除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/injexpro/internal/model"
)

// TextSanitizer は自由記述テキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// SanitizeText は全てのHTMLタグを除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// ReferenceSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフなため、1インスタンスを共有して使用する。
type ReferenceSanitizer struct {
	policy *bluemonday.Policy
}

// NewReferenceSanitizer はReferenceSanitizerを生成する。
func NewReferenceSanitizer() *ReferenceSanitizer {
	return &ReferenceSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はタグを除去し、bluemondayがエスケープした文字実体を戻して返す。
// JSONで返すため、アポストロフィ等はエスケープしない。
func (s *ReferenceSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// SanitizeProcedure は施術の説明文と用量メモをサニタイズしたコピーを返す。
// 元の構造体は変更しない。
func (s *ReferenceSanitizer) SanitizeProcedure(p model.Procedure) model.Procedure {
	p.Description = s.SanitizeText(p.Description)

	if p.InjectionPatterns == nil {
		return p
	}
	patterns := make([]model.InjectionPattern, len(p.InjectionPatterns))
	for i, ip := range p.InjectionPatterns {
		dosages := make([]model.Dosage, len(ip.Dosages))
		for j, d := range ip.Dosages {
			d.Notes = s.SanitizeText(d.Notes)
			dosages[j] = d
		}
		ip.Dosages = dosages
		patterns[i] = ip
	}
	p.InjectionPatterns = patterns
	return p
}

// compile-time interface check
var _ TextSanitizer = (*ReferenceSanitizer)(nil)
