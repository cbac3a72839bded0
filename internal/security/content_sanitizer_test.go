package security

import (
	"strings"
	"testing"

	"github.com/hitoshi/injexpro/internal/model"
)

// TestSanitizeText_StripsMarkup はタグが除去されテキストのみが残ることを検証する。
func TestSanitizeText_StripsMarkup(t *testing.T) {
	sanitizer := NewReferenceSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "Avoid over-treatment to prevent brow ptosis",
			want:  "Avoid over-treatment to prevent brow ptosis",
		},
		{
			name:  "アポストロフィはエスケープしない",
			input: "Crow's feet",
			want:  "Crow's feet",
		},
		{
			name:  "強調タグは除去される",
			input: "<strong>STOP</strong> injection immediately",
			want:  "STOP injection immediately",
		},
		{
			name:  "前後の空白は除去される",
			input: "  <p>Single injection point</p>  ",
			want:  "Single injection point",
		},
		{
			name:  "空文字列は空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeText_RemovesScripts はscriptタグとイベント属性が残らないことを検証する。
func TestSanitizeText_RemovesScripts(t *testing.T) {
	sanitizer := NewReferenceSanitizer()

	inputs := []string{
		`<script>alert('xss')</script>Lip volume`,
		`<img src=x onerror="alert(1)">Lip volume`,
		`<a href="javascript:alert(1)">Lip volume</a>`,
		`<iframe src="https://evil.example"></iframe>Lip volume`,
	}

	for _, input := range inputs {
		got := sanitizer.SanitizeText(input)
		for _, forbidden := range []string{"<script", "alert", "onerror", "javascript:", "<iframe", "<a"} {
			if strings.Contains(got, forbidden) {
				t.Errorf("SanitizeText(%q) = %q, should not contain %q", input, got, forbidden)
			}
		}
		if !strings.Contains(got, "Lip volume") {
			t.Errorf("SanitizeText(%q) = %q, should keep text content", input, got)
		}
	}
}

// TestSanitizeText_Idempotent は同一入力に対して同一出力となることを検証する。
func TestSanitizeText_Idempotent(t *testing.T) {
	sanitizer := NewReferenceSanitizer()
	input := "<em>Inject</em> lateral to orbital rim"

	first := sanitizer.SanitizeText(input)
	second := sanitizer.SanitizeText(first)
	if first != second {
		t.Errorf("not idempotent: %q != %q", first, second)
	}
}

// TestSanitizeProcedure_CleansDescriptionAndNotes は説明文と用量メモのみが処理され、
// 元の値が変更されないことを検証する。
func TestSanitizeProcedure_CleansDescriptionAndNotes(t *testing.T) {
	sanitizer := NewReferenceSanitizer()

	original := model.Procedure{
		Name:        "Forehead Lines Treatment",
		Description: "<b>Treatment</b> of horizontal forehead lines",
		InjectionPatterns: []model.InjectionPattern{
			{
				PatternName:   "Standard Forehead Pattern",
				TargetMuscles: []string{"frontalis"},
				Dosages: []model.Dosage{
					{SiteName: "Central forehead", Notes: "<script>x()</script>Avoid over-treatment"},
				},
			},
		},
	}

	got := sanitizer.SanitizeProcedure(original)

	if got.Description != "Treatment of horizontal forehead lines" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.InjectionPatterns[0].Dosages[0].Notes != "Avoid over-treatment" {
		t.Errorf("Notes = %q", got.InjectionPatterns[0].Dosages[0].Notes)
	}
	// 元の構造体は変更されない
	if original.InjectionPatterns[0].Dosages[0].Notes != "<script>x()</script>Avoid over-treatment" {
		t.Errorf("original notes mutated: %q", original.InjectionPatterns[0].Dosages[0].Notes)
	}
	if got.InjectionPatterns[0].TargetMuscles[0] != "frontalis" {
		t.Errorf("TargetMuscles = %v", got.InjectionPatterns[0].TargetMuscles)
	}
}
