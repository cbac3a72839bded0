// Package checklist は施術前ワークフローチェックリストの状態管理を提供する。
package checklist

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/injexpro/internal/model"
)

//go:embed items.yaml
var defaultDefinitionYAML []byte

// RequiredItemIDs は施術前に必ず確認する項目ID。
// 定義ファイルで変更できるのはラベルと説明のみで、この集合は変更できない。
var RequiredItemIDs = []string{
	"consent",
	"anatomy",
	"medical_history",
	"emergency_kit",
	"sterile_technique",
	"product_verification",
}

// Definition はバージョン付きのチェックリスト定義を表す。
// 起動時に1回読み込み、以降は変更しない。
type Definition struct {
	Version int                   `json:"version" yaml:"version"`
	Items   []model.ChecklistItem `json:"items" yaml:"items"`
}

// ItemIDs は定義順の項目ID一覧を返す。
func (d *Definition) ItemIDs() []string {
	ids := make([]string, len(d.Items))
	for i, item := range d.Items {
		ids[i] = item.ID
	}
	return ids
}

// LoadDefinition はチェックリスト定義を読み込む。
// pathが空の場合は同梱の定義を使用する。
func LoadDefinition(path string) (*Definition, error) {
	data := defaultDefinitionYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read checklist definition: %w", err)
		}
		data = b
	}
	return ParseDefinition(data)
}

// ParseDefinition はYAMLからチェックリスト定義を生成し、検証する。
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse checklist definition: %w", err)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) validate() error {
	if d.Version < 1 {
		return fmt.Errorf("checklist definition: version must be positive, got %d", d.Version)
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("checklist definition: no items")
	}

	seen := make(map[string]bool, len(d.Items))
	for i, item := range d.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("checklist definition: item %d has empty id", i)
		}
		if strings.TrimSpace(item.Label) == "" {
			return fmt.Errorf("checklist definition: item %q has empty label", item.ID)
		}
		if seen[item.ID] {
			return fmt.Errorf("checklist definition: duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
	}

	if len(d.Items) != len(RequiredItemIDs) {
		return fmt.Errorf("checklist definition: want %d items, got %d", len(RequiredItemIDs), len(d.Items))
	}
	for _, id := range RequiredItemIDs {
		if !seen[id] {
			return fmt.Errorf("checklist definition: missing required item %q", id)
		}
	}
	return nil
}
