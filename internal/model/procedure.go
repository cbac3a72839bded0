package model

// ProcedureType は施術の種別を表す。
type ProcedureType string

const (
	// ProcedureTypeNeurotoxin はボツリヌストキシン製剤による施術。
	ProcedureTypeNeurotoxin ProcedureType = "Neurotoxin"
	// ProcedureTypeDermalFiller はヒアルロン酸等の皮膚充填剤による施術。
	ProcedureTypeDermalFiller ProcedureType = "Dermal Filler"
)

// Valid は既知の施術種別かどうかを判定する。
func (t ProcedureType) Valid() bool {
	return t == ProcedureTypeNeurotoxin || t == ProcedureTypeDermalFiller
}

// Procedure は施術ライブラリの1項目を表す。
type Procedure struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Area              string             `json:"area"`
	Type              ProcedureType      `json:"type"`
	Description       string             `json:"description"`
	Slug              string             `json:"slug"`
	InjectionPatterns []InjectionPattern `json:"injection_patterns,omitempty"`
}

// InjectionPattern は施術ごとの注入パターンを表す。
type InjectionPattern struct {
	ID            string   `json:"id"`
	PatternName   string   `json:"pattern_name"`
	TargetMuscles []string `json:"target_muscles"`
	Dosages       []Dosage `json:"dosages"`
}

// Dosage は注入部位ごとの用量・深度を表す。
type Dosage struct {
	SiteName    string `json:"site_name"`
	DosageRange string `json:"dosage_range"`
	Depth       string `json:"depth"`
	Notes       string `json:"notes,omitempty"`
}

// Complication は合併症とその対応プロトコルを表す。
type Complication struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	SignsSymptoms      []string           `json:"signs_symptoms"`
	ManagementProtocol ManagementProtocol `json:"management_protocol"`
}

// ManagementProtocol はフェーズ別の対応手順を表す。
// 合併症ごとに存在するフェーズは異なる。
type ManagementProtocol struct {
	ImmediateSteps     []string `json:"immediate_steps,omitempty"`
	TreatmentOptions   []string `json:"treatment_options,omitempty"`
	EmergencyTreatment []string `json:"emergency_treatment,omitempty"`
	Monitoring         []string `json:"monitoring,omitempty"`
	FollowUp           []string `json:"follow_up,omitempty"`
	Prevention         []string `json:"prevention,omitempty"`
}

// Resource は開業支援資料を表す。
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	DownloadURL string `json:"download_url"`
}
