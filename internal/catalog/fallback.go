package catalog

import "github.com/hitoshi/injexpro/internal/model"

// fallbackProcedures はデータストアが利用できない場合に返す施術データ。名前順に並べる。
var fallbackProcedures = []model.Procedure{
	{
		ID:          "3",
		Name:        "Crow's Feet Treatment",
		Area:        "Periorbital",
		Type:        model.ProcedureTypeNeurotoxin,
		Description: "Treatment of lateral canthal lines targeting the orbicularis oculi muscle.",
		Slug:        "crows-feet",
		InjectionPatterns: []model.InjectionPattern{
			{
				ID:            "3",
				PatternName:   "Standard Crow's Feet Pattern",
				TargetMuscles: []string{"orbicularis oculi"},
				Dosages: []model.Dosage{
					{SiteName: "Lateral canthal area", DosageRange: "6-12 units per side", Depth: "Intradermal/Superficial", Notes: "Inject lateral to orbital rim to avoid diplopia"},
				},
			},
		},
	},
	{
		ID:          "1",
		Name:        "Forehead Lines Treatment",
		Area:        "Forehead",
		Type:        model.ProcedureTypeNeurotoxin,
		Description: "Treatment of horizontal forehead lines using botulinum toxin injections targeting the frontalis muscle.",
		Slug:        "forehead-lines",
		InjectionPatterns: []model.InjectionPattern{
			{
				ID:            "1",
				PatternName:   "Standard Forehead Pattern",
				TargetMuscles: []string{"frontalis"},
				Dosages: []model.Dosage{
					{SiteName: "Central forehead", DosageRange: "4-6 units", Depth: "Intramuscular", Notes: "Avoid over-treatment to prevent brow ptosis"},
					{SiteName: "Lateral forehead", DosageRange: "2-4 units per side", Depth: "Intramuscular", Notes: "Maintain natural brow arch"},
				},
			},
		},
	},
	{
		ID:          "2",
		Name:        "Glabellar Lines Treatment",
		Area:        "Glabella",
		Type:        model.ProcedureTypeNeurotoxin,
		Description: "Treatment of vertical frown lines between the eyebrows targeting the corrugator and procerus muscles.",
		Slug:        "glabellar-lines",
		InjectionPatterns: []model.InjectionPattern{
			{
				ID:            "2",
				PatternName:   "Standard Glabellar Pattern",
				TargetMuscles: []string{"corrugator supercilii", "procerus", "depressor supercilii"},
				Dosages: []model.Dosage{
					{SiteName: "Procerus", DosageRange: "4-6 units", Depth: "Intramuscular", Notes: "Single injection point"},
					{SiteName: "Corrugator (medial)", DosageRange: "4-6 units per side", Depth: "Intramuscular", Notes: "Avoid medial injection to prevent ptosis"},
				},
			},
		},
	},
	{
		ID:          "5",
		Name:        "Lip Enhancement",
		Area:        "Lips",
		Type:        model.ProcedureTypeDermalFiller,
		Description: "Lip volume enhancement and contouring using hyaluronic acid fillers.",
		Slug:        "lip-enhancement",
		InjectionPatterns: []model.InjectionPattern{
			{
				ID:            "5",
				PatternName:   "Comprehensive Lip Enhancement",
				TargetMuscles: []string{"N/A - Soft tissue enhancement"},
				Dosages: []model.Dosage{
					{SiteName: "Upper lip body", DosageRange: "0.3-0.5ml", Depth: "Superficial to mid-dermal", Notes: "Enhance volume while maintaining natural shape"},
					{SiteName: "Lower lip body", DosageRange: "0.2-0.4ml", Depth: "Superficial to mid-dermal", Notes: "Balance with upper lip enhancement"},
				},
			},
		},
	},
	{
		ID:          "4",
		Name:        "Nasolabial Fold Enhancement",
		Area:        "Mid-face",
		Type:        model.ProcedureTypeDermalFiller,
		Description: "Enhancement of nasolabial folds using hyaluronic acid dermal fillers.",
		Slug:        "nasolabial-folds",
		InjectionPatterns: []model.InjectionPattern{
			{
				ID:            "4",
				PatternName:   "Linear Threading Technique",
				TargetMuscles: []string{"N/A - Soft tissue enhancement"},
				Dosages: []model.Dosage{
					{SiteName: "Deep nasolabial fold", DosageRange: "0.5-1.0ml per side", Depth: "Deep dermal/Subcutaneous", Notes: "Use linear threading or serial puncture technique"},
				},
			},
		},
	},
}

// fallbackComplications はデータストアが利用できない場合に返す合併症データ。名前順に並べる。
var fallbackComplications = []model.Complication{
	{
		ID:   "1",
		Name: "Eyelid Ptosis",
		SignsSymptoms: []string{
			"Drooping of upper eyelid",
			"Asymmetrical eye appearance",
			"Difficulty opening affected eye",
			"Patient reports heavy feeling in eyelid",
		},
		ManagementProtocol: model.ManagementProtocol{
			ImmediateSteps: []string{
				"Reassure patient that condition is temporary",
				"Document onset time and severity",
				"Take photographs for medical record",
			},
			TreatmentOptions: []string{
				"Prescribe apraclonidine 0.5% eye drops (off-label use)",
				"Instruct patient to apply drops 2-3 times daily",
				"Consider iopidine 0.5% as alternative",
			},
			FollowUp: []string{
				"Schedule follow-up in 1-2 weeks",
				"Monitor progression and recovery",
				"Expected resolution in 2-8 weeks",
			},
			Prevention: []string{
				"Avoid injection too close to orbital rim",
				"Use appropriate injection depth",
				"Consider lower dosages in high-risk patients",
			},
		},
	},
	{
		ID:   "2",
		Name: "Vascular Occlusion",
		SignsSymptoms: []string{
			"Immediate blanching of skin",
			"Severe pain at injection site",
			"Skin color changes (white, then blue/purple)",
			"Cool skin temperature",
			"Delayed capillary refill",
		},
		ManagementProtocol: model.ManagementProtocol{
			ImmediateSteps: []string{
				"STOP injection immediately",
				"Apply warm compress to area",
				"Massage injection site vigorously",
				"Administer hyaluronidase if HA filler used",
			},
			EmergencyTreatment: []string{
				"Inject hyaluronidase 150-300 units around affected area",
				"Apply nitroglycerin paste 2% if available",
				"Consider aspirin 325mg if no contraindications",
				"Refer to emergency department if severe",
			},
			Monitoring: []string{
				"Assess for signs of tissue necrosis",
				"Document with serial photography",
				"Monitor for 24-48 hours minimum",
			},
			FollowUp: []string{
				"Daily assessment until resolved",
				"Consider hyperbaric oxygen therapy for severe cases",
				"Plastic surgery consultation if tissue loss occurs",
			},
		},
	},
}

// practiceResources は開業支援資料の一覧。データストアは持たず常にこの値を返す。
var practiceResources = []model.Resource{
	{ID: "business-plan-template", Title: "Aesthetic Practice Business Plan Template", Description: "Comprehensive business plan template specifically designed for aesthetic injection practices", Category: "Business Planning", DownloadURL: "#"},
	{ID: "pricing-guide", Title: "Injection Pricing Strategy Guide", Description: "Market analysis and pricing strategies for neurotoxin and dermal filler services", Category: "Pricing", DownloadURL: "#"},
	{ID: "marketing-toolkit", Title: "Social Media Marketing Toolkit", Description: "Templates, content ideas, and compliance guidelines for aesthetic practice marketing", Category: "Marketing", DownloadURL: "#"},
	{ID: "consent-forms", Title: "Legal Consent Form Templates", Description: "Legally compliant consent forms for various injection procedures", Category: "Legal", DownloadURL: "#"},
	{ID: "insurance-guide", Title: "Professional Insurance Guide", Description: "Guide to professional liability insurance for aesthetic injectors", Category: "Insurance", DownloadURL: "#"},
	{ID: "startup-checklist", Title: "Practice Startup Checklist", Description: "Step-by-step checklist for launching your aesthetic injection practice", Category: "Getting Started", DownloadURL: "#"},
}

// FallbackProcedures はフォールバックの施術一覧を返す。一覧表示用に注入パターンは除く。
func FallbackProcedures() []model.Procedure {
	out := make([]model.Procedure, len(fallbackProcedures))
	for i, p := range fallbackProcedures {
		p.InjectionPatterns = nil
		out[i] = p
	}
	return out
}

// FallbackProcedure はslugに一致するフォールバックの施術を注入パターン付きで返す。
func FallbackProcedure(slug string) (*model.Procedure, bool) {
	for _, p := range fallbackProcedures {
		if p.Slug == slug {
			cp := p
			cp.InjectionPatterns = clonePatterns(p.InjectionPatterns)
			return &cp, true
		}
	}
	return nil, false
}

// FallbackComplications はフォールバックの合併症一覧のコピーを返す。
func FallbackComplications() []model.Complication {
	out := make([]model.Complication, len(fallbackComplications))
	copy(out, fallbackComplications)
	return out
}

// Resources は開業支援資料の一覧のコピーを返す。
func Resources() []model.Resource {
	out := make([]model.Resource, len(practiceResources))
	copy(out, practiceResources)
	return out
}

func clonePatterns(src []model.InjectionPattern) []model.InjectionPattern {
	out := make([]model.InjectionPattern, len(src))
	for i, ip := range src {
		ip.TargetMuscles = append([]string(nil), ip.TargetMuscles...)
		ip.Dosages = append([]model.Dosage(nil), ip.Dosages...)
		out[i] = ip
	}
	return out
}
