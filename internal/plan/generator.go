// Package plan builds implementation plans for enacted rules: milestone
// deadlines with countdown timers, per-type step lists and checklists,
// effort estimates and risk factors, all scaled by complexity and urgency.
package plan

import (
	"fmt"
	"math"
	"time"
)

// Implementation types.
const (
	TypeQuality  = "quality"
	TypePayment  = "payment"
	TypeStaffing = "staffing"
	TypeSystems  = "systems"
)

// Complexity levels.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Request selects the plan template.
type Request struct {
	ImplementationType string `json:"implementation_type"`
	Complexity         string `json:"complexity"`
	Timeline           string `json:"timeline"`
}

// Step is one implementation step with a duration estimate and an owner.
type Step struct {
	Name         string `json:"step"`
	DurationDays int    `json:"duration_days"`
	Owner        string `json:"owner"`
	Complexity   string `json:"complexity"`
}

// ChecklistItem tracks one unit of implementation work.
type ChecklistItem struct {
	Item      string `json:"item"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}

// GuidanceLink points at a CMS resource relevant to the rule type.
type GuidanceLink struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Countdown is the timer state for one milestone deadline.
type Countdown struct {
	DeadlineDate  string `json:"deadline_date"`
	DaysRemaining int    `json:"days_remaining"`
	Urgency       string `json:"urgency"`
	UrgencyColor  string `json:"urgency_color"`
	DisplayText   string `json:"display_text"`
}

// Risk is a potential implementation risk with its mitigation.
type Risk struct {
	Risk       string `json:"risk"`
	Impact     string `json:"impact"`
	Mitigation string `json:"mitigation"`
}

// Plan is a complete implementation plan for one rule.
type Plan struct {
	ImplementationType string               `json:"implementation_type"`
	Complexity         string               `json:"complexity"`
	Deadlines          map[string]string    `json:"deadlines"`
	CountdownTimers    map[string]Countdown `json:"countdown_timers"`
	Steps              []Step               `json:"implementation_steps"`
	Checklist          []ChecklistItem      `json:"checklist"`
	GuidanceLinks      []GuidanceLink       `json:"guidance_links"`
	KeyStakeholders    []string             `json:"key_stakeholders"`
	CriticalPath       []string             `json:"critical_path"`
	EffortHours        map[string]int       `json:"estimated_effort_hours"`
	RiskFactors        []Risk               `json:"risk_factors"`
}

type template struct {
	typicalDuration int
	stakeholders    []string
	criticalPath    []string
}

var templates = map[string]template{
	TypeQuality: {
		typicalDuration: 90,
		stakeholders:    []string{"Quality Director", "DON", "Administrator", "IT"},
		criticalPath:    []string{"Assessment", "System Setup", "Training", "Testing", "Go-Live"},
	},
	TypePayment: {
		typicalDuration: 60,
		stakeholders:    []string{"Administrator", "Business Office", "Admissions"},
		criticalPath:    []string{"Rate Analysis", "System Updates", "Training", "Testing", "Implementation"},
	},
	TypeStaffing: {
		typicalDuration: 120,
		stakeholders:    []string{"Administrator", "DON", "HR Director", "Schedulers"},
		criticalPath:    []string{"Requirements Review", "Gap Analysis", "Recruitment", "Training", "Monitoring"},
	},
	TypeSystems: {
		typicalDuration: 75,
		stakeholders:    []string{"Administrator", "DON", "IT", "Department Heads"},
		criticalPath:    []string{"Process Review", "System Design", "Documentation", "Training", "Implementation"},
	},
}

var milestoneLabels = map[string]string{
	"staff_training_deadline":   "Staff Training",
	"policies_update_deadline":  "Policies Update",
	"systems_ready_deadline":    "Systems Ready",
	"final_implementation_date": "Final Implementation",
}

// Generator produces plans relative to an injectable clock, so plans are
// deterministic in tests.
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorAt pins the generator to a fixed clock.
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate builds the full implementation plan. Unknown types fall back to
// the payment template and unknown complexities to moderate scaling.
func (g *Generator) Generate(req Request) Plan {
	implType := req.ImplementationType
	tmpl, ok := templates[implType]
	if !ok {
		implType = TypePayment
		tmpl = templates[TypePayment]
	}
	complexity := req.Complexity
	if complexity == "" {
		complexity = ComplexityModerate
	}

	deadlines, timers := g.deadlines(req.Timeline, tmpl.typicalDuration)

	return Plan{
		ImplementationType: implType,
		Complexity:         complexity,
		Deadlines:          deadlines,
		CountdownTimers:    timers,
		Steps:              steps(implType, complexity),
		Checklist:          checklist(implType, complexity),
		GuidanceLinks:      guidanceLinks(implType),
		KeyStakeholders:    tmpl.stakeholders,
		CriticalPath:       tmpl.criticalPath,
		EffortHours:        effortHours(complexity, implType),
		RiskFactors:        riskFactors(implType, complexity),
	}
}

// deadlines places the four milestones at 40/60/80/100% of the urgency
// adjusted duration.
func (g *Generator) deadlines(timeline string, baseDuration int) (map[string]string, map[string]Countdown) {
	now := g.now()

	multiplier := 1.0
	switch timeline {
	case "Soon":
		multiplier = 0.7
	case "Future":
		multiplier = 1.3
	}
	totalDays := int(float64(baseDuration) * multiplier)

	offsets := map[string]int{
		"policies_update_deadline":  int(float64(totalDays) * 0.4),
		"staff_training_deadline":   int(float64(totalDays) * 0.6),
		"systems_ready_deadline":    int(float64(totalDays) * 0.8),
		"final_implementation_date": totalDays,
	}

	deadlines := make(map[string]string, len(offsets))
	timers := make(map[string]Countdown, len(offsets))
	for name, days := range offsets {
		deadline := now.AddDate(0, 0, days)
		deadlines[name] = deadline.Format("2006-01-02")
		timers[name] = g.countdown(name, deadline)
	}
	return deadlines, timers
}

func (g *Generator) countdown(name string, deadline time.Time) Countdown {
	days := int(math.Floor(deadline.Sub(g.now()).Hours() / 24))

	var urgency, color string
	switch {
	case days < 0:
		urgency, color = "overdue", "red"
	case days <= 7:
		urgency, color = "critical", "red"
	case days <= 30:
		urgency, color = "urgent", "orange"
	case days <= 60:
		urgency, color = "moderate", "yellow"
	default:
		urgency, color = "low", "green"
	}

	return Countdown{
		DeadlineDate:  deadline.Format("2006-01-02"),
		DaysRemaining: days,
		Urgency:       urgency,
		UrgencyColor:  color,
		DisplayText:   countdownText(name, days),
	}
}

func countdownText(name string, days int) string {
	label, ok := milestoneLabels[name]
	if !ok {
		label = name
	}

	switch {
	case days < 0:
		return fmt.Sprintf("%s: %d days overdue", label, -days)
	case days == 0:
		return label + ": Due today"
	case days == 1:
		return label + ": Due tomorrow"
	default:
		return fmt.Sprintf("%s: %d days remaining", label, days)
	}
}

var baseSteps = map[string][]Step{
	TypeQuality: {
		{Name: "Review quality measure requirements", DurationDays: 5, Owner: "Quality Director"},
		{Name: "Assess current data collection capabilities", DurationDays: 10, Owner: "Quality Director"},
		{Name: "Design data collection processes", DurationDays: 15, Owner: "Quality Director"},
		{Name: "Update quality assurance protocols", DurationDays: 10, Owner: "Quality Director"},
		{Name: "Develop staff training materials", DurationDays: 12, Owner: "Quality Director"},
		{Name: "Train all relevant staff members", DurationDays: 20, Owner: "DON"},
		{Name: "Implement pilot testing phase", DurationDays: 15, Owner: "Quality Director"},
		{Name: "Establish ongoing monitoring procedures", DurationDays: 8, Owner: "Quality Director"},
	},
	TypePayment: {
		{Name: "Analyze payment rate changes", DurationDays: 3, Owner: "Business Office Manager"},
		{Name: "Calculate financial impact", DurationDays: 5, Owner: "Administrator"},
		{Name: "Update billing system configurations", DurationDays: 10, Owner: "Business Office Manager"},
		{Name: "Modify coding procedures", DurationDays: 7, Owner: "Business Office Manager"},
		{Name: "Train revenue cycle staff", DurationDays: 8, Owner: "Business Office Manager"},
		{Name: "Update financial forecasting models", DurationDays: 5, Owner: "Administrator"},
		{Name: "Test billing processes", DurationDays: 10, Owner: "Business Office Manager"},
		{Name: "Monitor initial implementations", DurationDays: 15, Owner: "Administrator"},
	},
	TypeStaffing: {
		{Name: "Review new staffing requirements", DurationDays: 7, Owner: "DON"},
		{Name: "Conduct gap analysis of current staffing", DurationDays: 10, Owner: "DON"},
		{Name: "Develop recruitment strategy", DurationDays: 15, Owner: "HR Director"},
		{Name: "Update job descriptions and postings", DurationDays: 5, Owner: "HR Director"},
		{Name: "Recruit additional staff if needed", DurationDays: 45, Owner: "HR Director"},
		{Name: "Update scheduling policies and systems", DurationDays: 10, Owner: "DON"},
		{Name: "Train supervisors on new requirements", DurationDays: 8, Owner: "DON"},
		{Name: "Implement monitoring and reporting", DurationDays: 12, Owner: "DON"},
	},
	TypeSystems: {
		{Name: "Evaluate current system capabilities", DurationDays: 8, Owner: "IT Director"},
		{Name: "Design system modifications", DurationDays: 15, Owner: "IT Director"},
		{Name: "Update documentation templates", DurationDays: 12, Owner: "DON"},
		{Name: "Modify workflow procedures", DurationDays: 10, Owner: "Administrator"},
		{Name: "Develop training materials", DurationDays: 8, Owner: "DON"},
		{Name: "Train staff on new procedures", DurationDays: 15, Owner: "Department Heads"},
		{Name: "Conduct pilot testing", DurationDays: 12, Owner: "Administrator"},
		{Name: "Full system rollout", DurationDays: 10, Owner: "Administrator"},
	},
}

func complexityMultiplier(complexity string) float64 {
	switch complexity {
	case ComplexitySimple:
		return 0.7
	case ComplexityComplex:
		return 1.5
	default:
		return 1.0
	}
}

func steps(implType, complexity string) []Step {
	base := baseSteps[implType]
	multiplier := complexityMultiplier(complexity)

	out := make([]Step, 0, len(base)+3)
	for _, s := range base {
		s.DurationDays = int(float64(s.DurationDays) * multiplier)
		s.Complexity = complexity
		out = append(out, s)
	}

	if complexity == ComplexityComplex {
		head := []Step{
			{Name: "Form implementation task force", DurationDays: 3, Owner: "Administrator"},
			{Name: "Conduct comprehensive impact assessment", DurationDays: 7, Owner: "Administrator"},
		}
		out = append(head, out...)
		out = append(out, Step{Name: "Establish continuous improvement process", DurationDays: 5, Owner: "Administrator"})
	}

	return out
}

var baseChecklists = map[string][]ChecklistItem{
	TypeQuality: {
		{Item: "Identify all affected quality measures", Category: "Assessment", Priority: "High"},
		{Item: "Review current data collection processes", Category: "Assessment", Priority: "High"},
		{Item: "Map data sources and collection points", Category: "Planning", Priority: "High"},
		{Item: "Design new collection procedures", Category: "Planning", Priority: "High"},
		{Item: "Create staff training materials", Category: "Training", Priority: "Medium"},
		{Item: "Schedule training sessions", Category: "Training", Priority: "Medium"},
		{Item: "Conduct training sessions", Category: "Implementation", Priority: "High"},
		{Item: "Test data collection processes", Category: "Testing", Priority: "High"},
		{Item: "Validate data accuracy", Category: "Testing", Priority: "High"},
		{Item: "Establish ongoing monitoring", Category: "Monitoring", Priority: "Medium"},
	},
	TypePayment: {
		{Item: "Calculate exact payment impact", Category: "Analysis", Priority: "High"},
		{Item: "Update billing system parameters", Category: "Systems", Priority: "High"},
		{Item: "Modify rate tables", Category: "Systems", Priority: "High"},
		{Item: "Test billing calculations", Category: "Testing", Priority: "High"},
		{Item: "Train billing staff", Category: "Training", Priority: "Medium"},
		{Item: "Update admission processes", Category: "Procedures", Priority: "Medium"},
		{Item: "Communicate changes to census team", Category: "Communication", Priority: "Medium"},
		{Item: "Monitor initial billing", Category: "Monitoring", Priority: "High"},
		{Item: "Validate payment receipts", Category: "Monitoring", Priority: "High"},
	},
	TypeStaffing: {
		{Item: "Calculate required staffing levels", Category: "Assessment", Priority: "High"},
		{Item: "Compare to current staffing", Category: "Assessment", Priority: "High"},
		{Item: "Identify staffing gaps", Category: "Analysis", Priority: "High"},
		{Item: "Develop recruitment plan", Category: "Planning", Priority: "High"},
		{Item: "Post job openings", Category: "Recruitment", Priority: "Medium"},
		{Item: "Interview and hire staff", Category: "Recruitment", Priority: "High"},
		{Item: "Update scheduling templates", Category: "Systems", Priority: "Medium"},
		{Item: "Train new staff", Category: "Training", Priority: "High"},
		{Item: "Monitor staffing compliance", Category: "Monitoring", Priority: "High"},
	},
	TypeSystems: {
		{Item: "Document current processes", Category: "Assessment", Priority: "High"},
		{Item: "Identify process changes needed", Category: "Analysis", Priority: "High"},
		{Item: "Design new workflows", Category: "Planning", Priority: "High"},
		{Item: "Update documentation forms", Category: "Documentation", Priority: "Medium"},
		{Item: "Create procedure manuals", Category: "Documentation", Priority: "Medium"},
		{Item: "Train all affected staff", Category: "Training", Priority: "High"},
		{Item: "Pilot new processes", Category: "Testing", Priority: "High"},
		{Item: "Refine based on feedback", Category: "Testing", Priority: "Medium"},
		{Item: "Full implementation rollout", Category: "Implementation", Priority: "High"},
	},
}

var complexChecklistItems = []ChecklistItem{
	{Item: "Establish project management office", Category: "Governance", Priority: "High"},
	{Item: "Create detailed project timeline", Category: "Planning", Priority: "High"},
	{Item: "Develop change management plan", Category: "Planning", Priority: "Medium"},
	{Item: "Establish stakeholder communication plan", Category: "Communication", Priority: "Medium"},
	{Item: "Create risk mitigation strategies", Category: "Risk Management", Priority: "Medium"},
}

func checklist(implType, complexity string) []ChecklistItem {
	base := baseChecklists[implType]
	out := make([]ChecklistItem, 0, len(base)+len(complexChecklistItems))
	out = append(out, base...)
	if complexity == ComplexityComplex {
		out = append(out, complexChecklistItems...)
	}
	return out
}

var baseGuidanceLinks = []GuidanceLink{
	{
		Title:       "SNF Survey & Certification",
		URL:         "https://www.cms.gov/Medicare/Provider-Enrollment-and-Certification/SurveyCertificationGenInfo",
		Description: "General survey and certification guidance for SNFs",
	},
	{
		Title:       "SNF Prospective Payment System",
		URL:         "https://www.cms.gov/Medicare/Medicare-Fee-for-Service-Payment/SNFPPS",
		Description: "SNF PPS rates, updates, and guidance documents",
	},
}

var typeGuidanceLinks = map[string][]GuidanceLink{
	TypeQuality: {
		{
			Title:       "SNF Quality Reporting Program",
			URL:         "https://www.cms.gov/Medicare/Quality-Initiatives-Patient-Assessment-Instruments/NursingHomeQualityInits",
			Description: "Quality measures, reporting requirements, and resources",
		},
		{
			Title:       "MDS 3.0 Resources",
			URL:         "https://www.cms.gov/Medicare/Quality-Initiatives-Patient-Assessment-Instruments/NursingHomeQualityInits/NHQIMDS30",
			Description: "MDS assessment tools and quality measure calculations",
		},
	},
	TypePayment: {
		{
			Title:       "SNF PPS Downloads",
			URL:         "https://www.cms.gov/Medicare/Medicare-Fee-for-Service-Payment/SNFPPS/Downloads",
			Description: "Rate updates, calculation tools, and payment documentation",
		},
		{
			Title:       "Medicare Learning Network",
			URL:         "https://www.cms.gov/Outreach-and-Education/Medicare-Learning-Network-MLN",
			Description: "Educational materials on Medicare payment policies",
		},
	},
	TypeStaffing: {
		{
			Title:       "SNF Staffing Requirements",
			URL:         "https://www.cms.gov/Medicare/Provider-Enrollment-and-Certification/SurveyCertificationGenInfo/LTC",
			Description: "Long-term care facility staffing standards and requirements",
		},
		{
			Title:       "Nursing Home Staff Requirements",
			URL:         "https://www.cms.gov/Medicare/Provider-Enrollment-and-Certification/SurveyCertificationGenInfo/Downloads/Survey-and-Cert-Letter-16-35.pdf",
			Description: "Specific staffing level requirements and monitoring guidance",
		},
	},
	TypeSystems: {
		{
			Title:       "Survey & Certification Policy Memos",
			URL:         "https://www.cms.gov/Medicare/Provider-Enrollment-and-Certification/SurveyCertificationGenInfo/PolicyandMemorandaStaff",
			Description: "Latest policy guidance and memoranda from CMS",
		},
		{
			Title:       "Long-Term Care Facility Resources",
			URL:         "https://www.cms.gov/Medicare/Provider-Enrollment-and-Certification/SurveyCertificationGenInfo/LTC",
			Description: "Comprehensive resources for long-term care facility compliance",
		},
	},
}

func guidanceLinks(implType string) []GuidanceLink {
	out := make([]GuidanceLink, 0, len(baseGuidanceLinks)+2)
	out = append(out, baseGuidanceLinks...)
	out = append(out, typeGuidanceLinks[implType]...)
	return out
}

var baseEffortHours = map[string]int{
	"Administrator":           20,
	"DON":                     25,
	"Quality Director":        15,
	"Business Office Manager": 10,
	"HR Director":             8,
	"IT Director":             5,
	"Department Heads":        12,
	"Staff Training":          40,
}

func effortHours(complexity, implType string) map[string]int {
	complexityMult := map[string]float64{
		ComplexitySimple:   0.6,
		ComplexityModerate: 1.0,
		ComplexityComplex:  1.8,
	}
	typeMult := map[string]float64{
		TypeQuality:  1.3,
		TypePayment:  0.8,
		TypeStaffing: 1.5,
		TypeSystems:  1.2,
	}

	cm, ok := complexityMult[complexity]
	if !ok {
		cm = 1.0
	}
	tm, ok := typeMult[implType]
	if !ok {
		tm = 1.0
	}

	out := make(map[string]int, len(baseEffortHours))
	for role, hours := range baseEffortHours {
		out[role] = int(float64(hours) * cm * tm)
	}
	return out
}

var typeRisks = map[string][]Risk{
	TypeQuality: {
		{Risk: "Data collection system inadequacy", Impact: "High", Mitigation: "Upgrade systems before implementation"},
		{Risk: "Staff resistance to new procedures", Impact: "Medium", Mitigation: "Comprehensive training and change management"},
		{Risk: "Inaccurate quality measure calculations", Impact: "High", Mitigation: "Thorough testing and validation"},
	},
	TypePayment: {
		{Risk: "Billing system configuration errors", Impact: "High", Mitigation: "Extensive testing with small patient samples"},
		{Risk: "Cash flow disruption", Impact: "Medium", Mitigation: "Financial planning and reserves"},
		{Risk: "Incorrect rate calculations", Impact: "High", Mitigation: "Independent verification of all calculations"},
	},
	TypeStaffing: {
		{Risk: "Inability to recruit qualified staff", Impact: "High", Mitigation: "Early recruitment and competitive compensation"},
		{Risk: "Increased labor costs", Impact: "Medium", Mitigation: "Budget planning and efficiency improvements"},
		{Risk: "Staff burnout from schedule changes", Impact: "Medium", Mitigation: "Gradual implementation and staff support"},
	},
	TypeSystems: {
		{Risk: "Documentation errors during transition", Impact: "Medium", Mitigation: "Parallel processing and quality checks"},
		{Risk: "Workflow disruption", Impact: "Medium", Mitigation: "Phased implementation approach"},
		{Risk: "Compliance gaps during transition", Impact: "High", Mitigation: "Continuous monitoring and immediate corrections"},
	},
}

var complexRisks = []Risk{
	{Risk: "Project scope creep", Impact: "Medium", Mitigation: "Clear project definition and change control"},
	{Risk: "Resource overallocation", Impact: "Medium", Mitigation: "Detailed resource planning and management"},
	{Risk: "Timeline delays", Impact: "High", Mitigation: "Buffer time and milestone tracking"},
}

func riskFactors(implType, complexity string) []Risk {
	out := make([]Risk, 0, 6)
	out = append(out, typeRisks[implType]...)
	if complexity == ComplexityComplex {
		out = append(out, complexRisks...)
	}
	return out
}
