package finance

// ProgressStep is the granularity of project progress.
const ProgressStep = 10

// Stage is a named construction phase.
type Stage struct {
	Progress int    `json:"progress"`
	Name     string `json:"name"`
}

// Stages lists every progress value with its phase name, in order.
var Stages = []Stage{
	{0, "Planning"},
	{10, "Site preparation"},
	{20, "Foundation"},
	{30, "Structure"},
	{40, "Masonry"},
	{50, "Roofing"},
	{60, "Installations"},
	{70, "Plastering"},
	{80, "Flooring"},
	{90, "Finishing"},
	{100, "Completed"},
}

// ValidProgress reports whether p is within 0..100 and a multiple of ProgressStep.
func ValidProgress(p int) bool {
	return p >= 0 && p <= CompletedProgress && p%ProgressStep == 0
}

// StageName returns the phase name of a progress value, or "" if it is not a valid stage.
func StageName(p int) string {
	if !ValidProgress(p) {
		return ""
	}
	return Stages[p/ProgressStep].Name
}
