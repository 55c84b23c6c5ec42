package observatory

var gradeScale = map[string]int{
	"A+": 12,
	"A":  11,
	"A-": 10,
	"B+": 9,
	"B":  8,
	"B-": 7,
	"C+": 6,
	"C":  5,
	"C-": 4,
	"D+": 3,
	"D":  2,
	"D-": 1,
	"F":  0,
}

// GradeToDec maps a letter grade to 0..12 so it can be charted.
// Unknown grades, including differently cased or padded ones, map to 0.
func GradeToDec(grade string) int {
	return gradeScale[grade]
}

// DecToGrade is the inverse of GradeToDec; it returns "" outside 0..12.
func DecToGrade(n int) string {
	for g, v := range gradeScale {
		if v == n {
			return g
		}
	}
	return ""
}
