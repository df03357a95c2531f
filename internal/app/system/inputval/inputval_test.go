package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"campus address", "asha.rao@college.ac.in", true},
		{"roll number local part", "21CS042@students.college.edu", true},
		{"plus tag", "placements+tpo@college.edu", true},
		{"surrounding space", "  hr@acme.com  ", true},
		{"single label dev domain", "admin@localhost", true},

		{"empty", "", false},
		{"blank", "   ", false},
		{"no domain", "asha@", false},
		{"no local part", "@college.edu", false},
		{"two at signs", "asha@@college.edu", false},
		{"leading dot", ".asha@college.edu", false},
		{"doubled dot in domain", "asha@college..edu", false},
		{"display name", "Asha Rao <asha@college.edu>", false},
		{"list of addresses", "asha@college.edu, ravi@college.edu", false},
		{"quoted local part", `"asha rao"@college.edu`, false},
		{"space in domain", "asha@col lege.edu", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
