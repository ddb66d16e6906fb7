package constants

// BloodGroups holds the allowed values for the blood_group field.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// IsBloodGroup reports whether v is one of the allowed blood group values.
func IsBloodGroup(v string) bool {
	for _, bg := range BloodGroups {
		if v == bg {
			return true
		}
	}
	return false
}
