package model

var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidRUC reports whether ruc is an 11-digit taxpayer number with a valid
// modulo-11 check digit and a known prefix (10, 15, 16, 17 or 20).
func ValidRUC(ruc string) bool {
	if len(ruc) != 11 {
		return false
	}
	for i := 0; i < len(ruc); i++ {
		if ruc[i] < '0' || ruc[i] > '9' {
			return false
		}
	}
	switch ruc[:2] {
	case "10", "15", "16", "17", "20":
	default:
		return false
	}

	sum := 0
	for i, w := range rucWeights {
		sum += int(ruc[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		check = 1
	}
	return int(ruc[10]-'0') == check
}

// TaxpayerKind describes a RUC by its prefix.
func TaxpayerKind(ruc string) string {
	if len(ruc) < 2 {
		return ""
	}
	switch ruc[:2] {
	case "10":
		return "PERSONA NATURAL"
	case "20":
		return "PERSONA JURIDICA"
	default:
		return "OTROS"
	}
}
