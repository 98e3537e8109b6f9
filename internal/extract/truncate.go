package extract

// Marker replaces the dropped middle of a truncated text.
const Marker = "\n\n[...]\n\n"

// markerAllowance is reserved out of the budget for the marker.
const markerAllowance = 20

// Truncate bounds text to budget characters, keeping the first 60% of the
// budget and as much of the end as fits after the marker allowance.
func Truncate(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	if budget <= 0 {
		return ""
	}

	head, tail := TruncateParts(budget)
	return string(runes[:head]) + Marker + string(runes[len(runes)-tail:])
}

// TruncateParts reports how many leading and trailing characters Truncate
// keeps for a text longer than budget.
func TruncateParts(budget int) (head, tail int) {
	head = budget * 60 / 100
	tail = budget - head - markerAllowance
	if tail < 0 {
		tail = 0
	}
	return head, tail
}
