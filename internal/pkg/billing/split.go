package billing

// SplitInstallments divides totalAmount (centavos) into count parts that sum
// exactly to the total. The first part absorbs the whole remainder.
// Callers validate count >= 1 and totalAmount > 0.
func SplitInstallments(totalAmount int64, count int) []int64 {
	if count < 1 {
		return nil
	}
	n := int64(count)
	base := totalAmount / n
	remainder := totalAmount - base*n

	parts := make([]int64, count)
	for i := range parts {
		parts[i] = base
	}
	parts[0] += remainder
	return parts
}
