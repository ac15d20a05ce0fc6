package utils

import "fmt"

// MaxFeeBps is the whole amount expressed in basis points (100%).
const MaxFeeBps int32 = 10000

// SplitAmount divides a gross amount into the owner's share and the
// marketplace fee using integer basis points with floor division.
// ownerUnits + feeUnits == amountUnits holds for every non-negative
// amount and every feeBps in [0, MaxFeeBps].
//
// SplitAmount does not validate feeBps; an out-of-range rate must be
// rejected at deal creation so it can never be captured into a deal.
func SplitAmount(amountUnits int64, feeBps int32) (ownerUnits, feeUnits int64) {
	feeUnits = amountUnits * int64(feeBps) / int64(MaxFeeBps)
	ownerUnits = amountUnits - feeUnits
	return ownerUnits, feeUnits
}

// ValidateFeeBps checks a basis-point rate at deal-creation time.
func ValidateFeeBps(feeBps int32) error {
	if feeBps < 0 || feeBps > MaxFeeBps {
		return fmt.Errorf("fee rate must be between 0 and %d basis points, got %d", MaxFeeBps, feeBps)
	}
	return nil
}
