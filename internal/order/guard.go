package order

// Guard derives the execution guard from side and direction. The guard
// gates whether the order may fill at or above the reference price:
// buying exposure (open long, close short) must not fill above it, selling
// exposure (open short, close long) must not fill below it.
//
//	increase && long   -> false
//	increase && !long  -> true
//	!increase && long  -> true
//	!increase && !long -> false
func Guard(isLong, isIncrease bool) bool {
	if isIncrease {
		return !isLong
	}
	return isLong
}
