package domain

// RoomIDFor строит канонический id комнаты для пары. Id сортируются, так что
// A→B и B→A попадают в одну переписку.
func RoomIDFor(a, b Party) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + "_" + y
}
