package booking

// Upcoming/past classification is driven purely by status membership, never by
// dates. The two sets below are the policy table; changing classification
// behavior means editing them, not adding date comparisons.
var (
	upcomingStatuses = map[Status]bool{
		StatusPending:   true,
		StatusConfirmed: true,
	}
	pastStatuses = map[Status]bool{
		StatusCancelled: true,
		StatusCompleted: true,
	}
)

// IsUpcoming reports whether the status belongs to the upcoming set.
func (s Status) IsUpcoming() bool { return upcomingStatuses[s] }

// IsPast reports whether the status belongs to the past set.
func (s Status) IsPast() bool { return pastStatuses[s] }

// Classification partitions a guest's bookings for display.
type Classification struct {
	Upcoming []*Booking
	Past     []*Booking
}

// Classify splits bookings into upcoming and past buckets. Every booking lands
// in exactly one bucket; unknown statuses are treated as past so nothing is
// silently dropped.
func Classify(bookings []*Booking) Classification {
	out := Classification{
		Upcoming: make([]*Booking, 0, len(bookings)),
		Past:     make([]*Booking, 0, len(bookings)),
	}
	for _, b := range bookings {
		if b.Status.IsUpcoming() {
			out.Upcoming = append(out.Upcoming, b)
			continue
		}
		out.Past = append(out.Past, b)
	}
	return out
}
