package segment

const (
	BothEmailPhone = "both_email_phone"
	NoWebsite      = "no_website"
	SingleContact  = "single_contact"
)

// Segment is a named group of leads.
type Segment struct {
	Name  string
	Leads []Lead
}

// Stats tallies one segment's coverage.
type Stats struct {
	Name        string
	Leads       int
	WithEmail   int
	WithPhone   int
	WithWebsite int
}

// Partition splits leads into three disjoint segments, in this order of
// precedence: leads with both an email and a phone; then leads without a
// website; then leads with an email or a phone. A lead that fits none of them
// is dropped. Segments are always returned in that order, possibly empty.
func Partition(leads []Lead) []Segment {
	segs := []Segment{{Name: BothEmailPhone}, {Name: NoWebsite}, {Name: SingleContact}}
	for _, l := range leads {
		switch {
		case l.HasEmail() && l.HasPhone():
			segs[0].Leads = append(segs[0].Leads, l)
		case !l.HasWebsite():
			segs[1].Leads = append(segs[1].Leads, l)
		case l.HasEmail() || l.HasPhone():
			segs[2].Leads = append(segs[2].Leads, l)
		}
	}
	return segs
}

func (s Segment) Stats() Stats {
	st := Stats{Name: s.Name, Leads: len(s.Leads)}
	for _, l := range s.Leads {
		if l.HasEmail() {
			st.WithEmail++
		}
		if l.HasPhone() {
			st.WithPhone++
		}
		if l.HasWebsite() {
			st.WithWebsite++
		}
	}
	return st
}

// chunks splits leads into runs of at most size. size <= 0 means one chunk.
func chunks(leads []Lead, size int) [][]Lead {
	if size <= 0 || len(leads) <= size {
		return [][]Lead{leads}
	}
	var out [][]Lead
	for i := 0; i < len(leads); i += size {
		end := min(i+size, len(leads))
		out = append(out, leads[i:end])
	}
	return out
}
