package pipeline

// TOCEntry is one navigation point.
type TOCEntry struct {
	Title string
	Href  string
	Level int // 1 for top-level entries
	Unit  int // source unit, NoUnit for appended pages
}

// BuildTOC derives navigation entries from assembled units. Titles and
// sections with a heading are listed; sections inside notes and comments
// bodies are not, their body title is.
func BuildTOC(units Units, policy TOCPolicy, xlit Transliterator) []TOCEntry {
	if xlit == nil {
		xlit = identity{}
	}
	var out []TOCEntry
	for i := range units {
		u := &units[i]
		if !u.Navigable() || u.Title == "" || u.File == "" {
			continue
		}
		if u.Type == UnitSection && (u.BodyType == BodyNotes || u.BodyType == BodyComments) {
			continue
		}
		t := Target{File: u.File}
		if policy == TOCFragments {
			t.Fragment = u.FileID
		}
		out = append(out, TOCEntry{
			Title: xlit.Transliterate(u.Title),
			Href:  t.Href(),
			Level: max(u.Level, 1),
			Unit:  i,
		})
	}
	return out
}
