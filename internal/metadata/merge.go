package metadata

// Merge combines records into one, honouring each record's touched fields.
// Records are taken in order of precedence: for each field the first record
// that touched it wins. Tags are unioned and identifiers are merged without
// overwriting a value an earlier record supplied.
func Merge(records ...*Record) *Record {
	var merged *Record

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if merged == nil {
			merged = NewRecord(rec.Source)
		}

		if rec.Touched.Has(FieldTitle) && !merged.Touched.Has(FieldTitle) {
			merged.Title = rec.Title
			merged.Touched.Add(FieldTitle)
		}

		if rec.Touched.Has(FieldAuthors) && !merged.Touched.Has(FieldAuthors) && len(rec.Authors) > 0 {
			merged.Authors = append([]string(nil), rec.Authors...)
			merged.Touched.Add(FieldAuthors)
		}

		if rec.Touched.Has(FieldPublisher) && !merged.Touched.Has(FieldPublisher) {
			merged.Publisher = rec.Publisher
			merged.Touched.Add(FieldPublisher)
		}

		if rec.Touched.Has(FieldPubDate) && !merged.Touched.Has(FieldPubDate) && rec.PubDate != nil {
			d := *rec.PubDate
			merged.PubDate = &d
			merged.Touched.Add(FieldPubDate)
		}

		if rec.Touched.Has(FieldLanguage) && !merged.Touched.Has(FieldLanguage) {
			merged.Language = rec.Language
			merged.Touched.Add(FieldLanguage)
		}

		if rec.Touched.Has(FieldRating) && !merged.Touched.Has(FieldRating) {
			merged.Rating = rec.Rating
			merged.Touched.Add(FieldRating)
		}

		if rec.Touched.Has(FieldComments) && !merged.Touched.Has(FieldComments) {
			merged.Comments = rec.Comments
			merged.Touched.Add(FieldComments)
		}

		if rec.Touched.Has(FieldTags) && len(rec.Tags) > 0 {
			merged.Tags = mergeStringSlices(merged.Tags, rec.Tags)
			merged.Touched.Add(FieldTags)
		}

		for kind, value := range rec.Identifiers {
			if value == "" {
				continue
			}
			if _, ok := merged.Identifiers[kind]; !ok {
				merged.Identifiers[kind] = value
			}
		}
		if rec.Touched.Has(FieldISBN) {
			merged.Touched.Add(FieldISBN)
		}
		if rec.Touched.Has(FieldCatalogID) {
			merged.Touched.Add(FieldCatalogID)
		}

		if merged.CoverURL == "" {
			merged.CoverURL = rec.CoverURL
		}
	}

	return merged
}

// mergeStringSlices merges two string slices, removing duplicates.
func mergeStringSlices(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	return result
}
