package domain

// MapPlanFeatures projects a plan's feature-flag set onto the catalog and
// returns key to display-name for every flag set true. Flags whose catalog
// entry is inactive are dropped. Flags with no catalog entry at all keep the
// raw key as their display name, so a plan may reference a feature before an
// administrator registers it.
func MapPlanFeatures(flags map[string]bool, catalog []Feature) map[string]string {
	out := make(map[string]string, len(flags))

	byKey := make(map[string]Feature, len(catalog))
	for _, f := range catalog {
		byKey[f.Key] = f
	}

	for key, enabled := range flags {
		if !enabled {
			continue
		}
		entry, known := byKey[key]
		if !known {
			out[key] = key
			continue
		}
		if !entry.Active {
			continue
		}
		out[key] = entry.Name
	}

	return out
}
