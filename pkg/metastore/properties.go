package metastore

import (
	"strings"
	"time"
)

// typeTagSuffix is the companion-key suffix carrying a property's EDM
// type tag, e.g. "When@odata.type".
const typeTagSuffix = "@odata.type"

// applyTimestamp recomputes the Timestamp system property (and its
// Edm.DateTime type tag) from the write time, in place. Every
// successful write recomputes Timestamp this way regardless of which
// operation performed it.
func applyTimestamp(props map[string]any, t time.Time) {
	props["Timestamp"] = formatTimestamp(t)
	props["Timestamp"+typeTagSuffix] = "Edm.DateTime"
}

// mergeProperties overlays every non-type-tag key from incoming onto a
// copy of existing, synchronizing each overlaid key's type tag: present
// in incoming means overwritten, absent means deleted from the result.
// Keys existing holds that incoming doesn't touch are left untouched.
func mergeProperties(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		if strings.HasSuffix(k, typeTagSuffix) {
			continue
		}
		out[k] = v
		tagKey := k + typeTagSuffix
		if tag, ok := incoming[tagKey]; ok {
			out[tagKey] = tag
		} else {
			delete(out, tagKey)
		}
	}
	return out
}
