package dq

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the maximum gap between adjacent submissions that still
// counts as a suspected re-visit of the same housing unit.
const DefaultWindow = 24 * time.Hour

// DetectorConfig carries the duplicate-detection knobs. The zero value gets
// the documented defaults.
type DetectorConfig struct {
	Window   time.Duration
	Location *time.Location
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// FindDuplicates runs the three grouping strategies over one batch and
// collapses overlapping groups so that every record belongs to at most one
// surfaced duplicate finding per run, preferring the most specific kind
// (exact > time-windowed > admin). Findings whose members were already
// claimed by a higher-priority group are dropped for the run.
func FindDuplicates(records []Record, cfg DetectorConfig) []Finding {
	cfg = cfg.withDefaults()

	rows := make([]normalized, 0, len(records))
	for _, rec := range records {
		rows = append(rows, newNormalized(rec, cfg.Location))
	}

	var findings []Finding
	findings = append(findings, exactFieldFindings(rows)...)
	findings = append(findings, windowedFindings(rows, cfg.Window)...)
	findings = append(findings, adminFindings(rows)...)

	// Global deterministic order: priority first, then lowest member id.
	// Without this the claim sweep would depend on map iteration order and
	// identical data could resolve differently between runs.
	sort.SliceStable(findings, func(i, j int) bool {
		pi, pj := kindPriority(findings[i].Kind), kindPriority(findings[j].Kind)
		if pi != pj {
			return pi < pj
		}
		return findings[i].MemberIDs[0] < findings[j].MemberIDs[0]
	})

	claimed := make(map[uint64]struct{})
	accepted := findings[:0]
	for _, f := range findings {
		overlap := false
		for _, id := range f.MemberIDs {
			if _, ok := claimed[id]; ok {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		for _, id := range f.MemberIDs {
			claimed[id] = struct{}{}
		}
		accepted = append(accepted, f)
	}
	return accepted
}

func kindPriority(k Kind) int {
	switch k {
	case KindExactDuplicate:
		return 0
	case KindWindowDuplicate:
		return 1
	case KindAdminDuplicate:
		return 2
	}
	return 99
}

const keySep = "\x1f"

func exactFieldFindings(rows []normalized) []Finding {
	groups := make(map[string][]uint64)
	values := make(map[string]normalized)
	for _, row := range rows {
		key := strings.Join([]string{
			row.province, row.district, row.constituency, row.ward,
			row.ea, row.hun, row.hhn,
			row.start, row.end, row.enumerator, row.respondent,
		}, keySep)
		groups[key] = append(groups[key], row.id)
		values[key] = row
	}

	var out []Finding
	for key, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		row := values[key]
		out = append(out, Finding{
			Kind:      KindExactDuplicate,
			MemberIDs: sortedUniqueIDs(ids),
			Keys: map[string]string{
				FieldProvince: row.province, FieldDistrict: row.district,
				FieldConstituency: row.constituency, FieldWard: row.ward,
				FieldEA: row.ea, FieldHUN: row.hun, FieldHHN: row.hhn,
				FieldStart: row.start, FieldEnd: row.end,
				FieldEnumerator: row.enumerator, FieldRespondent: row.respondent,
			},
			Details: map[string]any{
				"subtype": string(KindExactDuplicate),
				"count":   strconv.Itoa(len(ids)),
			},
		})
	}
	return out
}

// windowedFindings clusters records sharing (ea, hun, hhn) by a single
// adjacent-pair sweep over their time-sorted order. Adjacency is by sorted
// time, not exhaustive pairing: two records each within the window of a
// shared middle record land in the same cluster even when they are more than
// a window apart from each other ("chained window" semantics).
func windowedFindings(rows []normalized, window time.Duration) []Finding {
	groups := make(map[string][]normalized)
	for _, row := range rows {
		if row.ea == "" || row.hun == "" || row.hhn == "" {
			continue
		}
		key := strings.Join([]string{row.ea, row.hun, row.hhn}, keySep)
		groups[key] = append(groups[key], row)
	}

	var out []Finding
	for _, members := range groups {
		timed := members[:0]
		for _, m := range members {
			if !m.bestTime().IsZero() {
				timed = append(timed, m)
			}
		}
		if len(timed) < 2 {
			continue
		}
		sort.Slice(timed, func(i, j int) bool {
			ti, tj := timed[i].bestTime(), timed[j].bestTime()
			if ti.Equal(tj) {
				return timed[i].id < timed[j].id
			}
			return ti.Before(tj)
		})

		var clusterIDs []uint64
		var current []uint64
		for i := 0; i < len(timed)-1; i++ {
			a, b := timed[i], timed[i+1]
			if b.bestTime().Sub(a.bestTime()) <= window {
				if len(current) == 0 {
					current = []uint64{a.id, b.id}
				} else {
					current = append(current, b.id)
				}
			} else if len(current) > 0 {
				clusterIDs = append(clusterIDs, current...)
				current = nil
			}
		}
		clusterIDs = append(clusterIDs, current...)
		clusterIDs = sortedUniqueIDs(clusterIDs)
		if len(clusterIDs) < 2 {
			continue
		}

		inCluster := make(map[uint64]struct{}, len(clusterIDs))
		for _, id := range clusterIDs {
			inCluster[id] = struct{}{}
		}
		var first, last time.Time
		for _, m := range timed {
			if _, ok := inCluster[m.id]; !ok {
				continue
			}
			t := m.bestTime()
			if first.IsZero() || t.Before(first) {
				first = t
			}
			if last.IsZero() || t.After(last) {
				last = t
			}
		}

		out = append(out, Finding{
			Kind:      KindWindowDuplicate,
			MemberIDs: clusterIDs,
			Keys: map[string]string{
				FieldEA:  timed[0].ea,
				FieldHUN: timed[0].hun,
				FieldHHN: timed[0].hhn,
			},
			Details: map[string]any{
				"subtype":    string(KindWindowDuplicate),
				"window":     window.String(),
				"first_seen": first.Format(time.RFC3339),
				"last_seen":  last.Format(time.RFC3339),
				"count":      strconv.Itoa(len(clusterIDs)),
			},
		})
	}
	return out
}

func adminFindings(rows []normalized) []Finding {
	groups := make(map[string][]uint64)
	values := make(map[string]normalized)
	for _, row := range rows {
		if row.hun == "" || row.hhn == "" {
			continue
		}
		if row.province == "" && row.district == "" && row.constituency == "" && row.ward == "" {
			continue
		}
		key := strings.Join([]string{
			row.province, row.district, row.constituency, row.ward,
			row.hun, row.hhn,
		}, keySep)
		groups[key] = append(groups[key], row.id)
		values[key] = row
	}

	var out []Finding
	for key, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		row := values[key]
		out = append(out, Finding{
			Kind:      KindAdminDuplicate,
			MemberIDs: sortedUniqueIDs(ids),
			Keys: map[string]string{
				FieldProvince: row.province, FieldDistrict: row.district,
				FieldConstituency: row.constituency, FieldWard: row.ward,
				FieldHUN: row.hun, FieldHHN: row.hhn,
			},
			Details: map[string]any{
				"subtype": string(KindAdminDuplicate),
				"count":   strconv.Itoa(len(ids)),
			},
		})
	}
	return out
}
