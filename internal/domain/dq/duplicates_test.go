package dq

import (
	"testing"
	"time"
)

func householdRecord(id uint64, overrides map[string]string) Record {
	fields := map[string]string{
		FieldProvince:     "Lusaka",
		FieldDistrict:     "Lusaka",
		FieldConstituency: "Mandevu",
		FieldWard:         "Ward 5",
		FieldEA:           "EA1",
		FieldHUN:          "U1",
		FieldHHN:          "U2",
		FieldStart:        "2024-01-01T10:00:00Z",
		FieldEnd:          "2024-01-01T10:45:00Z",
		FieldEnumerator:   "enum-1",
		FieldRespondent:   "Jane Banda",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	return Record{ID: id, Fields: fields}
}

func findingsOfKind(findings []Finding, kind Kind) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestExactDuplicateGroupsIdenticalRecordsOnly(t *testing.T) {
	records := []Record{
		householdRecord(1, nil),
		householdRecord(2, nil),
		householdRecord(3, map[string]string{FieldRespondent: "Someone Else"}),
	}

	findings := FindDuplicates(records, DetectorConfig{Location: time.UTC})
	exact := findingsOfKind(findings, KindExactDuplicate)
	if len(exact) != 1 {
		t.Fatalf("exact findings = %d, want 1", len(exact))
	}
	got := exact[0].MemberIDs
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("exact members = %v, want [1 2]", got)
	}
	if exact[0].Details["count"] != "2" {
		t.Fatalf("count = %v, want \"2\"", exact[0].Details["count"])
	}
}

func TestExactDuplicateNormalizesFieldRepresentations(t *testing.T) {
	records := []Record{
		householdRecord(1, map[string]string{FieldProvince: " Lusaka "}),
		householdRecord(2, map[string]string{FieldProvince: "LUSAKA"}),
	}
	findings := FindDuplicates(records, DetectorConfig{Location: time.UTC})
	if len(findingsOfKind(findings, KindExactDuplicate)) != 1 {
		t.Fatalf("normalized representations did not group")
	}
}

func TestWindowDuplicateBoundary(t *testing.T) {
	base := map[string]string{
		FieldProvince: "", FieldDistrict: "", FieldConstituency: "", FieldWard: "",
	}
	atWindow := []Record{
		householdRecord(1, merge(base, map[string]string{FieldStart: "2024-01-01T00:00:00Z", FieldEnd: ""})),
		householdRecord(2, merge(base, map[string]string{FieldStart: "2024-01-02T00:00:00Z", FieldEnd: ""})),
	}
	findings := FindDuplicates(atWindow, DetectorConfig{Window: 24 * time.Hour, Location: time.UTC})
	if len(findingsOfKind(findings, KindWindowDuplicate)) != 1 {
		t.Fatalf("records exactly one window apart should cluster")
	}

	pastWindow := []Record{
		householdRecord(1, merge(base, map[string]string{FieldStart: "2024-01-01T00:00:00Z", FieldEnd: ""})),
		householdRecord(2, merge(base, map[string]string{FieldStart: "2024-01-02T00:00:01Z", FieldEnd: ""})),
	}
	findings = FindDuplicates(pastWindow, DetectorConfig{Window: 24 * time.Hour, Location: time.UTC})
	if len(findingsOfKind(findings, KindWindowDuplicate)) != 0 {
		t.Fatalf("records one second past the window should not cluster")
	}
}

// Chained semantics: records linked through an intermediate timestamp end up
// in one cluster even when the endpoints are more than a window apart.
func TestWindowDuplicateChainsThroughIntermediateRecords(t *testing.T) {
	base := map[string]string{
		FieldProvince: "", FieldDistrict: "", FieldConstituency: "", FieldWard: "",
	}
	records := []Record{
		householdRecord(1, merge(base, map[string]string{FieldStart: "2024-01-01T00:00:00Z", FieldEnd: ""})),
		householdRecord(2, merge(base, map[string]string{FieldStart: "2024-01-01T20:00:00Z", FieldEnd: ""})),
		householdRecord(3, merge(base, map[string]string{FieldStart: "2024-01-02T16:00:00Z", FieldEnd: ""})),
	}

	findings := FindDuplicates(records, DetectorConfig{Window: 24 * time.Hour, Location: time.UTC})
	windowed := findingsOfKind(findings, KindWindowDuplicate)
	if len(windowed) != 1 {
		t.Fatalf("windowed findings = %d, want 1", len(windowed))
	}
	if len(windowed[0].MemberIDs) != 3 {
		t.Fatalf("chained cluster members = %v, want all three", windowed[0].MemberIDs)
	}
}

func TestWindowDuplicateSkipsRecordsWithoutTimestamps(t *testing.T) {
	records := []Record{
		householdRecord(1, map[string]string{FieldStart: "", FieldEnd: "", FieldSubmissionDate: ""}),
		householdRecord(2, map[string]string{FieldStart: "", FieldEnd: "", FieldSubmissionDate: ""}),
	}
	// Identical records still match exactly, but never by time window.
	findings := FindDuplicates(records, DetectorConfig{Location: time.UTC})
	if len(findingsOfKind(findings, KindWindowDuplicate)) != 0 {
		t.Fatalf("untimed records clustered by window")
	}
}

func TestWindowDuplicateRequiresAllThreeKeys(t *testing.T) {
	records := []Record{
		householdRecord(1, map[string]string{FieldEA: "", FieldRespondent: "a"}),
		householdRecord(2, map[string]string{FieldEA: "", FieldRespondent: "b"}),
	}
	findings := FindDuplicates(records, DetectorConfig{Location: time.UTC})
	if len(findingsOfKind(findings, KindWindowDuplicate)) != 0 {
		t.Fatalf("missing EA should disable window grouping")
	}
}

func TestAdminDuplicateRequiresUnitNumbersAndOneAdminField(t *testing.T) {
	noUnits := []Record{
		householdRecord(1, map[string]string{FieldHUN: "", FieldEA: "", FieldRespondent: "a"}),
		householdRecord(2, map[string]string{FieldHUN: "", FieldEA: "", FieldRespondent: "b"}),
	}
	findings := FindDuplicates(noUnits, DetectorConfig{Location: time.UTC})
	if len(findingsOfKind(findings, KindAdminDuplicate)) != 0 {
		t.Fatalf("missing unit number should disable admin grouping")
	}

	noAdmin := []Record{
		householdRecord(1, map[string]string{
			FieldProvince: "", FieldDistrict: "", FieldConstituency: "", FieldWard: "",
			FieldEA: "", FieldRespondent: "a",
		}),
		householdRecord(2, map[string]string{
			FieldProvince: "", FieldDistrict: "", FieldConstituency: "", FieldWard: "",
			FieldEA: "", FieldRespondent: "b",
		}),
	}
	findings = FindDuplicates(noAdmin, DetectorConfig{Location: time.UTC})
	if len(findingsOfKind(findings, KindAdminDuplicate)) != 0 {
		t.Fatalf("all-blank admin fields should disable admin grouping")
	}
}

func TestConflictResolutionPrefersExactOverAdmin(t *testing.T) {
	// Identical pair matches both exact-fields and admin+unit grouping.
	records := []Record{
		householdRecord(1, map[string]string{FieldEA: ""}),
		householdRecord(2, map[string]string{FieldEA: ""}),
	}
	findings := FindDuplicates(records, DetectorConfig{Location: time.UTC})
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1 after claim sweep", len(findings))
	}
	if findings[0].Kind != KindExactDuplicate {
		t.Fatalf("surviving kind = %s, want %s", findings[0].Kind, KindExactDuplicate)
	}
}

func TestFindDuplicatesIsDeterministic(t *testing.T) {
	records := []Record{
		householdRecord(1, map[string]string{FieldRespondent: "a"}),
		householdRecord(2, map[string]string{FieldRespondent: "a"}),
		householdRecord(3, map[string]string{FieldRespondent: "b", FieldStart: "2024-01-01T11:00:00Z"}),
		householdRecord(4, map[string]string{FieldRespondent: "c", FieldStart: "2024-01-01T12:00:00Z"}),
	}

	var prev []Finding
	for i := 0; i < 20; i++ {
		got := FindDuplicates(records, DetectorConfig{Location: time.UTC})
		if prev == nil {
			prev = got
			continue
		}
		if len(got) != len(prev) {
			t.Fatalf("run %d: %d findings, previously %d", i, len(got), len(prev))
		}
		for j := range got {
			if got[j].Kind != prev[j].Kind {
				t.Fatalf("run %d finding %d kind %s, previously %s", i, j, got[j].Kind, prev[j].Kind)
			}
			if len(got[j].MemberIDs) != len(prev[j].MemberIDs) {
				t.Fatalf("run %d finding %d members %v, previously %v", i, j, got[j].MemberIDs, prev[j].MemberIDs)
			}
			for k := range got[j].MemberIDs {
				if got[j].MemberIDs[k] != prev[j].MemberIDs[k] {
					t.Fatalf("run %d finding %d members %v, previously %v", i, j, got[j].MemberIDs, prev[j].MemberIDs)
				}
			}
		}
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
