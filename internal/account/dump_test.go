package account

import (
	"errors"
	"strconv"
	"testing"
)

const dumpAccounts = `[{"username":"ana","password":"secret","profile":{"name":"Ana","gradeLevel":"6","section":"B","createdAt":"2025-01-05T08:00:00.000Z"},"progress":{"levels":{"addition-similar":{"completed":true,"bestScore":5,"trials":2,"stars":3,"unlockedAt":"2025-01-05T08:10:00.000Z"}},"preTestCompleted":true,"postTestCompleted":false,"preTestScore":12,"postTestScore":0,"preTestTrials":1,"postTestTrials":0,"totalStars":3}}]`

func TestParseDump(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		want    int
	}{
		{"bare array", dumpAccounts, nil, 1},
		{"storage object", `{"fractionmaster_accounts":` + dumpAccounts + `,"fractionmaster_current_user":"ana"}`, nil, 1},
		{"string encoded", `{"fractionmaster_accounts":` + strconv.Quote(dumpAccounts) + `}`, nil, 1},
		{"no progress levels", `[{"username":"bo","password":"x","profile":{},"progress":{}}]`, nil, 1},
		{"empty", "  ", ErrNoAccounts, 0},
		{"missing key", `{"other":1}`, ErrNoAccounts, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDump([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d accounts, want %d", len(got), tt.want)
			}
			if got[0].Progress.Levels == nil {
				t.Error("levels map is nil")
			}
		})
	}
}

func TestParseDumpFields(t *testing.T) {
	got, err := ParseDump([]byte(dumpAccounts))
	if err != nil {
		t.Fatal(err)
	}
	a := got[0]
	if a.Username != "ana" || a.Password != "secret" || a.Profile.GradeLevel != "6" {
		t.Errorf("account = %+v", a)
	}
	lp := a.Progress.Levels["addition-similar"]
	if !lp.Completed || lp.Stars != 3 || lp.Trials != 2 || a.Progress.PreTestScore != 12 {
		t.Errorf("progress = %+v", a.Progress)
	}
}

func TestParseDumpMalformed(t *testing.T) {
	for _, in := range []string{`[{"username":`, `{"fractionmaster_accounts":"not json"}`, `{broken`} {
		if _, err := ParseDump([]byte(in)); err == nil {
			t.Errorf("ParseDump(%q) succeeded", in)
		}
	}
}
