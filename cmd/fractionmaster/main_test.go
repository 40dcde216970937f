package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

const dump = `{"fractionmaster_accounts":[
 {"username":"ana","password":"secret","profile":{"name":"Ana","gradeLevel":"6","section":"B","createdAt":"2025-01-05T08:00:00Z"},
  "progress":{"levels":{"addition-similar":{"completed":true,"bestScore":5,"trials":1,"stars":3,"unlockedAt":"2025-01-05T08:10:00Z"}},"preTestCompleted":true,"preTestScore":11,"preTestTrials":1,"totalStars":3}},
 {"username":"ben","password":"hunter2","profile":{"name":"Ben"},"progress":{"levels":{}}}
]}`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func readExport(t *testing.T, path string) model.AccountsExport {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exp model.AccountsExport
	if err := json.Unmarshal(data, &exp); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	return exp
}

func TestImportExportPurge(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "fm.db")
	dumpPath := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(dumpPath, []byte(dump), 0o600); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "import", "--db", db, "-i", dumpPath, "--bcrypt-cost", "4", "--log-level", "error")
	if !strings.Contains(out, "imported 2 of 2 accounts") {
		t.Errorf("import output = %q", out)
	}
	// A second import skips existing usernames.
	out = execute(t, "import", "--db", db, "-i", dumpPath, "--bcrypt-cost", "4", "--log-level", "error")
	if !strings.Contains(out, "imported 0 of 2 accounts") {
		t.Errorf("re-import output = %q", out)
	}

	exportPath := filepath.Join(dir, "export.json")
	execute(t, "export", "--db", db, "-o", exportPath, "--log-level", "error")
	exp := readExport(t, exportPath)
	if len(exp.Accounts) != 2 || exp.Levels != 9 {
		t.Fatalf("export = %d accounts, %d levels", len(exp.Accounts), exp.Levels)
	}
	ana := exp.Accounts[0]
	if ana.Username != "ana" || ana.CompletedLevels != 1 || len(ana.Certificates) != 2 {
		t.Errorf("ana = %+v", ana)
	}
	raw, _ := os.ReadFile(exportPath)
	if strings.Contains(string(raw), "secret") {
		t.Error("export contains a password")
	}

	// Import writes the accounts key only; no session exists.
	out = execute(t, "purge", "--db", db, "--log-level", "error")
	if !strings.Contains(out, "purged keys: 1") {
		t.Errorf("purge output = %q", out)
	}
	execute(t, "export", "--db", db, "-o", exportPath, "--log-level", "error")
	if exp := readExport(t, exportPath); len(exp.Accounts) != 0 {
		t.Errorf("accounts after purge = %d", len(exp.Accounts))
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import", "--db", filepath.Join(dir, "fm.db"), "-i", bad, "--log-level", "error"})
	if err := root.Execute(); err == nil {
		t.Error("expected import of malformed dump to fail")
	}
}

func TestPlayQuitsOnEOF(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("q\n"))
	root.SetArgs([]string{"--db", filepath.Join(dir, "fm.db"), "--log-level", "error", "--lang", "fil"})
	if err := root.Execute(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "Paalam!") {
		t.Errorf("output = %q", out.String())
	}
}
