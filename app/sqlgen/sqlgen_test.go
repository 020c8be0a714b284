package sqlgen

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbcrawl/kbcrawl/app/kb"
	_ "github.com/mattn/go-sqlite3"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		answer   string
		want     string
	}{
		{"What services do you offer?", "Many.", "services"},
		{"How much does it cost?", "A lot.", "pricing"},
		// Pricing keywords also match the answer side.
		{"Tell me more.", "Our fee is low.", "pricing"},
		{"Where is your office?", "Downtown.", "contact"},
		{"My widget is not working.", "Restart it.", "support"},
		{"What is your refund policy?", "Thirty days.", "policies"},
		{"Good morning.", "Hello there.", "general"},
		// Service keywords only count on the question side.
		{"Good morning.", "We provide widgets.", "general"},
		// Question match wins over an answer-side match further down the list.
		{"What do you sell?", "Call us for help.", "services"},
	}

	for _, tc := range tests {
		if got := Classify(tc.question, tc.answer); got != tc.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tc.question, tc.answer, got, tc.want)
		}
	}
}

func TestEscapeString(t *testing.T) {
	if got := EscapeString("it's O'Brien's"); got != "it''s O''Brien''s" {
		t.Fatalf("unexpected escape: %q", got)
	}
	if got := EscapeString("plain"); got != "plain" {
		t.Fatalf("unexpected escape: %q", got)
	}
}

func TestInserts(t *testing.T) {
	pairs := []kb.TrainingPair{
		{Intent: "faq_1", Text: "What's the price?", Response: "It's $5."},
		{Intent: "faq_2", Text: "   ", Response: "Skipped."},
		{Intent: "faq_3", Text: "Skipped too.", Response: ""},
	}

	statements := Inserts(pairs, "biz-1")

	if len(statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(statements))
	}
	want := "insert into knowledge_base (business_id, question, answer, category, priority)\nvalues\n('biz-1', 'What''s the price?', 'It''s $5.', 'pricing', 1);"
	if statements[0] != want {
		t.Fatalf("unexpected statement:\n%s\nwant:\n%s", statements[0], want)
	}
}

// Execute the generated statements against a real database to prove they are
// valid SQL even with awkward input.
func TestInsertsExecuteAgainstSQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("error opening database: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`create table knowledge_base (
		business_id text,
		question text,
		answer text,
		category text,
		priority integer
	)`)
	if err != nil {
		t.Fatalf("error creating table: %v", err)
	}

	pairs := []kb.TrainingPair{
		{Text: "What services do you offer?", Response: "We build things."},
		{Text: "Who's in charge?", Response: "O'Brien; ask at the 'front' desk."},
		{Text: "How much?", Response: "It costs $10 -- really."},
	}

	for _, statement := range Inserts(pairs, "o'brien's shop") {
		if _, err := db.Exec(statement); err != nil {
			t.Fatalf("error executing statement: %v\n%s", err, statement)
		}
	}

	var count int
	if err := db.QueryRow("select count(*) from knowledge_base").Scan(&count); err != nil {
		t.Fatalf("error counting rows: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}

	var answer string
	err = db.QueryRow("select answer from knowledge_base where question = ?", "Who's in charge?").Scan(&answer)
	if err != nil {
		t.Fatalf("error reading row back: %v", err)
	}
	if answer != "O'Brien; ask at the 'front' desk." {
		t.Fatalf("quotes did not round-trip: %q", answer)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge_base.sql")

	statements := Inserts([]kb.TrainingPair{
		{Text: "What is this?", Response: "A test."},
	}, "biz-1")
	if err := Save(path, statements); err != nil {
		t.Fatalf("error saving: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("error reading file: %v", err)
	}
	content := string(raw)
	if !strings.HasPrefix(content, "-- SQL INSERT statements for knowledge base\n-- Generated from chatbot data\n\n") {
		t.Fatalf("missing header:\n%s", content)
	}
	if !strings.Contains(content, statements[0]+"\n\n") {
		t.Fatalf("statement missing or not separated:\n%s", content)
	}
}
