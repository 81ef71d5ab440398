package logging

import (
	"strings"
	"testing"
)

func TestRecentReturnsNewestLines(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer log.Close()

	for i := 0; i < 10; i++ {
		log.Info("event", "n", i)
	}

	lines, err := log.Recent(3, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[2], "n=9") {
		t.Errorf("last line should be the newest, got %q", lines[2])
	}
}

func TestRecentFilterIsCaseInsensitive(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer log.Close()

	log.Info("project created", "name", "Todo-App")
	log.Error("run failed", "project", "other")

	lines, err := log.Recent(50, "TODO-APP")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "project created") {
		t.Errorf("wrong line matched: %q", lines[0])
	}
}

func TestRecentEmptyLog(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer log.Close()

	lines, err := log.Recent(50, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("empty log should yield no lines, got %v", lines)
	}
}
