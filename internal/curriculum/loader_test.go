package curriculum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-admin/internal/curriculum"
)

func TestLoader_LoadBlueprints(t *testing.T) {
	dir := setupTestBlueprints(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	all := loader.All()
	if len(all) != 2 {
		t.Fatalf("All() = %d blueprints, want 2", len(all))
	}
	if all[0].Slug != "data-basics" || all[1].Slug != "go-fundamentals" {
		t.Errorf("All() slugs = %s, %s; want sorted by slug", all[0].Slug, all[1].Slug)
	}
}

func TestLoader_Get(t *testing.T) {
	dir := setupTestBlueprints(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	b, found := loader.Get("go-fundamentals")
	if !found {
		t.Fatal("Get(go-fundamentals) not found")
	}
	if len(b.Modules) != 2 {
		t.Fatalf("Modules = %d, want 2", len(b.Modules))
	}
	m := b.Modules[0]
	if len(m.Lessons) != 2 || len(m.Sessions) != 1 || len(m.Quizzes) != 1 {
		t.Errorf("module 0 = %+v", m)
	}
	if m.Sessions[0].StartTime.IsZero() {
		t.Error("session start_time not parsed")
	}
	if got := m.Quizzes[0].Questions[0].Answers; len(got) != 1 || got[0] != 1 {
		t.Errorf("answers = %v, want [1]", got)
	}
}

func TestLoader_Get_NotFound(t *testing.T) {
	dir := setupTestBlueprints(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if _, found := loader.Get("NONEXISTENT"); found {
		t.Error("Get(NONEXISTENT) should not be found")
	}
}

func TestLoader_SlugFromFilename(t *testing.T) {
	dir := setupTestBlueprints(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	b, found := loader.Get("data-basics")
	if !found {
		t.Fatal("Get(data-basics) not found; slug should default to the file name")
	}
	if b.Title != "Data Basics" {
		t.Errorf("Title = %q", b.Title)
	}
}

func TestLoader_SkipsInvalidAndForeignYAML(t *testing.T) {
	dir := setupTestBlueprints(t)

	os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("title: [unterminated"), 0o644)
	os.WriteFile(filepath.Join(dir, "settings.yml"), []byte("theme: dark\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Blueprints"), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.All()); got != 2 {
		t.Errorf("All() = %d blueprints, want 2 (invalid and foreign YAML skipped)", got)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	loader, err := curriculum.NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.All()); got != 0 {
		t.Errorf("All() = %d, want 0 for empty dir", got)
	}
}

func TestLoadBlueprint_NotABlueprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	os.WriteFile(path, []byte("name: something else\n"), 0o644)

	if _, err := curriculum.LoadBlueprint(path); err == nil {
		t.Error("LoadBlueprint() error = nil, want not-a-blueprint error")
	}
}

func setupTestBlueprints(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	nested := filepath.Join(dir, "engineering")
	os.MkdirAll(nested, 0o755)

	os.WriteFile(filepath.Join(nested, "go.yaml"), []byte(`
slug: go-fundamentals
title: Go Fundamentals
description: Types, interfaces and concurrency.
level: beginner
duration: 12
active: true
modules:
  - title: Getting started
    lessons:
      - title: Installing Go
        content_type: video
        content_url: https://cdn.example/go/install.mp4
        duration_min: 8
        preview: true
      - title: Hello, world
        content_type: text
        content_text: "package main"
    sessions:
      - title: Office hours
        session_type: LIVE
        start_time: 2026-03-02T09:00:00Z
        end_time: 2026-03-02T10:00:00Z
        meeting_url: https://meet.example/go
    quizzes:
      - title: Basics check
        passing_score: 70
        questions:
          - question: Which keyword starts a goroutine?
            options: [defer, go, chan]
            answers: [1]
            points: 1
  - title: Concurrency
    lessons:
      - title: Channels
        content_type: pdf
        pdf_url: https://cdn.example/go/channels.pdf
`), 0o644)

	os.WriteFile(filepath.Join(dir, "data-basics.yml"), []byte(`
title: Data Basics
modules:
  - title: Tables
`), 0o644)

	return dir
}
