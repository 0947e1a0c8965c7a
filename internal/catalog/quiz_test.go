package catalog_test

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/p-n-ai/pai-admin/internal/catalog"
)

func TestQuestionInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      catalog.QuestionInput
		wantErr bool
	}{
		{"valid", catalog.QuestionInput{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswers: []int{1}, Points: 1}, false},
		{"multiple answers", catalog.QuestionInput{Question: "Evens?", Options: []string{"1", "2", "4"}, CorrectAnswers: []int{1, 2}}, false},
		{"blank text", catalog.QuestionInput{Question: " ", Options: []string{"a", "b"}, CorrectAnswers: []int{0}}, true},
		{"one option", catalog.QuestionInput{Question: "Q", Options: []string{"a"}, CorrectAnswers: []int{0}}, true},
		{"no answer", catalog.QuestionInput{Question: "Q", Options: []string{"a", "b"}}, true},
		{"answer out of range", catalog.QuestionInput{Question: "Q", Options: []string{"a", "b"}, CorrectAnswers: []int{2}}, true},
		{"negative answer", catalog.QuestionInput{Question: "Q", Options: []string{"a", "b"}, CorrectAnswers: []int{-1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionsWorkbook(t *testing.T) {
	questions := []catalog.QuestionInput{
		{Question: "Capital of Nigeria?", Options: []string{"Lagos", "Abuja", "Kano"}, CorrectAnswers: []int{1}, Points: 2},
		{Question: "Pick the primes", Options: []string{"2", "4", "5"}, CorrectAnswers: []int{0, 2}, Points: 3},
	}

	var buf bytes.Buffer
	if err := catalog.WriteQuestionsWorkbook(&buf, questions); err != nil {
		t.Fatalf("WriteQuestionsWorkbook() error = %v", err)
	}

	got, err := catalog.ParseQuestionsWorkbook(&buf)
	if err != nil {
		t.Fatalf("ParseQuestionsWorkbook() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i, q := range got {
		if q.OrderIndex != i {
			t.Errorf("question %d OrderIndex = %d", i, q.OrderIndex)
		}
		if q.Question != questions[i].Question || !slices.Equal(q.Options, questions[i].Options) ||
			!slices.Equal(q.CorrectAnswers, questions[i].CorrectAnswers) || q.Points != questions[i].Points {
			t.Errorf("question %d = %+v, want %+v", i, q, questions[i])
		}
	}
}

func TestQuizRepository_ImportQuestions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /course/quizzes/{id}/questions/import", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			writeJSON(w, http.StatusBadRequest, `{"message":"file is required"}`)
			return
		}
		defer file.Close()
		if header.Filename != "quiz-7-questions.xlsx" {
			t.Errorf("filename = %q", header.Filename)
		}
		parsed, err := catalog.ParseQuestionsWorkbook(file)
		if err != nil || len(parsed) != 1 {
			t.Errorf("uploaded workbook = %+v, %v", parsed, err)
		}
		writeJSON(w, http.StatusCreated, `{"quiz":{"id":7,"title":"Final","is_final":true,"questions":[{"id":1,"question":"Q","options":["a","b"],"correct_answers":[0],"points":1}]}}`)
	})
	repo := catalog.NewQuizRepository(newBackend(t, mux), nil)

	quiz, err := repo.ImportQuestions(t.Context(), 7, []catalog.QuestionInput{
		{Question: "Q", Options: []string{"a", "b"}, CorrectAnswers: []int{0}, Points: 1},
	})
	if err != nil {
		t.Fatalf("ImportQuestions() error = %v", err)
	}
	if quiz.TotalPoints() != 1 || !quiz.IsFinal {
		t.Errorf("quiz = %+v", quiz)
	}

	if _, err := repo.ImportQuestions(t.Context(), 7, nil); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Errorf("empty import error = %v, want ErrInvalidInput", err)
	}
}

func TestQuizRepository_FallsBackPerCourse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /course", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":1},{"id":2}]`)
	})
	mux.HandleFunc("GET /course/quizzes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"Course not found"}`)
	})
	mux.HandleFunc("GET /course/{id}/quizzes", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "1" {
			writeJSON(w, http.StatusOK, `{"quizzes":[{"id":1,"title":"Check","is_final":false}]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"quizzes":[{"id":2,"title":"Exam","is_final":true}]}`)
	})
	client := newBackend(t, mux)
	repo := catalog.NewQuizRepository(client, catalog.NewCourseRepository(client))

	finals, err := repo.List(t.Context(), catalog.QuizFilters{IsFinal: catalog.Ptr(true)})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(finals) != 1 || finals[0].ID != 2 || finals[0].CourseID != 2 {
		t.Errorf("finals = %+v", finals)
	}
}
