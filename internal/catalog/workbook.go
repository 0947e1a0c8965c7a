package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// QuestionsSheet is the worksheet the question import reads.
const QuestionsSheet = "Questions"

var questionColumns = []any{"question", "options", "correct_answers", "points"}

// WriteQuestionsWorkbook writes questions as an XLSX workbook with one row per
// question. Options are joined with "|" and correct answers with ",".
func WriteQuestionsWorkbook(w io.Writer, questions []QuestionInput) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), QuestionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(QuestionsSheet, "A1", &questionColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, q := range questions {
		answers := make([]string, len(q.CorrectAnswers))
		for j, a := range q.CorrectAnswers {
			answers[j] = strconv.Itoa(a)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{q.Question, strings.Join(q.Options, "|"), strings.Join(answers, ","), q.Points}
		if err := f.SetSheetRow(QuestionsSheet, cell, &row); err != nil {
			return fmt.Errorf("write question %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(QuestionsSheet, "A", "B", 48); err != nil {
		return err
	}
	return f.Write(w)
}

// ParseQuestionsWorkbook reads questions written by WriteQuestionsWorkbook.
// Order indices follow row order. Blank rows are skipped.
func ParseQuestionsWorkbook(r io.Reader) ([]QuestionInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(QuestionsSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", QuestionsSheet, err)
	}
	if len(rows) == 0 {
		return []QuestionInput{}, nil
	}

	questions := []QuestionInput{}
	for i, row := range rows[1:] {
		line := i + 2
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		cells := make([]string, len(questionColumns))
		copy(cells, row)

		q := QuestionInput{
			Question:   strings.TrimSpace(cells[0]),
			OrderIndex: len(questions),
		}
		for _, opt := range strings.Split(cells[1], "|") {
			if opt = strings.TrimSpace(opt); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
		for _, a := range strings.Split(cells[2], ",") {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, invalid("row %d: correct answer %q is not a number", line, a)
			}
			q.CorrectAnswers = append(q.CorrectAnswers, n)
		}
		if p := strings.TrimSpace(cells[3]); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, invalid("row %d: points %q is not a number", line, p)
			}
			q.Points = n
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
