// Package excel imports vocabulary into a lesson from Excel or CSV files.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/database"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	FrontColumn    string // Column with the word in the studied language
	BackColumn     string // Column with the translation
	WordTypeColumn string // Column with the word type name (optional)
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FrontColumn:    "A",
		BackColumn:     "B",
		WordTypeColumn: "C",
		SheetName:      "Sheet1",
		StartRow:       2, // Skip the header row
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed   int
	WordTypesCreated int
	Created          int
	Updated          int
	Skipped          int
	Errors           []string
}

// ImportWords imports words into a lesson from an Excel or CSV file
func ImportWords(ctx context.Context, lessonID int64, config ImportConfig) (*ImportResult, error) {
	lessonRepo := database.NewLessonRepository()
	lesson, err := lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target lesson: %v", err)
	}

	imp := &importer{
		lesson:       lesson,
		wordRepo:     database.NewWordRepository(),
		wordTypeRepo: database.NewWordTypeRepository(),
		typeIDs:      make(map[string]int64),
	}

	// Existing word types of the lesson's language, for name lookup
	types, err := imp.wordTypeRepo.GetByLanguage(ctx, lesson.LanguageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load word types: %v", err)
	}
	for _, t := range types {
		imp.typeIDs[strings.ToLower(t.Name)] = t.ID
	}

	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return imp.importFromCSV(ctx, config)
	}
	return imp.importFromExcel(ctx, config)
}

type importer struct {
	lesson       *models.Lesson
	wordRepo     *database.WordRepository
	wordTypeRepo *database.WordTypeRepository
	typeIDs      map[string]int64
}

// importFromExcel imports words from an Excel file
func (imp *importer) importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}

	frontIdx := columnIndex(config.FrontColumn)
	backIdx := columnIndex(config.BackColumn)
	typeIdx := columnIndex(config.WordTypeColumn)

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++
		if err := imp.processRow(ctx, cell(row, frontIdx), cell(row, backIdx), cell(row, typeIdx), result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports words from a CSV file
func (imp *importer) importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &ImportResult{Errors: make([]string, 0)}

	frontIdx := columnIndex(config.FrontColumn)
	backIdx := columnIndex(config.BackColumn)
	typeIdx := columnIndex(config.WordTypeColumn)

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		result.TotalProcessed++
		if err := imp.processRow(ctx, cell(row, frontIdx), cell(row, backIdx), cell(row, typeIdx), result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// processRow creates or updates one word from a row
func (imp *importer) processRow(ctx context.Context, front, back, typeName string, result *ImportResult) error {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	typeName = strings.TrimSpace(typeName)

	if front == "" || back == "" {
		result.Skipped++
		return nil
	}

	var typeID int64
	if typeName != "" {
		id, created, err := imp.resolveWordType(ctx, typeName)
		if err != nil {
			return err
		}
		if created {
			result.WordTypesCreated++
		}
		typeID = id
	}

	existing, err := imp.wordRepo.GetByLessonAndFront(ctx, imp.lesson.ID, front)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.Back = back
		if typeID != 0 {
			existing.WordTypeID = typeID
		}
		if err := imp.wordRepo.Update(ctx, existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	word := &models.Word{
		LessonID:   imp.lesson.ID,
		WordTypeID: typeID,
		Front:      front,
		Back:       back,
	}
	if err := imp.wordRepo.Create(ctx, word); err != nil {
		return err
	}
	result.Created++
	return nil
}

// resolveWordType returns the ID of the named word type, creating it in the
// lesson's language when it doesn't exist yet
func (imp *importer) resolveWordType(ctx context.Context, name string) (int64, bool, error) {
	key := strings.ToLower(name)
	if id, ok := imp.typeIDs[key]; ok {
		return id, false, nil
	}

	wordType := &models.WordType{
		LanguageID: imp.lesson.LanguageID,
		Name:       name,
	}
	if err := imp.wordTypeRepo.Create(ctx, wordType); err != nil {
		return 0, false, err
	}
	imp.typeIDs[key] = wordType.ID
	return wordType.ID, true, nil
}

// columnIndex converts a column letter ("A", "B", ..., "AA") to a zero-based
// index. Returns -1 for an empty name.
func columnIndex(name string) int {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return -1
	}
	idx := 0
	for _, c := range name {
		if c < 'A' || c > 'Z' {
			return -1
		}
		idx = idx*26 + int(c-'A') + 1
	}
	return idx - 1
}

// cell returns the trimmed value at idx, or "" when the row is too short
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
