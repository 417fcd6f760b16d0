package export

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/tealeg/xlsx"

	"recording-whisper/internal/app/model"
)

var columns = []string{
	"ID", "Source File", "Completed At", "Output Path",
	"Audio Duration (s)", "Chunks", "Model", "Language", "Status",
}

// ToExcel writes the run journal to an xlsx workbook at outputFilePath.
func ToExcel(records []model.RunRecord, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Runs")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, column := range columns {
		headerRow.AddCell().Value = column
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().Value = rec.ID
		row.AddCell().Value = rec.SourceFile
		row.AddCell().Value = rec.CompletedAt.Format(time.RFC3339)
		row.AddCell().Value = rec.OutputPath
		row.AddCell().Value = fmt.Sprintf("%.2f", rec.AudioDuration)
		row.AddCell().Value = fmt.Sprint(rec.ChunkCount)
		row.AddCell().Value = rec.Model
		row.AddCell().Value = rec.Language
		row.AddCell().Value = lo.Ternary(rec.HasError, "error: "+rec.ErrorMessage, "ok")
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputFilePath, err)
	}
	return nil
}
