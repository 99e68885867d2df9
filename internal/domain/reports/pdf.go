package reports

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"calcfolha/internal/domain/overtime"
)

var dayColumns = []struct {
	title string
	width float64
}{
	{"Data", 24}, {"Dia", 22}, {"Tipo", 30}, {"Entrada", 18}, {"Saída", 18},
	{"Trab.", 18}, {"Contr.", 18}, {"Normais", 20}, {"Extras", 18},
}

// RenderPDF writes an A4 report of the period: header, per-day table, premium buckets and,
// when pay is not nil, the valued overtime.
func RenderPDF(w io.Writer, calc overtime.Calculation, summary overtime.Summary, pay *overtime.PayBreakdown) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(calc.Description), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Relatório de horas extras"))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(calc.Description))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("%s a %s", summary.StartDate.Format("02/01/2006"), summary.EndDate.Format("02/01/2006")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range dayColumns {
		pdf.CellFormat(col.width, 7, tr(col.title), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, day := range summary.Days {
		entry, exit := "", ""
		if i < len(calc.DayEntries) && calc.DayEntries[i].Date.Equal(day.Date.Time) {
			entry = calc.DayEntries[i].Entry.String()
			exit = calc.DayEntries[i].Exit.String()
		}
		cells := []string{
			day.Date.Format("02/01/2006"),
			day.Weekday,
			dayTypeLabel(day.Type),
			entry,
			exit,
			FormatHours(day.WorkedHours),
			FormatHours(day.ContractualHours),
			FormatHours(day.RegularHours),
			FormatHours(day.OvertimeHours),
		}
		for j, text := range cells {
			pdf.CellFormat(dayColumns[j].width, 6, tr(text), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Totais")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Horas trabalhadas: %s", FormatHours(summary.WorkedHours))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Horas normais: %s", FormatHours(summary.RegularHours))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Horas extras: %s", FormatHours(summary.OvertimeHours))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Faltas: %d  Faltas justificadas: %d", summary.Absences.Unjustified, summary.Absences.Justified)))
	pdf.Ln(8)

	for _, b := range summary.Buckets {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Adicional de %g%%: %s h", b.Percentage, FormatHours(b.Hours))))
		pdf.Ln(6)
	}

	if pay != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, tr(fmt.Sprintf("Valor das horas extras (hora normal %s)", FormatBRL(pay.HourlyRate))))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 10)
		for _, b := range pay.Buckets {
			pdf.Cell(0, 6, tr(fmt.Sprintf("%g%%: %s h x %s = %s", b.Percentage, FormatHours(b.Hours), FormatBRL(b.HourValue), FormatBRL(b.Amount))))
			pdf.Ln(6)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, tr("Total: "+FormatBRL(pay.Total)))
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

func dayTypeLabel(t overtime.DayType) string {
	switch t {
	case overtime.DayRest:
		return "Descanso"
	case overtime.DayAbsence:
		return "Falta"
	case overtime.DayJustifiedAbsence:
		return "Falta justif."
	default:
		return "Útil"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
